package models

import (
	"time"

	"github.com/google/uuid"
)

// TrafficFlow is a canonical aggregated network conversation.
type TrafficFlow struct {
	ID              string    `json:"id"`
	SrcIP           string    `json:"src_ip"`
	SrcPort         uint16    `json:"src_port"`
	DstIP           string    `json:"dst_ip"`
	DstPort         uint16    `json:"dst_port"`
	Protocol        string    `json:"protocol"`
	ServiceName     string    `json:"service_name,omitempty"`
	BytesSent       uint64    `json:"bytes_sent"`
	BytesReceived   uint64    `json:"bytes_received"`
	PacketsSent     uint64    `json:"packets_sent"`
	PacketsReceived uint64    `json:"packets_received"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// NewTrafficFlow creates a flow record with a fresh ID.
func NewTrafficFlow(srcIP string, srcPort uint16, dstIP string, dstPort uint16, protocol string) TrafficFlow {
	now := time.Now().UTC()
	return TrafficFlow{
		ID:        uuid.NewString(),
		SrcIP:     srcIP,
		SrcPort:   srcPort,
		DstIP:     dstIP,
		DstPort:   dstPort,
		Protocol:  protocol,
		FirstSeen: now,
		LastSeen:  now,
	}
}
