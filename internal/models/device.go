// Package models defines the platform's canonical record types. These are
// the shapes handed to the persistence and pipeline collaborators; parsers
// never build them directly, only the normalizer does.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatus is the reachability state of a device.
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceUnknown DeviceStatus = "unknown"
)

// DeviceStatusFromString maps unrecognized values to DeviceUnknown.
func DeviceStatusFromString(s string) DeviceStatus {
	switch s {
	case "online":
		return DeviceOnline
	case "offline":
		return DeviceOffline
	default:
		return DeviceUnknown
	}
}

// Device is a discovered network device.
type Device struct {
	ID         string       `json:"id"`
	IP         string       `json:"ip"`
	MAC        string       `json:"mac,omitempty"`
	Hostname   string       `json:"hostname,omitempty"`
	Vendor     string       `json:"vendor,omitempty"`
	OSFamily   string       `json:"os_family,omitempty"`
	Confidence float64      `json:"classification_confidence"`
	Status     DeviceStatus `json:"status"`
	FirstSeen  time.Time    `json:"first_seen"`
	LastSeen   time.Time    `json:"last_seen"`
}

// NewDevice creates a device with a fresh ID and current timestamps.
func NewDevice(ip string) Device {
	now := time.Now().UTC()
	return Device{
		ID:        uuid.NewString(),
		IP:        ip,
		Status:    DeviceUnknown,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Port is a port discovered on a device.
type Port struct {
	ID             string    `json:"id"`
	DeviceID       string    `json:"device_id"`
	Number         uint16    `json:"port_number"`
	Protocol       string    `json:"protocol"`
	State          string    `json:"state"`
	ServiceName    string    `json:"service_name,omitempty"`
	ServiceVersion string    `json:"service_version,omitempty"`
	Banner         string    `json:"banner,omitempty"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
}

// NewPort creates a port record bound to a device.
func NewPort(deviceID string, number uint16, protocol string) Port {
	now := time.Now().UTC()
	return Port{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Number:    number,
		Protocol:  protocol,
		State:     "unknown",
		FirstSeen: now,
		LastSeen:  now,
	}
}
