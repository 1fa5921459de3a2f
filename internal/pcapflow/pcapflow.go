// Package pcapflow aggregates raw packet captures into bidirectional
// traffic flows.
package pcapflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"netsecparse/internal/diag"
)

// ErrMalformedCapture is returned when the capture container itself cannot
// be read (bad magic, truncated record stream). It aborts the extraction
// with zero records.
var ErrMalformedCapture = errors.New("pcapflow: malformed capture")

// FlowRecord is the aggregate over one conversation: both directions of a
// 5-tuple merged under a canonical key. Orientation (which endpoint is the
// source) follows the first packet observed for the conversation.
type FlowRecord struct {
	SrcIP           string    `json:"src_ip"`
	SrcPort         uint16    `json:"src_port"`
	DstIP           string    `json:"dst_ip"`
	DstPort         uint16    `json:"dst_port"`
	Protocol        string    `json:"protocol"`
	BytesSent       uint64    `json:"bytes_sent"`
	BytesReceived   uint64    `json:"bytes_received"`
	PacketsSent     uint64    `json:"packets_sent"`
	PacketsReceived uint64    `json:"packets_received"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// endpoint is one side of a conversation, with a total order so both
// directions map onto the same canonical key.
type endpoint struct {
	addr [16]byte
	port uint16
}

func (e endpoint) less(other endpoint) bool {
	if c := bytes.Compare(e.addr[:], other.addr[:]); c != 0 {
		return c < 0
	}
	return e.port < other.port
}

// flowKey is the canonical (endpoint pair, protocol) identity.
type flowKey struct {
	a, b  endpoint
	proto string
}

func canonicalKey(src, dst endpoint, proto string) flowKey {
	if dst.less(src) {
		src, dst = dst, src
	}
	return flowKey{a: src, b: dst, proto: proto}
}

// Extract iterates the capture in record order, decoding each packet down
// to its transport header and folding it into the per-conversation
// aggregates. Undecodable packets and untracked protocols become
// diagnostics carrying the 1-based packet index; a container that cannot
// be read at all is fatal. Flows are emitted in first-occurrence order.
// Cancellation is checked per packet and returns the flows aggregated so
// far with ctx.Err().
func Extract(ctx context.Context, capture []byte) (*diag.Outcome[FlowRecord], error) {
	r, err := pcapgo.NewReader(bytes.NewReader(capture))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCapture, err)
	}

	flows := make(map[flowKey]*FlowRecord)
	var order []flowKey
	var diags []diag.Diagnostic

	index := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return emit(flows, order, diags), err
		}

		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A record header that cannot be read means everything after
			// it is unrecoverable; treat like a bad container.
			return nil, fmt.Errorf("%w: packet record %d: %v", ErrMalformedCapture, index+1, err)
		}
		index++

		pkt := gopacket.NewPacket(data, r.LinkType(), gopacket.Default)
		srcEP, dstEP, srcIP, dstIP, proto, d := dissect(pkt, index, data)
		if d != nil {
			diags = append(diags, *d)
			continue
		}

		key := canonicalKey(srcEP, dstEP, proto)
		rec, ok := flows[key]
		if !ok {
			rec = &FlowRecord{
				SrcIP:     srcIP,
				SrcPort:   srcEP.port,
				DstIP:     dstIP,
				DstPort:   dstEP.port,
				Protocol:  proto,
				FirstSeen: ci.Timestamp,
				LastSeen:  ci.Timestamp,
			}
			flows[key] = rec
			order = append(order, key)
		}

		if srcIP == rec.SrcIP && srcEP.port == rec.SrcPort {
			rec.BytesSent += uint64(ci.Length)
			rec.PacketsSent++
		} else {
			rec.BytesReceived += uint64(ci.Length)
			rec.PacketsReceived++
		}
		if ci.Timestamp.Before(rec.FirstSeen) {
			rec.FirstSeen = ci.Timestamp
		}
		if ci.Timestamp.After(rec.LastSeen) {
			rec.LastSeen = ci.Timestamp
		}
	}

	return emit(flows, order, diags), nil
}

// dissect pulls addresses, ports, and protocol out of one decoded packet.
// The returned diagnostic is non-nil when the packet cannot contribute to
// a flow.
func dissect(pkt gopacket.Packet, index int64, raw []byte) (src, dst endpoint, srcIP, dstIP, proto string, d *diag.Diagnostic) {
	var netSrc, netDst net.IP

	switch {
	case pkt.Layer(layers.LayerTypeIPv4) != nil:
		ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		netSrc, netDst = ip.SrcIP, ip.DstIP
	case pkt.Layer(layers.LayerTypeIPv6) != nil:
		ip := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		netSrc, netDst = ip.SrcIP, ip.DstIP
	default:
		reason := diag.UnsupportedConstruct
		detail := "no IPv4/IPv6 network layer"
		if pkt.ErrorLayer() != nil {
			reason = diag.MalformedRecord
			detail = "packet does not decode: " + pkt.ErrorLayer().Error().Error()
		}
		dg := diag.New(index, reason, detail, raw)
		return endpoint{}, endpoint{}, "", "", "", &dg
	}

	var srcPort, dstPort uint16
	switch {
	case pkt.Layer(layers.LayerTypeTCP) != nil:
		tcp := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
		srcPort, dstPort = uint16(tcp.SrcPort), uint16(tcp.DstPort)
		proto = "tcp"
	case pkt.Layer(layers.LayerTypeUDP) != nil:
		udp := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
		srcPort, dstPort = uint16(udp.SrcPort), uint16(udp.DstPort)
		proto = "udp"
	default:
		reason := diag.UnsupportedConstruct
		detail := "untracked transport"
		if tl := pkt.TransportLayer(); tl != nil {
			detail = "untracked transport " + tl.LayerType().String()
		} else if pkt.ErrorLayer() != nil {
			reason = diag.MalformedRecord
			detail = "transport header does not decode"
		}
		dg := diag.New(index, reason, detail, raw)
		return endpoint{}, endpoint{}, "", "", "", &dg
	}

	src = endpoint{port: srcPort}
	dst = endpoint{port: dstPort}
	copy(src.addr[:], netSrc.To16())
	copy(dst.addr[:], netDst.To16())
	return src, dst, netSrc.String(), netDst.String(), proto, nil
}

func emit(flows map[flowKey]*FlowRecord, order []flowKey, diags []diag.Diagnostic) *diag.Outcome[FlowRecord] {
	out := &diag.Outcome[FlowRecord]{Diagnostics: diags}
	for _, key := range order {
		out.Add(*flows[key])
	}
	return out
}
