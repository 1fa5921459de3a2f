// Package normalize projects parser output into the canonical platform
// schema. It is the single point where stable identifiers are assigned and
// missing timestamps are defaulted to the normalization instant; it never
// deduplicates or correlates across records, that is the downstream
// pipeline's job. Every mapping is pure and order preserving.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"netsecparse/internal/eve"
	"netsecparse/internal/flowlog"
	"netsecparse/internal/hostscan"
	"netsecparse/internal/models"
	"netsecparse/internal/pcapflow"
)

// Device projects one scanned host into a canonical device plus its port
// records. Scan "up"/"down" states map onto online/offline; anything else
// is unknown.
func Device(h hostscan.Host) (models.Device, []models.Port) {
	dev := models.NewDevice(h.Address)
	dev.MAC = h.MAC
	dev.Vendor = h.Vendor
	dev.Hostname = h.Hostname
	dev.OSFamily = h.OSGuess
	dev.Confidence = h.Confidence

	switch h.Status {
	case "up":
		dev.Status = models.DeviceOnline
	case "down":
		dev.Status = models.DeviceOffline
	default:
		dev.Status = models.DeviceUnknown
	}

	ports := make([]models.Port, 0, len(h.Ports))
	for _, p := range h.Ports {
		port := models.NewPort(dev.ID, p.Number, p.Protocol)
		if p.State != "" {
			port.State = p.State
		}
		port.ServiceName = p.Service
		if port.ServiceName == "" {
			port.ServiceName = serviceName(p.Number)
		}
		port.ServiceVersion = strings.TrimSpace(p.Product + " " + p.Version)
		port.Banner = p.Banner
		ports = append(ports, port)
	}
	return dev, ports
}

// Alert projects one intrusion event into a canonical alert. IDS severity
// levels count down (1 is most urgent): 1 maps to critical, 2 to high,
// 3 to medium, everything else to low. A record with an empty signature
// identifier maps to nothing (one-to-zero).
func Alert(r eve.AlertRecord) (models.Alert, bool) {
	if r.SignatureID == "" {
		return models.Alert{}, false
	}

	title := r.Signature
	if title == "" {
		title = "Alert SID " + r.SignatureID
	}
	fingerprint := fmt.Sprintf("suricata:%s:%s:%s", r.SignatureID, r.SrcIP, r.DestIP)

	alert := models.NewAlert(title, "suricata", fingerprint)
	alert.Severity = severityFromEve(r.Severity)
	alert.Category = models.CategoryIntrusion
	alert.DeviceIP = r.SrcIP
	alert.Description = fmt.Sprintf("%s (SID %s) from %s:%d to %s:%d over %s",
		title, r.SignatureID, r.SrcIP, r.SrcPort, r.DestIP, r.DestPort, r.Protocol)
	alert.RawData = r.Payload
	if !r.Timestamp.IsZero() {
		alert.CreatedAt = r.Timestamp.UTC()
	}
	return alert, true
}

func severityFromEve(level int) models.Severity {
	switch level {
	case 1:
		return models.SeverityCritical
	case 2:
		return models.SeverityHigh
	case 3:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Flow projects one aggregated capture flow into a canonical traffic flow.
// Zero first/last-seen timestamps default to the normalization instant.
func Flow(f pcapflow.FlowRecord) models.TrafficFlow {
	tf := models.NewTrafficFlow(f.SrcIP, f.SrcPort, f.DstIP, f.DstPort, f.Protocol)
	tf.BytesSent = f.BytesSent
	tf.BytesReceived = f.BytesReceived
	tf.PacketsSent = f.PacketsSent
	tf.PacketsReceived = f.PacketsReceived
	if !f.FirstSeen.IsZero() {
		tf.FirstSeen = f.FirstSeen.UTC()
	}
	if !f.LastSeen.IsZero() {
		tf.LastSeen = f.LastSeen.UTC()
	}
	// Label the flow by its better-known endpoint port.
	if name := serviceName(f.DstPort); name != "" {
		tf.ServiceName = name
	} else if name := serviceName(f.SrcPort); name != "" {
		tf.ServiceName = name
	}
	return tf
}

// Observation projects one monitor log entry into a canonical observation.
// The protocol comes from the log's own proto column when declared; the
// full field mapping rides along as JSON.
func Observation(e flowlog.LogEntry) models.Observation {
	proto := e["proto"]
	if proto == "" {
		proto = "unknown"
	}
	source, err := json.Marshal(e)
	if err != nil {
		// A map[string]string always marshals; keep the record anyway.
		source = []byte("{}")
	}
	obs := models.NewObservation(proto, source)
	if ts, ok := e["ts"]; ok {
		if t, err := parseEpoch(ts); err == nil {
			obs.CreatedAt = t
		}
	}
	return obs
}

// parseEpoch reads a fractional Unix timestamp like "1705312800.000000".
func parseEpoch(s string) (time.Time, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
}
