package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"netsecparse/internal/eve"
	"netsecparse/internal/flowlog"
	"netsecparse/internal/hostscan"
	"netsecparse/internal/models"
	"netsecparse/internal/pcapflow"
)

func TestDevice(t *testing.T) {
	host := hostscan.Host{
		Address:    "192.168.1.1",
		MAC:        "AA:BB:CC:DD:EE:FF",
		Vendor:     "TestVendor",
		Hostname:   "router.local",
		Status:     "up",
		OSGuess:    "Linux 5.X",
		Confidence: 0.95,
		Ports: []hostscan.Port{
			{Number: 80, Protocol: "tcp", State: "open", Service: "http", Product: "nginx", Version: "1.24.0"},
			{Number: 6379, Protocol: "tcp", State: "open"},
		},
	}

	dev, ports := Device(host)
	require.NoError(t, uuid.Validate(dev.ID))
	require.Equal(t, models.DeviceOnline, dev.Status)
	require.Equal(t, "Linux 5.X", dev.OSFamily)
	require.InDelta(t, 0.95, dev.Confidence, 1e-9)

	require.Len(t, ports, 2)
	require.Equal(t, dev.ID, ports[0].DeviceID)
	require.Equal(t, "http", ports[0].ServiceName)
	require.Equal(t, "nginx 1.24.0", ports[0].ServiceVersion)
	// Unnamed service falls back to the well-known port table.
	require.Equal(t, "redis", ports[1].ServiceName)
}

func TestDeviceStatusMapping(t *testing.T) {
	for scan, want := range map[string]models.DeviceStatus{
		"up":      models.DeviceOnline,
		"down":    models.DeviceOffline,
		"unknown": models.DeviceUnknown,
		"":        models.DeviceUnknown,
	} {
		dev, _ := Device(hostscan.Host{Address: "10.0.0.1", Status: scan})
		require.Equal(t, want, dev.Status, "scan status %q", scan)
	}
}

func TestAlertSeverityMapping(t *testing.T) {
	for level, want := range map[int]models.Severity{
		1:  models.SeverityCritical,
		2:  models.SeverityHigh,
		3:  models.SeverityMedium,
		4:  models.SeverityLow,
		0:  models.SeverityLow,
		99: models.SeverityLow,
	} {
		alert, ok := Alert(eve.AlertRecord{SignatureID: "1", Severity: level})
		require.True(t, ok)
		require.Equal(t, want, alert.Severity, "eve severity %d", level)
	}
}

func TestAlert(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"event_type":"alert"}`)
	rec := eve.AlertRecord{
		SignatureID: "2000001",
		Signature:   "ET SCAN Suspicious Probe",
		Severity:    2,
		SrcIP:       "10.0.0.1",
		SrcPort:     12345,
		DestIP:      "10.0.0.2",
		DestPort:    80,
		Protocol:    "TCP",
		Timestamp:   ts,
		Payload:     payload,
	}

	alert, ok := Alert(rec)
	require.True(t, ok)
	require.Equal(t, "ET SCAN Suspicious Probe", alert.Title)
	require.Equal(t, "suricata", alert.SourceTool)
	require.Equal(t, "suricata:2000001:10.0.0.1:10.0.0.2", alert.Fingerprint)
	require.Equal(t, models.CategoryIntrusion, alert.Category)
	require.Equal(t, "10.0.0.1", alert.DeviceIP)
	require.Equal(t, ts, alert.CreatedAt)
	require.Equal(t, payload, alert.RawData)
}

func TestAlertWithoutSignatureID(t *testing.T) {
	_, ok := Alert(eve.AlertRecord{})
	require.False(t, ok)
}

func TestFlow(t *testing.T) {
	first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	last := first.Add(time.Minute)
	rec := pcapflow.FlowRecord{
		SrcIP: "10.0.0.1", SrcPort: 40000,
		DstIP: "10.0.0.2", DstPort: 443,
		Protocol:  "tcp",
		BytesSent: 1000, BytesReceived: 5000,
		PacketsSent: 10, PacketsReceived: 8,
		FirstSeen: first, LastSeen: last,
	}

	tf := Flow(rec)
	require.NoError(t, uuid.Validate(tf.ID))
	require.Equal(t, uint64(1000), tf.BytesSent)
	require.Equal(t, uint64(5000), tf.BytesReceived)
	require.Equal(t, first, tf.FirstSeen)
	require.Equal(t, last, tf.LastSeen)
	require.Equal(t, "https", tf.ServiceName)
}

func TestFlowDefaultsMissingTimestamps(t *testing.T) {
	before := time.Now().UTC()
	tf := Flow(pcapflow.FlowRecord{SrcIP: "a", DstIP: "b", Protocol: "udp"})
	require.False(t, tf.FirstSeen.Before(before))
	require.False(t, tf.LastSeen.Before(before))
}

func TestObservation(t *testing.T) {
	entry := flowlog.LogEntry{
		"ts":        "1705312800.500000",
		"id.orig_h": "10.0.0.1",
		"proto":     "tcp",
	}
	obs := Observation(entry)
	require.Equal(t, "tcp", obs.Protocol)
	require.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 500000000, time.UTC), obs.CreatedAt)

	var back map[string]string
	require.NoError(t, json.Unmarshal(obs.SourceData, &back))
	require.Equal(t, "10.0.0.1", back["id.orig_h"])
}

func TestObservationWithoutProto(t *testing.T) {
	obs := Observation(flowlog.LogEntry{"id": "conn1"})
	require.Equal(t, "unknown", obs.Protocol)
	require.False(t, obs.CreatedAt.IsZero())
}
