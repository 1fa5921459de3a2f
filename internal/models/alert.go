package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Severity levels, ordered from least to most urgent.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertCategory classifies the nature of an alert.
type AlertCategory string

const (
	CategoryIntrusion     AlertCategory = "intrusion"
	CategoryVulnerability AlertCategory = "vulnerability"
	CategoryAnomaly       AlertCategory = "anomaly"
	CategoryNetworkThreat AlertCategory = "network_threat"
	CategoryOther         AlertCategory = "other"
)

// Alert is a canonical security alert ready for the deduplication and
// correlation pipeline. Fingerprint is the dedup key; RawData keeps the
// source tool's payload verbatim.
type Alert struct {
	ID          string          `json:"id"`
	Severity    Severity        `json:"severity"`
	Status      string          `json:"status"`
	SourceTool  string          `json:"source_tool"`
	Category    AlertCategory   `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DeviceIP    string          `json:"device_ip,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	RawData     json.RawMessage `json:"raw_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewAlert creates an alert with a fresh ID, defaulting to the lowest
// severity and the "new" status.
func NewAlert(title, sourceTool, fingerprint string) Alert {
	return Alert{
		ID:          uuid.NewString(),
		Severity:    SeverityInfo,
		Status:      "new",
		SourceTool:  sourceTool,
		Category:    CategoryOther,
		Title:       title,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
}
