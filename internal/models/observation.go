package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Observation is a passive record derived from monitor logs. DeviceID is
// left empty here; linking observations to devices is the correlation
// stage's job.
type Observation struct {
	ID         string          `json:"id"`
	DeviceID   string          `json:"device_id,omitempty"`
	Protocol   string          `json:"protocol"`
	SourceData json.RawMessage `json:"source_data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewObservation creates an observation with a fresh ID.
func NewObservation(protocol string, sourceData json.RawMessage) Observation {
	return Observation{
		ID:         uuid.NewString(),
		Protocol:   protocol,
		SourceData: sourceData,
		CreatedAt:  time.Now().UTC(),
	}
}
