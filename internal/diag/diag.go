// Package diag holds the diagnostic vocabulary shared by all parsers.
// A parser never drops an input unit silently: every host, line, or packet
// either contributes a record or leaves a Diagnostic behind.
package diag

import "fmt"

// Reason classifies why an input unit was skipped.
type Reason string

const (
	// MalformedRecord: one unit inside an otherwise valid container could
	// not be interpreted. Parsing continues with the next unit.
	MalformedRecord Reason = "malformed_record"
	// UnsupportedConstruct: a recognized but unhandled variant, e.g. a
	// transport protocol the platform does not track.
	UnsupportedConstruct Reason = "unsupported_construct"
)

// MaxFragmentLen bounds the raw fragment retained on a Diagnostic.
const MaxFragmentLen = 160

// Diagnostic records one skipped or degraded input unit.
type Diagnostic struct {
	// Offset locates the unit in the source: a 1-based line number for
	// line-oriented input, a 1-based packet index for captures, or a byte
	// offset for XML documents.
	Offset   int64  `json:"offset"`
	Reason   Reason `json:"reason"`
	Detail   string `json:"detail"`
	Fragment string `json:"fragment,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %d: %s", d.Reason, d.Offset, d.Detail)
}

// New builds a Diagnostic, truncating the raw fragment to MaxFragmentLen.
func New(offset int64, reason Reason, detail string, fragment []byte) Diagnostic {
	if len(fragment) > MaxFragmentLen {
		fragment = fragment[:MaxFragmentLen]
	}
	return Diagnostic{
		Offset:   offset,
		Reason:   reason,
		Detail:   detail,
		Fragment: string(fragment),
	}
}

// Outcome pairs a possibly partial record sequence with the diagnostics
// collected while producing it.
type Outcome[T any] struct {
	Records     []T
	Diagnostics []Diagnostic
}

// Add appends a record.
func (o *Outcome[T]) Add(rec T) {
	o.Records = append(o.Records, rec)
}

// Skip appends a diagnostic for a unit that produced no record.
func (o *Outcome[T]) Skip(d Diagnostic) {
	o.Diagnostics = append(o.Diagnostics, d)
}
