// Package eve decodes line-delimited intrusion detection events
// (EVE JSON: one object per line).
package eve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	"netsecparse/internal/diag"
)

// AlertRecord is one intrusion alert extracted from an event batch.
// Payload keeps the full source line verbatim for downstream correlation.
type AlertRecord struct {
	SignatureID string          `json:"signature_id"`
	Signature   string          `json:"signature,omitempty"`
	Category    string          `json:"category,omitempty"`
	Severity    int             `json:"severity"`
	SrcIP       string          `json:"src_ip"`
	SrcPort     int             `json:"src_port"`
	DestIP      string          `json:"dest_ip"`
	DestPort    int             `json:"dest_port"`
	Protocol    string          `json:"proto"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// Suricata writes timestamps with a zone offset but no colon in it.
const eveTimeLayout = "2006-01-02T15:04:05.999999999-0700"

// Parse processes each non-blank line independently: a line that is not a
// JSON object or lacks event_type produces a diagnostic with its 1-based
// line number; lines typed other than "alert" are out of scope for this
// record type and are skipped without a diagnostic; alert lines missing a
// required field (signature id, addresses, protocol, timestamp) produce a
// diagnostic. A bad line never aborts the batch; the only error returned
// is context cancellation, with the partial outcome alongside it.
func Parse(ctx context.Context, batch []byte) (*diag.Outcome[AlertRecord], error) {
	out := &diag.Outcome[AlertRecord]{}
	sc := bufio.NewScanner(bytes.NewReader(batch))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := int64(0)
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return out, err
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			out.Skip(diag.New(lineNo, diag.MalformedRecord, "not a JSON object", line))
			continue
		}
		eventType := getString(m, "event_type")
		if eventType == "" {
			out.Skip(diag.New(lineNo, diag.MalformedRecord, "missing event_type", line))
			continue
		}
		if eventType != "alert" {
			continue
		}

		rec, reason := buildAlert(m, line)
		if reason != "" {
			out.Skip(diag.New(lineNo, diag.MalformedRecord, reason, line))
			continue
		}
		out.Add(rec)
	}
	// Scanner errors only occur on oversized lines; report the spot where
	// scanning stopped rather than dropping the tail silently.
	if err := sc.Err(); err != nil {
		out.Skip(diag.New(lineNo+1, diag.MalformedRecord, "line exceeds scanner limit: "+err.Error(), nil))
	}
	return out, nil
}

// buildAlert extracts the required alert fields, returning a non-empty
// reason when one is missing or unusable.
func buildAlert(m map[string]any, raw []byte) (AlertRecord, string) {
	alert, _ := m["alert"].(map[string]any)

	// Signature details usually nest under "alert", but some emitters
	// flatten them onto the top-level object.
	sid := getInt64(alert, "signature_id")
	if sid == 0 {
		sid = getInt64(m, "signature_id")
	}
	if sid == 0 {
		return AlertRecord{}, "alert has no signature_id"
	}
	srcIP := getString(m, "src_ip")
	destIP := getString(m, "dest_ip")
	if srcIP == "" || destIP == "" {
		return AlertRecord{}, "alert is missing src_ip or dest_ip"
	}
	proto := getString(m, "proto")
	if proto == "" {
		return AlertRecord{}, "alert has no proto"
	}
	tsRaw := getString(m, "timestamp")
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return AlertRecord{}, "alert has no parseable timestamp"
	}

	payload := make(json.RawMessage, len(raw))
	copy(payload, raw)

	signature := getString(alert, "signature")
	if signature == "" {
		signature = getString(m, "signature")
	}
	severity := getInt64(alert, "severity")
	if severity == 0 {
		severity = getInt64(m, "severity")
	}

	return AlertRecord{
		SignatureID: strconv.FormatInt(sid, 10),
		Signature:   signature,
		Category:    getString(alert, "category"),
		Severity:    int(severity),
		SrcIP:       srcIP,
		SrcPort:     int(getInt64(m, "src_port")),
		DestIP:      destIP,
		DestPort:    int(getInt64(m, "dest_port")),
		Protocol:    proto,
		Timestamp:   ts,
		Payload:     payload,
	}, ""
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(eveTimeLayout, s)
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt64(m map[string]any, key string) int64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
