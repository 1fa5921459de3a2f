// Package flowlog decodes tab-separated network monitor logs that declare
// their own column set through a #fields directive line.
package flowlog

import (
	"bufio"
	"bytes"
	"context"
	"strings"
)

// LogEntry maps declared column names to their raw textual values. Values
// are never coerced; numeric or time interpretation belongs to the
// normalizer. Columns whose raw value was an empty sentinel are absent.
type LogEntry map[string]string

// Empty sentinel tokens used by the log format.
const (
	sentinelDash  = "-"
	sentinelEmpty = "(empty)"
)

// Parse reads the log line by line. The first #fields directive seen
// establishes the active header; data rows before any header are skipped
// (field identity is unknowable without one), other #-prefixed lines are
// comments. Short rows are padded with the empty sentinel, long rows are
// truncated to the header width. This format has no fatal condition; the
// only error returned is context cancellation, with the entries collected
// so far alongside it.
func Parse(ctx context.Context, text []byte) ([]LogEntry, error) {
	var (
		entries []LogEntry
		headers []string
	)

	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#fields") {
			if headers == nil {
				cols := strings.Split(line, "\t")
				headers = cols[1:] // first token is the directive itself
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if len(headers) == 0 {
			continue
		}

		values := strings.Split(line, "\t")
		entry := make(LogEntry, len(headers))
		for i, header := range headers {
			value := sentinelDash
			if i < len(values) {
				value = values[i]
			}
			if value == sentinelDash || value == sentinelEmpty {
				continue
			}
			entry[header] = value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
