// Package hostscan decodes nmap-style host discovery XML reports.
package hostscan

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"netsecparse/internal/diag"
)

// ErrMalformedDocument is returned when the report is not well-formed XML.
// It aborts the whole parse with zero records.
var ErrMalformedDocument = errors.New("hostscan: malformed document")

// Host is one host element from a scan report.
type Host struct {
	Address    string  `json:"address"`
	MAC        string  `json:"mac,omitempty"`
	Vendor     string  `json:"vendor,omitempty"`
	Hostname   string  `json:"hostname,omitempty"`
	Status     string  `json:"status"`
	OSGuess    string  `json:"os_guess,omitempty"`
	Confidence float64 `json:"confidence"`
	Ports      []Port  `json:"ports"`
}

// Port is one port element, kept in document order. Duplicate port numbers
// within a host are retained; deduplication is a downstream concern.
type Port struct {
	Number   uint16 `json:"number"`
	Protocol string `json:"protocol"`
	State    string `json:"state,omitempty"`
	Service  string `json:"service,omitempty"`
	Product  string `json:"product,omitempty"`
	Version  string `json:"version,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// Parse walks the report token by token, emitting one Host per closed host
// element so memory stays bounded by a single host regardless of document
// size. A host without an address yields a diagnostic, not an abort; any
// XML syntax error is fatal and discards all partial output. Cancellation
// is checked between host elements and returns the partial outcome with
// ctx.Err().
func Parse(ctx context.Context, doc []byte) (*diag.Outcome[Host], error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	out := &diag.Outcome[Host]{}

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "host" {
			continue
		}

		offset := dec.InputOffset()
		host, err := parseHost(dec, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		if host.Address == "" {
			out.Skip(diag.New(offset, diag.MalformedRecord, "host element has no address", nil))
			continue
		}
		out.Add(host)
	}
}

// parseHost consumes tokens until the matching </host>. Element semantics
// are matched flat by local name, mirroring the report structure:
// status, address, hostname, port/state/service/script, osmatch.
func parseHost(dec *xml.Decoder, out *diag.Outcome[Host]) (Host, error) {
	host := Host{Status: "unknown"}
	depth := 1
	portOpen := false // inside a <port> element with a usable port number

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			// Includes io.EOF: an unterminated host element is not
			// well-formed, so the whole document is rejected.
			return Host{}, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "status":
				if v := attr(el, "state"); v != "" {
					host.Status = v
				}
			case "address":
				switch attr(el, "addrtype") {
				case "mac":
					host.MAC = attr(el, "addr")
					host.Vendor = attr(el, "vendor")
				default: // ipv4, ipv6
					if host.Address == "" {
						host.Address = attr(el, "addr")
					}
				}
			case "hostname":
				if host.Hostname == "" {
					host.Hostname = attr(el, "name")
				}
			case "port":
				portOpen = false
				n, err := strconv.ParseUint(attr(el, "portid"), 10, 16)
				if err != nil {
					out.Skip(diag.New(dec.InputOffset(), diag.MalformedRecord,
						"port element has no valid portid", []byte(attr(el, "portid"))))
					continue
				}
				host.Ports = append(host.Ports, Port{
					Number:   uint16(n),
					Protocol: attr(el, "protocol"),
				})
				portOpen = true
			case "state":
				if portOpen {
					host.Ports[len(host.Ports)-1].State = attr(el, "state")
				}
			case "service":
				if portOpen {
					p := &host.Ports[len(host.Ports)-1]
					p.Service = attr(el, "name")
					p.Product = attr(el, "product")
					p.Version = attr(el, "version")
				}
			case "script":
				if portOpen && attr(el, "id") == "banner" {
					host.Ports[len(host.Ports)-1].Banner = strings.TrimSpace(attr(el, "output"))
				}
			case "osmatch":
				// Keep the first (highest accuracy) match only.
				if host.OSGuess == "" {
					host.OSGuess = attr(el, "name")
					host.Confidence = accuracyToConfidence(attr(el, "accuracy"))
				}
			}
		case xml.EndElement:
			depth--
			if el.Name.Local == "port" {
				portOpen = false
			}
		}
	}
	return host, nil
}

// accuracyToConfidence maps a percent string to [0,1].
func accuracyToConfidence(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	c := v / 100
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
