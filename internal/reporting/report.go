// Package reporting renders a parse run into a standalone HTML file so an
// operator can review records and skipped input away from the terminal.
package reporting

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"netsecparse/internal/diag"
)

// Run summarizes one parse invocation for the report.
type Run struct {
	Source      string // input file name or "-"
	Format      string // nmap, eve, zeek, pcap
	Headers     []string
	Rows        [][]string
	Diagnostics []diag.Diagnostic
}

// Generate writes the report and returns its filename. Only the "html"
// format is supported.
func Generate(run Run, format string) (string, error) {
	if format != "html" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("parse_report_%s.html", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Parse Report - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .diag { color: #d9534f; }
    </style>
</head>
<body>
    <h1>Parse Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> %s</p>
        <p><strong>Source:</strong> %s</p>
        <p><strong>Format:</strong> %s</p>
        <p><strong>Records:</strong> %d</p>
        <p><strong>Diagnostics:</strong> %d</p>
    </div>
`, html.EscapeString(run.Source), time.Now().Format(time.RFC1123),
		html.EscapeString(run.Source), html.EscapeString(run.Format),
		len(run.Rows), len(run.Diagnostics))

	b.WriteString("    <h2>Records</h2>\n    <table>\n        <thead><tr>")
	for _, h := range run.Headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead>\n        <tbody>\n")
	if len(run.Rows) == 0 {
		fmt.Fprintf(&b, "            <tr><td colspan=\"%d\">No records produced.</td></tr>\n", max(len(run.Headers), 1))
	}
	for _, row := range run.Rows {
		b.WriteString("            <tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("        </tbody>\n    </table>\n")

	b.WriteString("    <h2>Diagnostics</h2>\n    <table>\n        <thead><tr><th>Offset</th><th>Reason</th><th>Detail</th><th>Fragment</th></tr></thead>\n        <tbody>\n")
	if len(run.Diagnostics) == 0 {
		b.WriteString("            <tr><td colspan=\"4\">No input units were skipped.</td></tr>\n")
	}
	for _, d := range run.Diagnostics {
		fmt.Fprintf(&b, "            <tr class=\"diag\"><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			d.Offset, html.EscapeString(string(d.Reason)),
			html.EscapeString(d.Detail), html.EscapeString(d.Fragment))
	}
	b.WriteString("        </tbody>\n    </table>\n</body>\n</html>")

	if _, err := file.WriteString(b.String()); err != nil {
		return "", err
	}
	return filename, nil
}
