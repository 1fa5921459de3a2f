package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"netsecparse/internal/diag"
	"netsecparse/internal/eve"
	"netsecparse/internal/flowlog"
	"netsecparse/internal/hostscan"
	"netsecparse/internal/ingest"
	"netsecparse/internal/normalize"
	"netsecparse/internal/pcapflow"
	"netsecparse/internal/reporting"
	"netsecparse/internal/tui"
)

// fileResult is everything one input file produced: canonical records for
// stdout, display rows for the TUI/report, and the diagnostics.
type fileResult struct {
	source     string
	headers    []string
	rows       [][]string
	diags      []diag.Diagnostic
	normalized []any
	err        error
}

func main() {
	format := flag.String("format", "", "Input format: nmap, eve, zeek, or pcap")
	workers := flag.Int("workers", 0, "Max concurrent parses (0 = number of CPUs)")
	report := flag.Bool("report", false, "Write an HTML parse report")
	useTUI := flag.Bool("tui", false, "Browse results in a terminal UI instead of printing JSON")
	flag.Parse()

	files := flag.Args()
	if *format == "" || len(files) == 0 {
		fmt.Println("Usage: netsecparse -format <nmap|eve|zeek|pcap> [flags] <file>...")
		flag.PrintDefaults()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Let an interrupt cancel in-flight parses; they return partial
	// outcomes on their own.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("interrupt received; cancelling in-flight parses")
		cancel()
	}()

	results := make([]fileResult, len(files))
	var mu sync.Mutex

	jobs := make([]ingest.Job, len(files))
	for i, file := range files {
		jobs[i] = func(ctx context.Context) error {
			res := parseFile(ctx, *format, file)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		}
	}
	if err := ingest.NewPool(*workers).Run(ctx, jobs); err != nil {
		log.WithError(err).Fatal("ingest pool failed")
	}

	failed := false
	var allRows [][]string
	var allDiags []diag.Diagnostic
	var headers []string

	enc := json.NewEncoder(os.Stdout)
	for _, res := range results {
		if res.err != nil {
			log.WithError(res.err).WithField("file", res.source).Error("parse failed")
			failed = true
			continue
		}
		for _, d := range res.diags {
			log.WithFields(log.Fields{
				"file":   res.source,
				"offset": d.Offset,
				"reason": d.Reason,
			}).Warn(d.Detail)
		}
		if !*useTUI {
			for _, rec := range res.normalized {
				if err := enc.Encode(rec); err != nil {
					log.WithError(err).Fatal("encode record")
				}
			}
		}
		headers = res.headers
		allRows = append(allRows, res.rows...)
		allDiags = append(allDiags, res.diags...)
	}

	if *report {
		name, err := reporting.Generate(reporting.Run{
			Source:      fmt.Sprintf("%d file(s)", len(files)),
			Format:      *format,
			Headers:     headers,
			Rows:        allRows,
			Diagnostics: allDiags,
		}, "html")
		if err != nil {
			log.WithError(err).Error("report generation failed")
			failed = true
		} else {
			log.WithField("file", name).Info("report written")
		}
	}

	if *useTUI {
		columns := make([]table.Column, len(headers))
		for i, h := range headers {
			columns[i] = table.Column{Title: h, Width: 22}
		}
		rows := make([]table.Row, len(allRows))
		for i, r := range allRows {
			rows[i] = table.Row(r)
		}
		title := fmt.Sprintf("netsecparse - %s (%d files)", *format, len(files))
		model := tui.NewResultModel(title, columns, rows, allDiags)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			log.WithError(err).Error("tui failed")
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// parseFile runs one parser over one file and projects the outcome into
// canonical records plus display rows.
func parseFile(ctx context.Context, format, file string) fileResult {
	res := fileResult{source: file}

	data, err := os.ReadFile(file)
	if err != nil {
		res.err = err
		return res
	}

	switch format {
	case "nmap":
		out, err := hostscan.Parse(ctx, data)
		if err != nil {
			res.err = err
			return res
		}
		res.headers = []string{"Address", "Hostname", "Status", "OS", "Ports"}
		res.diags = out.Diagnostics
		for _, h := range out.Records {
			dev, ports := normalize.Device(h)
			res.normalized = append(res.normalized, dev)
			for _, p := range ports {
				res.normalized = append(res.normalized, p)
			}
			res.rows = append(res.rows, []string{
				h.Address, h.Hostname, h.Status, h.OSGuess, strconv.Itoa(len(h.Ports)),
			})
		}

	case "eve":
		out, err := eve.Parse(ctx, data)
		if err != nil {
			res.err = err
			return res
		}
		res.headers = []string{"SID", "Signature", "Severity", "Source", "Destination"}
		res.diags = out.Diagnostics
		for _, r := range out.Records {
			alert, ok := normalize.Alert(r)
			if !ok {
				continue
			}
			res.normalized = append(res.normalized, alert)
			res.rows = append(res.rows, []string{
				r.SignatureID, r.Signature, string(alert.Severity),
				fmt.Sprintf("%s:%d", r.SrcIP, r.SrcPort),
				fmt.Sprintf("%s:%d", r.DestIP, r.DestPort),
			})
		}

	case "zeek":
		entries, err := flowlog.Parse(ctx, data)
		if err != nil {
			res.err = err
			return res
		}
		res.headers = []string{"Protocol", "Fields"}
		for _, e := range entries {
			obs := normalize.Observation(e)
			res.normalized = append(res.normalized, obs)
			res.rows = append(res.rows, []string{obs.Protocol, strconv.Itoa(len(e))})
		}

	case "pcap":
		out, err := pcapflow.Extract(ctx, data)
		if err != nil {
			res.err = err
			return res
		}
		res.headers = []string{"Source", "Destination", "Proto", "Bytes", "Packets"}
		res.diags = out.Diagnostics
		for _, f := range out.Records {
			tf := normalize.Flow(f)
			res.normalized = append(res.normalized, tf)
			res.rows = append(res.rows, []string{
				fmt.Sprintf("%s:%d", f.SrcIP, f.SrcPort),
				fmt.Sprintf("%s:%d", f.DstIP, f.DstPort),
				f.Protocol,
				strconv.FormatUint(f.BytesSent+f.BytesReceived, 10),
				strconv.FormatUint(f.PacketsSent+f.PacketsReceived, 10),
			})
		}

	default:
		res.err = fmt.Errorf("unknown format %q", format)
	}
	return res
}
