// Package results renders benchmark Runs as reports, and records them into a
// SQL-backed history of runs.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.gazette.dev/fsbench/bench"
	"gopkg.in/yaml.v2"
)

// Formats which may be rendered.
var Formats = []string{"table", "yaml", "json"}

// Report is the serializable summary of a bench.Run.
type Report struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Target   string  `json:"target,omitempty" yaml:"target,omitempty"`
	Seed     uint32  `json:"seed" yaml:"seed"`
	Status   string  `json:"status" yaml:"status"`
	Started  string  `json:"started" yaml:"started"`
	Finished string  `json:"finished" yaml:"finished"`
	Seconds  float64 `json:"seconds" yaml:"seconds"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`

	Phases []PhaseReport `json:"phases" yaml:"phases"`
}

// PhaseReport summarizes a bench.Result.
type PhaseReport struct {
	Phase          int     `json:"phase" yaml:"phase"`
	Name           string  `json:"name" yaml:"name"`
	Seconds        float64 `json:"seconds" yaml:"seconds"`
	Ops            int     `json:"ops" yaml:"ops"`
	Bytes          int64   `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	BytesPerSecond float64 `json:"bytesPerSecond,omitempty" yaml:"bytesPerSecond,omitempty"`
	Failures       int     `json:"failures,omitempty" yaml:"failures,omitempty"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// FormatSeconds renders the phase's Seconds as bench.FormatSeconds does.
// Seconds is rounded back to whole nanoseconds, so that the rendering
// matches that of the phase's original Elapsed duration.
func (p PhaseReport) FormatSeconds() string {
	return bench.FormatSeconds(time.Duration(math.Round(p.Seconds * float64(time.Second))))
}

// NewReport builds the Report of a Run.
func NewReport(run *bench.Run) Report {
	var r = Report{
		ID:       run.ID.String(),
		Label:    run.Label,
		Target:   run.Target,
		Seed:     run.Seed,
		Status:   run.Status(),
		Started:  run.Started.UTC().Format(time.RFC3339Nano),
		Finished: run.Finished.UTC().Format(time.RFC3339Nano),
		Seconds:  run.Finished.Sub(run.Started).Seconds(),
		Phases:   make([]PhaseReport, 0, len(run.Results)),
	}
	if run.Err != nil {
		r.Error = run.Err.Error()
	}
	for _, res := range run.Results {
		var p = PhaseReport{
			Phase:          res.Phase,
			Name:           res.Name,
			Seconds:        res.Elapsed.Seconds(),
			Ops:            res.Ops,
			Bytes:          res.Bytes,
			BytesPerSecond: res.BytesPerSecond(),
			Failures:       res.Failures,
		}
		if res.Err != nil {
			p.Error = res.Err.Error()
		}
		r.Phases = append(r.Phases, p)
	}
	return r
}

// Render the Report to |w| in the given format.
func Render(w io.Writer, format string, r Report) error {
	switch format {
	case "table":
		return renderTable(w, r)
	case "yaml":
		return renderYAML(w, r)
	case "json":
		var enc = json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func renderTable(w io.Writer, r Report) error {
	var table = tablewriter.NewWriter(w)
	table.Header("Test", "Phase", "Seconds", "Ops", "Bytes", "Throughput", "Failures")

	for _, p := range r.Phases {
		var row = []string{
			strconv.Itoa(p.Phase),
			p.Name,
			p.FormatSeconds(),
			strconv.Itoa(p.Ops),
			"-",
			"-",
			strconv.Itoa(p.Failures),
		}
		if p.Bytes != 0 {
			row[4] = humanize.IBytes(uint64(p.Bytes))
		}
		if p.BytesPerSecond != 0 {
			row[5] = humanize.IBytes(uint64(p.BytesPerSecond)) + "/s"
		}
		if p.Error != "" {
			row[6] = "FAILED"
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	var _, err = fmt.Fprintf(w, "run %s (seed %d): %s\n", r.ID, r.Seed, r.Status)
	return err
}

func renderYAML(w io.Writer, v interface{}) error {
	var b, err = yaml.Marshal(v)
	if err == nil {
		_, err = w.Write(b)
	}
	return err
}

// RenderHistory renders a listing of historical Reports to |w|.
func RenderHistory(w io.Writer, format string, reports []Report) error {
	switch format {
	case "table":
		var table = tablewriter.NewWriter(w)
		table.Header("ID", "Label", "Target", "Started", "Seed", "Seconds", "Status")

		for _, r := range reports {
			if err := table.Append([]string{
				r.ID,
				r.Label,
				r.Target,
				r.Started,
				strconv.FormatUint(uint64(r.Seed), 10),
				strconv.FormatFloat(r.Seconds, 'f', 2, 64),
				r.Status,
			}); err != nil {
				return err
			}
		}
		return table.Render()
	case "yaml":
		return renderYAML(w, reports)
	case "json":
		var enc = json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
