package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/cespare/crontab"
	"github.com/cespare/crontab/params"
)

// activation is one firing of one entry, as printed by next, prev and match.
type activation struct {
	Time   time.Time         `json:"time" yaml:"time"`
	Line   int               `json:"line" yaml:"line"`
	Rule   string            `json:"rule" yaml:"rule"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

func newActivation(at time.Time, e *crontab.Entry) activation {
	a := activation{Time: at, Line: e.Line(), Rule: e.Rule(), Params: e.Params()}
	if len(a.Params) == 0 {
		a.Params = nil
	}
	return a
}

// report is what check prints.
type report struct {
	Timezone string        `json:"timezone" yaml:"timezone"`
	Entries  []entryReport `json:"entries" yaml:"entries"`
	Warning  string        `json:"warning,omitempty" yaml:"warning,omitempty"`
}

type entryReport struct {
	Line    int               `json:"line" yaml:"line"`
	Rule    string            `json:"rule" yaml:"rule"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Warning string            `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func newReport(s *crontab.Schedule) report {
	r := report{
		Timezone: s.Location().String(),
		Entries:  []entryReport{},
		Warning:  s.SanityWarning(),
	}
	for _, e := range s.Entries() {
		er := entryReport{Line: e.Line(), Rule: e.Rule(), Params: e.Params(), Warning: e.SanityWarning()}
		if len(er.Params) == 0 {
			er.Params = nil
		}
		r.Entries = append(r.Entries, er)
	}
	return r
}

// render writes data as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, data any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

const textTimeLayout = "2006-01-02 15:04 MST"

func renderActivations(w io.Writer, format string, acts []activation) error {
	if acts == nil {
		acts = []activation{}
	}
	return render(w, format, acts, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		for _, a := range acts {
			fmt.Fprintf(tw, "%s\tline %d\t%s\t%s\n", a.Time.Format(textTimeLayout), a.Line, a.Rule, params.Format(a.Params))
		}
		return tw.Flush()
	})
}

func renderReport(w io.Writer, format string, r report) error {
	return render(w, format, r, func(w io.Writer) error {
		fmt.Fprintf(w, "timezone: %s\n", r.Timezone)
		fmt.Fprintf(w, "entries: %d\n", len(r.Entries))
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		for _, e := range r.Entries {
			fmt.Fprintf(tw, "line %d\t%s\t%s\n", e.Line, e.Rule, params.Format(e.Params))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		var warnings []string
		for _, e := range r.Entries {
			if e.Warning != "" {
				warnings = append(warnings, fmt.Sprintf("line %d: %s", e.Line, e.Warning))
			}
		}
		if len(warnings) > 0 {
			fmt.Fprintf(w, "warnings:\n  %s\n", strings.Join(warnings, "\n  "))
		}
		return nil
	})
}
