package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// timeLayouts are tried in order. Layouts without an offset are read in the
// time zone of the specification.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timeFlag is a pflag.Value for instants. The empty value means now.
type timeFlag struct {
	raw string
}

var _ pflag.Value = (*timeFlag)(nil)

func (f *timeFlag) String() string { return f.raw }

func (f *timeFlag) Type() string { return "time" }

func (f *timeFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	if _, err := parseTime(s, time.UTC); err != nil {
		return err
	}
	f.raw = s
	return nil
}

// resolve returns the instant named by the flag, reading offset-less values
// in loc.
func (f *timeFlag) resolve(loc *time.Location, now func() time.Time) time.Time {
	if f.raw == "" || f.raw == "now" {
		return now().In(loc)
	}
	t, err := parseTime(f.raw, loc)
	if err != nil {
		// Set already validated raw.
		panic(err)
	}
	return t
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" || s == "now" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339, %q or %q", s, "2006-01-02 15:04", "now")
}
