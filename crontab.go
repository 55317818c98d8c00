// Package crontab parses multi-line cron specifications whose lines may carry
// parameters, and answers when the specification as a whole fires.
//
// A specification looks like
//
//	TZ=Europe/Paris
//	# nightly builds
//	H 2 * * *%TARGET=nightly
//	H 14 * * 1-5%TARGET=smoke;FAST=true
//
// The optional TZ= line must be the first line that is neither blank nor a
// comment. Each remaining line is a cron expression (see package cron),
// optionally followed by '%' and a parameter block (see package params).
package crontab

import (
	"strings"
	"time"

	"github.com/cespare/crontab/cron"
	"github.com/cespare/crontab/pkg/logx"
)

const timezonePrefix = "TZ="

// A Schedule is an ordered list of entries sharing one time zone.
// It is immutable and safe for concurrent use.
type Schedule struct {
	entries []*Entry
	loc     *time.Location
	now     func() time.Time
}

// An Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	seed *uint64
	log  logx.Logger
	now  func() time.Time
}

// WithSeed spreads H symbols deterministically using seed.
// Without a seed, H does not spread.
func WithSeed(seed uint64) Option {
	return func(o *parseOptions) { o.seed = &seed }
}

// WithSeedName is WithSeed(cron.SeedFromName(name)). Use the name of the job
// the schedule belongs to.
func WithSeedName(name string) Option {
	return WithSeed(cron.SeedFromName(name))
}

// WithLogger makes Parse log what it recognizes at debug level.
func WithLogger(log logx.Logger) Option {
	return func(o *parseOptions) { o.log = log }
}

// WithClock sets the source of "now" used by queries given a zero time.
func WithClock(now func() time.Time) Option {
	return func(o *parseOptions) { o.now = now }
}

// New returns a Schedule of the given entries, in order.
func New(entries ...*Entry) *Schedule {
	return &Schedule{entries: entries, now: time.Now}
}

// Parse parses a multi-line specification. Blank lines and lines starting
// with '#' are skipped. Line numbers in errors count only the remaining
// lines, from 1. Any error aborts the whole parse.
func Parse(spec string, opts ...Option) (*Schedule, error) {
	o := parseOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log.IsZero() {
		log = logx.Nop()
	}

	var (
		entries    []*Entry
		loc        *time.Location
		lineNumber int
	)
	for _, line := range strings.Split(spec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineNumber++
		if lineNumber == 1 && strings.HasPrefix(line, timezonePrefix) {
			tz, ok := cron.ValidTimezone(strings.TrimPrefix(line, timezonePrefix))
			if !ok {
				return nil, &SpecError{Line: lineNumber, Text: line, Err: errBadTimezone}
			}
			loc = tz
			log.Debug("timezone directive", logx.String("tz", tz.String()))
			continue
		}
		e, err := ParseEntry(line, lineNumber, o.seed, loc)
		if err != nil {
			return nil, err
		}
		if log.Enabled(logx.LevelDebug) {
			log.Debug("entry parsed",
				logx.Int("line", lineNumber),
				logx.String("rule", e.Rule()),
				logx.Int("params", len(e.params)),
				logx.String("warning", e.SanityWarning()),
			)
		}
		entries = append(entries, e)
	}
	if loc == nil {
		loc = time.Local
	}
	log.Debug("schedule parsed", logx.Int("entries", len(entries)), logx.String("tz", loc.String()))
	return &Schedule{entries: entries, loc: loc, now: o.now}, nil
}

// Entries returns the entries in source order.
func (s *Schedule) Entries() []*Entry {
	return append([]*Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Schedule) Len() int { return len(s.entries) }

// Location returns the time zone from the TZ= line, or time.Local.
// It is nil for schedules assembled with New.
func (s *Schedule) Location() *time.Location { return s.loc }

// Matching returns every entry that fires at t, in source order.
func (s *Schedule) Matching(t time.Time) []*Entry {
	var matched []*Entry
	for _, e := range s.entries {
		if e.Matches(t) {
			matched = append(matched, e)
		}
	}
	return matched
}

// SanityWarning returns the first sanity warning of any entry, or "".
func (s *Schedule) SanityWarning() string {
	for _, e := range s.entries {
		if w := e.SanityWarning(); w != "" {
			return w
		}
	}
	return ""
}

// Next returns the earliest activation of any entry strictly after from.
// A zero from means now.
func (s *Schedule) Next(from time.Time) (time.Time, bool) {
	t, _, ok := s.earliest(s.ref(from), (*Entry).Next)
	return t, ok
}

// NextEntry returns the entry owning the activation reported by Next. When
// several entries fire at that instant, the first in source order wins.
func (s *Schedule) NextEntry(from time.Time) (*Entry, bool) {
	_, e, ok := s.earliest(s.ref(from), (*Entry).Next)
	return e, ok
}

// Prev returns the latest activation of any entry strictly before from.
// A zero from means now.
func (s *Schedule) Prev(from time.Time) (time.Time, bool) {
	t, _, ok := s.latest(s.ref(from), (*Entry).Prev)
	return t, ok
}

// PrevEntry returns the entry owning the activation reported by Prev.
func (s *Schedule) PrevEntry(from time.Time) (*Entry, bool) {
	_, e, ok := s.latest(s.ref(from), (*Entry).Prev)
	return e, ok
}

// Ceil returns the earliest activation of any entry at or after t.
func (s *Schedule) Ceil(t time.Time) (time.Time, bool) {
	c, _, ok := s.earliest(t, (*Entry).Ceil)
	return c, ok
}

// Floor returns the latest activation of any entry at or before t.
func (s *Schedule) Floor(t time.Time) (time.Time, bool) {
	f, _, ok := s.latest(t, (*Entry).Floor)
	return f, ok
}

func (s *Schedule) ref(t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

type query func(e *Entry, t time.Time) (time.Time, bool)

// earliest folds q over the entries, keeping the strictly smallest result.
// Entries with no result never displace one that has a result.
func (s *Schedule) earliest(t time.Time, q query) (time.Time, *Entry, bool) {
	var (
		best  time.Time
		owner *Entry
	)
	for _, e := range s.entries {
		c, ok := q(e, t)
		if !ok {
			continue
		}
		if owner == nil || c.Before(best) {
			best, owner = c, e
		}
	}
	return best, owner, owner != nil
}

// latest is earliest with the order reversed.
func (s *Schedule) latest(t time.Time, q query) (time.Time, *Entry, bool) {
	var (
		best  time.Time
		owner *Entry
	)
	for _, e := range s.entries {
		c, ok := q(e, t)
		if !ok {
			continue
		}
		if owner == nil || c.After(best) {
			best, owner = c, e
		}
	}
	return best, owner, owner != nil
}
