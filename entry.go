package crontab

import (
	"maps"
	"strings"
	"time"

	"github.com/cespare/crontab/cron"
	"github.com/cespare/crontab/params"
)

// An Evaluator decides when a single recurrence rule fires.
// *cron.Schedule is the standard implementation.
type Evaluator interface {
	Matches(t time.Time) bool
	// SanityWarning returns "" if the rule looks reasonable.
	SanityWarning() string
	Next(t time.Time) (time.Time, bool)
	Prev(t time.Time) (time.Time, bool)
	Ceil(t time.Time) (time.Time, bool)
	Floor(t time.Time) (time.Time, bool)
}

var _ Evaluator = (*cron.Schedule)(nil)

// An Entry is one line of a Schedule: a recurrence rule together with the
// parameters attached to it. Entries are immutable.
type Entry struct {
	eval   Evaluator
	params map[string]string
	rule   string
	line   int
}

// NewEntry returns an Entry firing according to eval and carrying params.
// A nil params map is treated as empty.
func NewEntry(eval Evaluator, params map[string]string) *Entry {
	e := &Entry{eval: eval, params: maps.Clone(params)}
	if e.params == nil {
		e.params = map[string]string{}
	}
	if s, ok := eval.(interface{ String() string }); ok {
		e.rule = s.String()
	}
	return e
}

// ParseEntry parses one line of a schedule. Everything before the first '%'
// is the cron expression; everything after it is the parameter block, which
// may itself contain '%'.
//
// If seed is nil, H does not spread. A nil loc means time.Local. Errors are
// *SpecError values.
func ParseEntry(line string, lineNumber int, seed *uint64, loc *time.Location) (*Entry, error) {
	expr, block, hasParams := strings.Cut(line, "%")
	opts := []cron.Option{cron.WithLine(lineNumber), cron.WithLocation(loc)}
	if seed != nil {
		opts = append(opts, cron.WithSeed(*seed))
	}
	s, err := cron.New(strings.TrimSpace(expr), opts...)
	if err != nil {
		return nil, &SpecError{Line: lineNumber, Text: line, Err: err}
	}
	var p map[string]string
	if hasParams {
		p = params.Parse(block)
	}
	e := NewEntry(s, p)
	e.line = lineNumber
	return e, nil
}

func (e *Entry) Matches(t time.Time) bool { return e.eval.Matches(t) }

func (e *Entry) SanityWarning() string { return e.eval.SanityWarning() }

// Next returns the first activation strictly after t.
func (e *Entry) Next(t time.Time) (time.Time, bool) { return e.eval.Next(t) }

// Prev returns the last activation strictly before t.
func (e *Entry) Prev(t time.Time) (time.Time, bool) { return e.eval.Prev(t) }

// Ceil returns the first activation at or after t.
func (e *Entry) Ceil(t time.Time) (time.Time, bool) { return e.eval.Ceil(t) }

// Floor returns the last activation at or before t.
func (e *Entry) Floor(t time.Time) (time.Time, bool) { return e.eval.Floor(t) }

// Params returns a copy of the entry's parameters. It is never nil.
func (e *Entry) Params() map[string]string { return maps.Clone(e.params) }

// Param returns the value of a single parameter.
func (e *Entry) Param(name string) (string, bool) {
	v, ok := e.params[name]
	return v, ok
}

// Rule returns the recurrence rule text, if known.
func (e *Entry) Rule() string { return e.rule }

// Line returns the significant line number the entry was parsed from, or 0.
func (e *Entry) Line() int { return e.line }
