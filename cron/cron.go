// Package cron parses single cron time schedules and computes scheduling.
package cron

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// New parses a cron expression string. Five fields (minute, hour, day of
// month, month, day of week) are expected. Valid symbols are
//
//	/ - * , H
//
// Month and weekday names (or any unique prefix thereof, case-insensitively)
// may be used in those respective fields. Months start on day 1. Weeks start on
// day 0, Sunday. The maximum weekday value is 7, which is Sunday again.
//
// Here are some examples of valid expression strings along with their meanings:
//
//   - "* * * * *": every minute
//   - "*/5 * * * *": every 5 minutes
//   - "15 * * * *": every hour at 15 past
//   - "0 3 * * Wed": every Wednesday at 0300
//   - "0 0 1 */3 *": at the beginning of each quarter
//   - "H H(0-7) * * *": once a day, at some minute between 0000 and 0759
//
// The H symbol stands for a pseudo-random value within the field's range (or
// within the explicit range given as H(a-b)) that is fixed by the spread seed
// (see WithSeed). H/n steps through the range starting from a pseudo-random
// offset below n. Without a seed, H picks the lowest value of its range, so
// that schedules without a seed never spread. The range for hashed day of
// month values is [1, 28], for H/n as well as H.
//
// Instead of a five-field expression, a named schedule starting with "@" may be
// used:
//
//   - "@yearly" and "@annually", meaning "H H H H *",
//   - "@monthly", meaning "H H H * *",
//   - "@weekly", meaning "H H * * H",
//   - "@daily", meaning "H H * * *",
//   - "@midnight", meaning "H H(0-2) * * *", and
//   - "@hourly", meaning "H * * * *".
//
// The day of month and day of week fields must both match.
//
// Read http://en.wikipedia.org/wiki/Cron for more information about the format.
func New(expr string, opts ...Option) (*Schedule, error) {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	var rng intner = zeroRNG{}
	if o.seeded {
		rng = newSeededRNG(o.seed)
	}
	s, err := parseWithHash(expr, rng)
	if err != nil {
		return nil, &ParseError{Line: o.line, Expr: strings.TrimSpace(expr), Err: err}
	}
	s.loc = o.loc
	s.line = o.line
	return s, nil
}

// Parse parses a cron expression in the local time zone without spreading H.
func Parse(expr string) (*Schedule, error) {
	return New(expr)
}

// ParseWithHash is like Parse but resolves every H symbol using values
// generated from seed. Given the same seed, the same schedule is generated.
//
// For example, the schedule
//
//	H H * * *
//
// is a schedule that fires once per day at a random hour and minute that is
// chosen when the schedule is parsed.
//
// The idea of the H symbol is borrowed from Jenkins.
func ParseWithHash(expr string, seed uint64) (*Schedule, error) {
	return New(expr, WithSeed(seed))
}

// An Option configures New.
type Option func(*options)

type options struct {
	line   int
	seed   uint64
	seeded bool
	loc    *time.Location
}

// WithLine records the line number of the expression within a larger
// specification. It is reported by ParseError.
func WithLine(line int) Option {
	return func(o *options) { o.line = line }
}

// WithSeed makes H spread deterministically using seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithLocation sets the time zone in which the schedule is evaluated.
// A nil location means time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc == nil {
			loc = time.Local
		}
		o.loc = loc
	}
}

// ErrInvalidSchedule is matched by every error returned from New.
var ErrInvalidSchedule = errors.New("invalid cron schedule")

// A ParseError describes a cron expression that could not be parsed.
type ParseError struct {
	Line int // 0 if unknown
	Expr string
	Err  error
}

func (e *ParseError) Error() string {
	var msg string
	// Just for a friendlier error message
	if strings.HasPrefix(e.Expr, "@") {
		msg = fmt.Sprintf("unrecognized cron schedule name: %q", e.Expr)
	} else {
		msg = fmt.Sprintf("invalid cron schedule %q: %s", e.Expr, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidSchedule }

// String returns the expression s was parsed from.
func (s *Schedule) String() string { return s.expr }

// Line returns the line number given by WithLine, or 0.
func (s *Schedule) Line() int { return s.line }

// Location returns the time zone s is evaluated in.
func (s *Schedule) Location() *time.Location { return s.loc }

func (s *Schedule) matchesMonth(t time.Time) bool {
	return s.isSet(monthOffset + int(t.Month()) - 1)
}

func (s *Schedule) matchesDay(t time.Time) bool {
	return s.isSet(domOffset+t.Day()-1) && s.isSet(dowOffset+int(t.Weekday()))
}

func (s *Schedule) matchesHour(t time.Time) bool {
	return s.isSet(hourOffset + t.Hour())
}

func (s *Schedule) matchesMinute(t time.Time) bool {
	return s.isSet(minuteOffset + t.Minute())
}

const (
	// These are in order, LSB first.
	minutes = 60
	hours   = 24
	doms    = 31
	months  = 12
	dows    = 7

	minuteOffset  = 0
	hourOffset    = minuteOffset + minutes
	domOffset     = hourOffset + hours
	monthOffset   = domOffset + doms
	dowOffset     = monthOffset + months
	end           = dowOffset + dows
	scheduleBytes = (end-1)/8 + 1
)

var fieldSizes = [...]int{
	0: minutes,
	1: hours,
	2: doms,
	3: months,
	4: dows,
}

var fieldOffsets = [...]int{
	0: minuteOffset,
	1: hourOffset,
	2: domOffset,
	3: monthOffset,
	4: dowOffset,
}

// Smallest value of each field. Bit offsets within a field are relative to it.
var fieldMins = [...]int{
	0: 0,
	1: 0,
	2: 1,
	3: 1,
	4: 0,
}

var fieldNames = [...]string{
	0: "minute",
	1: "hour",
	2: "day of month",
	3: "month",
	4: "day of week",
}

func fieldMax(fieldIndex int) int {
	return fieldMins[fieldIndex] + fieldSizes[fieldIndex] - 1
}

// A Schedule is a parsed cron schedule. It is immutable and safe for
// concurrent use.
type Schedule struct {
	b    [scheduleBytes]byte
	expr string
	line int
	loc  *time.Location
}

var namedSchedules = map[string]string{
	"@yearly":   "H H H H *",
	"@annually": "H H H H *",
	"@monthly":  "H H H * *",
	"@weekly":   "H H * * H",
	"@daily":    "H H * * *",
	"@midnight": "H H(0-2) * * *",
	"@hourly":   "H * * * *",
}

var monthNames = []string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

var dowNames = []string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

func parseWithHash(expr string, rng intner) (*Schedule, error) {
	expr = strings.TrimSpace(expr)
	fieldExpr := expr
	if strings.HasPrefix(expr, "@") {
		named, ok := namedSchedules[strings.ToLower(expr)]
		if !ok {
			return nil, fmt.Errorf("unknown schedule name %q", expr)
		}
		fieldExpr = named
	}
	s, err := parseFields(fieldExpr, newHashedFields(rng))
	if err != nil {
		return nil, err
	}
	s.expr = expr
	return s, nil
}

func parseFields(expr string, hf *hashedFields) (*Schedule, error) {
	var schedule Schedule
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("wrong number of fields in schedule %q (expected 5)", expr)
	}
	for i, field := range fields {
		for _, part := range strings.Split(field, ",") {
			partial, err := parseSinglePart(part, i, hf)
			if err != nil {
				return nil, err
			}
			schedule.union(partial)
		}
	}
	return &schedule, nil
}

func parseSinglePart(part string, fieldIndex int, hf *hashedFields) (*Schedule, error) {
	inc := 1
	incParts := strings.SplitN(part, "/", 2)
	isInterval := len(incParts) == 2
	if isInterval {
		var err error
		inc, err = strconv.Atoi(incParts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid increment: %q", incParts[1])
		}
		if inc < 1 {
			return nil, fmt.Errorf("invalid increment %d (must be at least 1)", inc)
		}
	}
	lo, hi := fieldMins[fieldIndex], fieldMax(fieldIndex)
	var rangeStart, rangeEnd int // inclusive
	var err error
	rangeExpr := incParts[0]
	switch upper := strings.ToUpper(rangeExpr); {
	case rangeExpr == "*":
		rangeStart, rangeEnd = lo, hi
	case upper == "H":
		if !isInterval {
			rangeStart = hf.fields[fieldIndex]
			rangeEnd = rangeStart
		} else {
			// For interval schedules like H/n, start at a random offset in
			// [0, n).
			top := hi
			if fieldIndex == 2 {
				top = lo + hashedDoms - 1
			}
			rangeStart = lo + hf.rng.Intn(min(inc, top-lo+1))
			rangeEnd = top
		}
	case strings.HasPrefix(upper, "H("):
		var a, b int
		a, b, err = parseHashRange(rangeExpr, fieldIndex)
		if err != nil {
			return nil, err
		}
		span := b - a + 1
		if !isInterval {
			rangeStart = a + (hf.fields[fieldIndex]-lo)%span
			rangeEnd = rangeStart
		} else {
			rangeStart = a + hf.rng.Intn(min(inc, span))
			rangeEnd = b
		}
	default:
		if rangeParts := strings.SplitN(rangeExpr, "-", 2); len(rangeParts) == 2 {
			if strings.HasPrefix(strings.ToUpper(rangeParts[0]), "H") {
				return nil, fmt.Errorf("bad range %q -- use H(a-b) to spread within a range", rangeExpr)
			}
			rangeStart, err = parseSingleValue(rangeParts[0], fieldIndex)
			if err != nil {
				return nil, err
			}
			rangeEnd, err = parseSingleValue(rangeParts[1], fieldIndex)
			if err != nil {
				return nil, err
			}
			if rangeStart == rangeEnd {
				return nil, fmt.Errorf("bad range %q -- start and end must be different", rangeExpr)
			}
		} else {
			rangeStart, err = parseSingleValue(rangeExpr, fieldIndex)
			if err != nil {
				return nil, err
			}
			rangeEnd = rangeStart
			if isInterval {
				// "a/n" runs from a to the end of the field.
				rangeEnd = hi
			}
		}
	}

	// Day of week 7 is another name for Sunday.
	sunday := false
	if fieldIndex == 4 {
		switch {
		case rangeStart == 7 && rangeEnd == 7:
			rangeStart, rangeEnd = 0, 0
		case rangeEnd == 7:
			rangeEnd = 6
			sunday = (7-rangeStart)%inc == 0
		case rangeStart == 7:
			rangeStart = 0
		}
	}

	var s Schedule
	j := rangeStart
	for i := 0; ; i++ {
		if i%inc == 0 {
			s.set(fieldOffsets[fieldIndex] + j - lo)
		}
		if j == rangeEnd {
			break
		}
		j++
		if j > hi {
			j = lo
		}
	}
	if sunday {
		s.set(dowOffset)
	}
	return &s, nil
}

// parseHashRange parses "H(a-b)".
func parseHashRange(expr string, fieldIndex int) (int, int, error) {
	if !strings.HasSuffix(expr, ")") {
		return 0, 0, fmt.Errorf("bad hash range %q -- missing ')'", expr)
	}
	inner := expr[2 : len(expr)-1]
	parts := strings.SplitN(inner, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad hash range %q -- expected H(a-b)", expr)
	}
	a, err := parseSingleValue(parts[0], fieldIndex)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseSingleValue(parts[1], fieldIndex)
	if err != nil {
		return 0, 0, err
	}
	if a > b {
		return 0, 0, fmt.Errorf("bad hash range %q -- start must not exceed end", expr)
	}
	if fieldIndex == 4 && b == 7 {
		if a == 7 {
			a, b = 0, 0
		} else {
			b = 6
		}
	}
	return a, b, nil
}

func parseSingleValue(val string, fieldIndex int) (int, error) {
	if n, err := strconv.Atoi(val); err == nil {
		hi := fieldMax(fieldIndex)
		if fieldIndex == 4 {
			hi = 7
		}
		if n < fieldMins[fieldIndex] || n > hi {
			return 0, fmt.Errorf("invalid value %d for the %s field", n, fieldNames[fieldIndex])
		}
		return n, nil
	}
	switch fieldIndex {
	case 3:
		n := matchUniquePrefix(val, monthNames)
		if n >= 0 {
			return n + 1, nil
		}
	case 4:
		n := matchUniquePrefix(val, dowNames)
		if n >= 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid value %q for the %s field", val, fieldNames[fieldIndex])
}

func matchUniquePrefix(prefix string, dict []string) int {
	s := strings.ToLower(prefix)
	if s == "" {
		return -1
	}
	result := -1
	for i, s2 := range dict {
		if strings.HasPrefix(s2, s) {
			if result >= 0 {
				return -1
			}
			result = i
		}
	}
	return result
}

func (s *Schedule) set(off int) {
	s.b[off/8] |= (1 << uint(off%8))
}

func (s *Schedule) isSet(off int) bool {
	return s.b[off/8]&(1<<uint(off%8)) > 0
}

func (s *Schedule) union(s1 *Schedule) {
	for i := range s.b {
		s.b[i] |= s1.b[i]
	}
}

func (s *Schedule) count(fieldIndex int) int {
	n := 0
	for j := 0; j < fieldSizes[fieldIndex]; j++ {
		if s.isSet(fieldOffsets[fieldIndex] + j) {
			n++
		}
	}
	return n
}
