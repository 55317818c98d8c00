package cron

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SanityWarning returns a note about a valid schedule that probably does not
// do what its author intended, or "" if s looks reasonable.
func (s *Schedule) SanityWarning() string {
	normalized := strings.Join(strings.Fields(s.expr), " ")
	if s.count(0) == minutes {
		rest := normalized[strings.Index(normalized, " ")+1:]
		return fmt.Sprintf("Do you really mean \"every minute\" when you say %q? Perhaps you meant %q", s.expr, "H "+rest)
	}
	if n := s.count(2); n > 5 && n < 28 {
		return "Short cycles in the day of month field will behave oddly near the end of a month"
	}
	if hashed := hashify(normalized); hashed != "" {
		return fmt.Sprintf("To allow periodically scheduled tasks to produce even load on the system, consider using the syntax %q rather than %q", hashed, s.expr)
	}
	return ""
}

var (
	leadingMinute = regexp.MustCompile(`^\d+ .+`)
	evenMinutes   = regexp.MustCompile(`^0(,(\d+)(,\d+)*)( .+)$`)
)

// hashify rewrites a fixed-minute expression into its spread equivalent.
// It returns "" if there is nothing to suggest.
func hashify(expr string) string {
	switch {
	case strings.Contains(expr, "H"):
		// Whoever already uses H knows about it.
		return ""
	case strings.HasPrefix(expr, "*/"):
		return "H" + expr[1:]
	case leadingMinute.MatchString(expr):
		return "H " + expr[strings.Index(expr, " ")+1:]
	}
	// "0,15,30,45 ..." becomes "H/15 ...".
	m := evenMinutes.FindStringSubmatch(expr)
	if m == nil {
		return ""
	}
	period, err := strconv.Atoi(m[2])
	if err != nil || period <= 0 {
		return ""
	}
	var b strings.Builder
	for i := period; i < minutes; i += period {
		b.WriteString(",")
		b.WriteString(strconv.Itoa(i))
	}
	if b.String() != m[1] {
		return ""
	}
	return "H/" + m[2] + m[4]
}

// ValidTimezone resolves a time zone identifier such as "Europe/Paris".
// It reports false for unknown identifiers, for "" and for "Local", whose
// meaning depends on the machine.
func ValidTimezone(id string) (*time.Location, bool) {
	id = strings.TrimSpace(id)
	if id == "" || id == "Local" {
		return nil, false
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, false
	}
	return loc, true
}
