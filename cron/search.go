package cron

import "time"

// searchYears bounds every search. Impossible dates like Feb 30 would
// otherwise never terminate; 50 years covers the rarest satisfiable
// combination (Feb 29 on a given weekday across a skipped leap century).
const searchYears = 50

// Matches reports whether the minute containing t satisfies s, evaluated in
// the schedule's time zone. Seconds are ignored.
func (s *Schedule) Matches(t time.Time) bool {
	t = t.In(s.loc)
	return s.matchesMonth(t) && s.matchesDay(t) && s.matchesHour(t) && s.matchesMinute(t)
}

// Next gives the smallest time greater than t when the Schedule is satisfied.
// It reports false if there is none within the search window.
func (s *Schedule) Next(t time.Time) (time.Time, bool) {
	return s.Ceil(t.Add(time.Nanosecond))
}

// Prev gives the largest time less than t when the Schedule is satisfied.
// It reports false if there is none within the search window.
func (s *Schedule) Prev(t time.Time) (time.Time, bool) {
	return s.Floor(t.Add(-time.Nanosecond))
}

// Ceil gives the smallest minute at or after t when the Schedule is satisfied.
func (s *Schedule) Ceil(t time.Time) (time.Time, bool) {
	t = t.In(s.loc)
	c := t.Truncate(time.Minute)
	if c.Before(t) {
		c = c.Add(time.Minute)
	}
	limit := c.AddDate(searchYears, 0, 0)
	for c.Before(limit) {
		if !s.matchesMonth(c) {
			c = advanceMonth(c)
			continue
		}
		if !s.matchesDay(c) {
			c = advanceDay(c)
			continue
		}
		if !s.matchesHour(c) {
			c = advanceHour(c)
			continue
		}
		if !s.matchesMinute(c) {
			c = c.Add(time.Minute)
			continue
		}
		return c, true
	}
	return time.Time{}, false
}

// Floor gives the largest minute at or before t when the Schedule is satisfied.
func (s *Schedule) Floor(t time.Time) (time.Time, bool) {
	c := t.In(s.loc).Truncate(time.Minute)
	limit := c.AddDate(-searchYears, 0, 0)
	for c.After(limit) {
		if !s.matchesMonth(c) {
			c = retreatMonth(c)
			continue
		}
		if !s.matchesDay(c) {
			c = retreatDay(c)
			continue
		}
		if !s.matchesHour(c) {
			c = retreatHour(c)
			continue
		}
		if !s.matchesMinute(c) {
			c = c.Add(-time.Minute)
			continue
		}
		return c, true
	}
	return time.Time{}, false
}

// The advance/retreat helpers jump to the first (last) minute of the next
// (previous) month, day or hour in t's location. time.Date may resolve a
// wall clock time inside a DST transition to an instant on the wrong side
// of t, so those results fall back to hour stepping, which moves in
// absolute time.

func advanceMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return forward(t, time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location()))
}

func advanceDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return forward(t, time.Date(year, month, day+1, 0, 0, 0, 0, t.Location()))
}

func advanceHour(t time.Time) time.Time {
	return t.Add(time.Duration(60-t.Minute()) * time.Minute)
}

func forward(t, next time.Time) time.Time {
	if next.After(t) {
		return next
	}
	return advanceHour(t)
}

func retreatMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return backward(t, time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).Add(-time.Minute))
}

func retreatDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return backward(t, time.Date(year, month, day, 0, 0, 0, 0, t.Location()).Add(-time.Minute))
}

func retreatHour(t time.Time) time.Time {
	return t.Add(-time.Duration(t.Minute()+1) * time.Minute)
}

func backward(t, prev time.Time) time.Time {
	if prev.Before(t) {
		return prev
	}
	return retreatHour(t)
}
