package cron

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// One []int each for minutes, hours, ...
// Must be in sorted order. nil == '*'
// Values are bit offsets, so days of month and months count from 0.
type testSchedule [5][]int

func toTestSchedule(s *Schedule) testSchedule {
	var ts testSchedule
	for i, size := range fieldSizes {
		var part []int
		allSet := true
		for j := 0; j < size; j++ {
			if s.isSet(fieldOffsets[i] + j) {
				part = append(part, j)
			} else {
				allSet = false
			}
		}
		if allSet {
			part = nil
		}
		ts[i] = part
	}
	return ts
}

func TestParseWithoutHash(t *testing.T) {
	for _, tt := range []struct {
		expr string
		want testSchedule
	}{
		{"* * * * *", testSchedule{nil, nil, nil, nil, nil}},
		{"0 0 1 1 0", testSchedule{{0}, {0}, {0}, {0}, {0}}},
		{"2,3 * * * *", testSchedule{{2, 3}, nil, nil, nil, nil}},
		{"2-5 * * * *", testSchedule{{2, 3, 4, 5}, nil, nil, nil, nil}},
		{"1,3-5 * * * *", testSchedule{{1, 3, 4, 5}, nil, nil, nil, nil}},
		{"1,3-5,10-45/10,58 * * * *", testSchedule{{1, 3, 4, 5, 10, 20, 30, 40, 58}, nil, nil, nil, nil}},
		{"* 21-3 * * *", testSchedule{nil, {0, 1, 2, 3, 21, 22, 23}, nil, nil, nil}},
		{"* * * JAN *", testSchedule{nil, nil, nil, {0}, nil}},
		{"* * * Janua *", testSchedule{nil, nil, nil, {0}, nil}},
		{"* * * APR-JUL *", testSchedule{nil, nil, nil, {3, 4, 5, 6}, nil}},
		{"* * * * MON,WED", testSchedule{nil, nil, nil, nil, {1, 3}}},
		{"* */6 * * *", testSchedule{nil, {0, 6, 12, 18}, nil, nil, nil}},
		{"* 6-10/2 * * *", testSchedule{nil, {6, 8, 10}, nil, nil, nil}},
		{"50/5 * * * *", testSchedule{{50, 55}, nil, nil, nil, nil}},
		{"* * */10 * *", testSchedule{nil, nil, {0, 10, 20, 30}, nil, nil}},
		{"* * * * 7", testSchedule{nil, nil, nil, nil, {0}}},
		{"* * * * 5-7", testSchedule{nil, nil, nil, nil, {0, 5, 6}}},
		{"* * * * 0-7", testSchedule{nil, nil, nil, nil, nil}},
		{"* * * * 7-2", testSchedule{nil, nil, nil, nil, {0, 1, 2}}},
		{"* * * * fri-mon", testSchedule{nil, nil, nil, nil, {0, 1, 5, 6}}},
		{"@yearly", testSchedule{{0}, {0}, {0}, {0}, nil}},
		{"@annually", testSchedule{{0}, {0}, {0}, {0}, nil}},
		{"@monthly", testSchedule{{0}, {0}, {0}, nil, nil}},
		{"@weekly", testSchedule{{0}, {0}, nil, nil, {0}}},
		{"@daily", testSchedule{{0}, {0}, nil, nil, nil}},
		{"@midnight", testSchedule{{0}, {0}, nil, nil, nil}},
		{"@hourly", testSchedule{{0}, nil, nil, nil, nil}},
		// Without a seed, H picks the bottom of its range.
		{"H H * * *", testSchedule{{0}, {0}, nil, nil, nil}},
		{"H(3-9) H * * *", testSchedule{{3}, {0}, nil, nil, nil}},
		{"H/15 * * * *", testSchedule{{0, 15, 30, 45}, nil, nil, nil, nil}},
		{"0 0 H * *", testSchedule{{0}, {0}, {0}, nil, nil}},
		{"* * H/10 * *", testSchedule{nil, nil, {0, 10, 20}, nil, nil}},
	} {
		s, err := Parse(tt.expr)
		if err != nil {
			t.Errorf("Parse(%q): %s", tt.expr, err)
			continue
		}
		if diff := cmp.Diff(toTestSchedule(s), tt.want); diff != "" {
			t.Errorf("Parse(%q): (-got, +want):\n%s", tt.expr, diff)
			continue
		}
		if strings.Contains(tt.expr, "H") || strings.HasPrefix(tt.expr, "@") {
			continue
		}
		// ParseWithHash should return the same schedule as Parse when the
		// expression does not contain the H symbol.
		s, err = ParseWithHash(tt.expr, 0)
		if err != nil {
			t.Errorf("ParseWithHash(%q): %s", tt.expr, err)
			continue
		}
		if diff := cmp.Diff(toTestSchedule(s), tt.want); diff != "" {
			t.Errorf("ParseWithHash(%q): (-got, +want):\n%s", tt.expr, diff)
			continue
		}
	}
}

func TestParseFail(t *testing.T) {
	for _, tt := range []struct {
		expr string
		want string // substring
	}{
		{"* * * *", "wrong number of fields"},
		{"-1 * * * *", "invalid value"},
		{"60 * * * *", "invalid value"},
		{"* 24 * * *", "invalid value"},
		{"* * 0 * *", "invalid value"},
		{"* * 32 * *", "invalid value"},
		{"* * * 0 *", "invalid value"},
		{"* * * 13 *", "invalid value"},
		{"* * * J *", "invalid value"},
		{"* * * foo *", "invalid value"},
		{"* * * * 8", "invalid value"},
		{"1 - 3 * * * *", "wrong number of fields"},
		{"1-3-7 * * * *", "invalid value"},
		{"1/3/7 * * * *", "invalid increment"},
		{"*/0 * * * *", "must be at least 1"},
		{"5-5 * * * *", "start and end must be different"},
		{"@foobar", "unrecognized cron schedule"},
		{"H-5 * * * *", "bad range"},
		{"H(5-1) * * * *", "start must not exceed end"},
		{"H(1-70) * * * *", "invalid value"},
		{"H(1-5 * * * *", "missing ')'"},
		{"H() * * * *", "expected H(a-b)"},
		{"", "wrong number of fields"},
	} {
		_, err := Parse(tt.expr)
		if err == nil {
			t.Errorf("Parse accepted %q, but it is invalid", tt.expr)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Parse(%q): got error %q; want substring %q", tt.expr, err, tt.want)
		}
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("Parse(%q): error %q does not match ErrInvalidSchedule", tt.expr, err)
		}
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := New("* * * *", WithLine(3))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("got %T; want *ParseError", err)
	}
	if pe.Line != 3 {
		t.Errorf("got line %d; want 3", pe.Line)
	}
	if !strings.HasPrefix(err.Error(), "line 3: ") {
		t.Errorf("got error %q; want line prefix", err)
	}
}

// fixedRNG returns the given values (modulo n) in order, then zeros.
type fixedRNG struct {
	vals []int
	i    int
}

func (r *fixedRNG) Intn(n int) int {
	if r.i >= len(r.vals) {
		return 0
	}
	v := r.vals[r.i] % n
	r.i++
	return v
}

func TestParseWithHash(t *testing.T) {
	// The first five values pick minute, hour, day of month, month and day
	// of week; interval forms draw after that.
	for _, tt := range []struct {
		expr     string
		randVals []int
		want     testSchedule
	}{
		{"@hourly", []int{10}, testSchedule{{10}, nil, nil, nil, nil}},
		{"H * * * *", []int{11}, testSchedule{{11}, nil, nil, nil, nil}},
		{"@daily", []int{12, 13}, testSchedule{{12}, {13}, nil, nil, nil}},
		{"H H * * *", []int{14, 15}, testSchedule{{14}, {15}, nil, nil, nil}},
		{"@weekly", []int{16, 17, 18, 19, 20}, testSchedule{{16}, {17}, nil, nil, {6}}},
		{"@monthly", []int{27, 21, 27}, testSchedule{{27}, {21}, {27}, nil, nil}},
		{"@yearly", []int{1, 2, 3, 4}, testSchedule{{1}, {2}, {3}, {4}, nil}},
		{"@midnight", []int{5, 10}, testSchedule{{5}, {1}, nil, nil, nil}},
		{"H H H * *", []int{28, 21, 55}, testSchedule{{28}, {21}, {27}, nil, nil}},
		{"H 0 * * *", []int{22}, testSchedule{{22}, {0}, nil, nil, nil}},
		{"H H H H H", []int{0}, testSchedule{{0}, {0}, {0}, {0}, {0}}},
		{"H H H H H", []int{59, 23, 27, 11, 6}, testSchedule{{59}, {23}, {27}, {11}, {6}}},
		{"H H H H H", []int{60, 24, 28, 12, 7}, testSchedule{{0}, {0}, {0}, {0}, {0}}},
		{"H/1 * * * *", []int{0, 0, 0, 0, 0, 3}, testSchedule{nil, nil, nil, nil, nil}},
		{"* H/6 * * *", []int{0, 0, 0, 0, 0, 10}, testSchedule{nil, {4, 10, 16, 22}, nil, nil, nil}},
		{"H H/6 * * *", []int{11, 0, 0, 0, 0, 12}, testSchedule{{11}, {0, 6, 12, 18}, nil, nil, nil}},
		{"H/15 H/6 * * *", []int{0, 0, 0, 0, 0, 64, 1}, testSchedule{{4, 19, 34, 49}, {1, 7, 13, 19}, nil, nil, nil}},
		{"H H/12 * March *", []int{14, 0, 0, 0, 0, 4}, testSchedule{{14}, {4, 16}, nil, {2}, nil}},
		{"* * H/10 * *", []int{0, 0, 0, 0, 0, 3}, testSchedule{nil, nil, {3, 13, 23}, nil, nil}},
		{"* * H/10 * *", []int{0, 0, 0, 0, 0, 9}, testSchedule{nil, nil, {9, 19}, nil, nil}},
		{"* * H/1 * *", []int{0, 0, 0, 0, 0, 5}, testSchedule{nil, nil, {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27}, nil, nil}},
		{"H(10-20) * * * *", []int{25}, testSchedule{{13}, nil, nil, nil, nil}},
		{"H H(0-2) * * *", []int{5, 10}, testSchedule{{5}, {1}, nil, nil, nil}},
		{"H(0-29)/10 * * * *", []int{0, 0, 0, 0, 0, 7}, testSchedule{{7, 17, 27}, nil, nil, nil, nil}},
		{"* * * * H(1-5)", []int{0, 0, 0, 0, 6}, testSchedule{nil, nil, nil, nil, {2}}},
	} {
		s, err := parseWithHash(tt.expr, &fixedRNG{vals: tt.randVals})
		if err != nil {
			t.Errorf("parseWithHash(%q, %v): %s", tt.expr, tt.randVals, err)
			continue
		}
		if diff := cmp.Diff(toTestSchedule(s), tt.want); diff != "" {
			t.Errorf("parseWithHash(%q, %v): (-got, +want):\n%s", tt.expr, tt.randVals, diff)
			continue
		}
	}
}

func TestParseWithHashDeterministic(t *testing.T) {
	seed := SeedFromName("nightly-build")
	s1, err := ParseWithHash("H H * * H", seed)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := ParseWithHash("H H * * H", seed)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(toTestSchedule(s1), toTestSchedule(s2)); diff != "" {
		t.Fatalf("same seed produced different schedules: (-first, +second):\n%s", diff)
	}
	if SeedFromName("a") == SeedFromName("b") {
		t.Fatal("distinct names produced the same seed")
	}
}

func TestHashedDayOfMonthExistsInEveryMonth(t *testing.T) {
	for _, expr := range []string{"0 0 H * *", "0 0 H/3 * *", "0 0 H/10 * *", "0 0 H/1 * *", "@monthly", "@yearly"} {
		for seed := uint64(0); seed < 200; seed++ {
			s, err := ParseWithHash(expr, seed)
			if err != nil {
				t.Fatalf("ParseWithHash(%q, %d): %s", expr, seed, err)
			}
			for day := 29; day <= doms; day++ {
				if s.isSet(domOffset + day - 1) {
					t.Errorf("ParseWithHash(%q, %d) selects day of month %d", expr, seed, day)
				}
			}
		}
	}
}
