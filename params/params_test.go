package params

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		block string
		want  map[string]string
	}{
		{"", map[string]string{}},
		{"   ", map[string]string{}},
		{"foo=bar", map[string]string{"foo": "bar"}},
		{" foo = bar ; baz=qux;", map[string]string{"foo": "bar", "baz": "qux"}},
		{"a=1;a=2", map[string]string{"a": "2"}},
		{"flag", map[string]string{"flag": ""}},
		{"=orphan;x=y", map[string]string{"x": "y"}},
		{"url=http://h/?q=1", map[string]string{"url": "http://h/?q=1"}},
		// Anything after the first '=' belongs to the value, '%' included.
		{"a=b%c=d", map[string]string{"a": "b%c=d"}},
		{";;", map[string]string{}},
	} {
		got := Parse(tt.block)
		if got == nil {
			t.Errorf("Parse(%q) returned nil", tt.block)
			continue
		}
		if diff := cmp.Diff(got, tt.want); diff != "" {
			t.Errorf("Parse(%q): (-got, +want):\n%s", tt.block, diff)
		}
	}
}

func TestFormat(t *testing.T) {
	m := map[string]string{"b": "2", "a": "1", "c": ""}
	got := Format(m)
	if want := "a=1;b=2;c="; got != want {
		t.Fatalf("Format = %q; want %q", got, want)
	}
	if diff := cmp.Diff(Parse(got), m); diff != "" {
		t.Fatalf("Parse(Format(m)): (-got, +want):\n%s", diff)
	}
	if got := Format(nil); got != "" {
		t.Fatalf("Format(nil) = %q; want empty", got)
	}
}
