// Package params parses the parameter block that may follow a cron
// expression, as in
//
//	H 2 * * *%TARGET=nightly;VERBOSE=true
//
// A block is a list of name=value pairs separated by semicolons.
package params

import (
	"sort"
	"strings"
)

const (
	pairSeparator  = ";"
	valueSeparator = "="
)

// Parse returns the name/value pairs in block. It never fails: names are
// trimmed, pairs with an empty name are dropped, a pair without "=" maps
// its name to "", and a later pair overrides an earlier one with the same
// name. The result is never nil.
func Parse(block string) map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(block, pairSeparator) {
		name, value, _ := strings.Cut(pair, valueSeparator)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m[name] = strings.TrimSpace(value)
	}
	return m
}

// Format renders m as a block that Parse reads back, with names sorted.
func Format(m map[string]string) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(pairSeparator)
		}
		b.WriteString(name)
		b.WriteString(valueSeparator)
		b.WriteString(m[name])
	}
	return b.String()
}
