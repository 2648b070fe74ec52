// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KebabCase converts a member name to its derived long option name:
// "MaxRetries" -> "max-retries", "HTTPPort" -> "http-port".
func KebabCase(name string) string {
	return strings.Join(words(name), "-")
}

// ConstantCase converts a member name to a value name:
// "MaxRetries" -> "MAX_RETRIES".
func ConstantCase(name string) string {
	return strings.ToUpper(strings.Join(words(name), "_"))
}

// words splits an identifier at word boundaries and lower-cases each word.
func words(name string) []string {
	rs := []rune(name)
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// names is the parsed form of an option template.
type names struct {
	short     string
	symbol    string
	long      string
	valueName string
}

// parseTemplate parses "-s|--long <VALUE>". Either name may be omitted but
// not both. A single-dash part whose character is neither a letter nor a
// digit, like "-?", is a symbol name.
func parseTemplate(tmpl string) (names, error) {
	var n names
	fields := strings.Fields(tmpl)
	if len(fields) == 0 {
		return n, fmt.Errorf("empty template")
	}
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "<") || !strings.HasSuffix(f, ">") || len(f) < 3 {
			return n, fmt.Errorf("unexpected %q in template %q", f, tmpl)
		}
		if n.valueName != "" {
			return n, fmt.Errorf("multiple value names in template %q", tmpl)
		}
		n.valueName = f[1 : len(f)-1]
	}
	for _, part := range strings.Split(fields[0], "|") {
		switch {
		case strings.HasPrefix(part, "--"):
			long := part[2:]
			if long == "" || strings.ContainsAny(long, "=:") {
				return n, fmt.Errorf("invalid long name %q in template %q", part, tmpl)
			}
			if n.long != "" {
				return n, fmt.Errorf("multiple long names in template %q", tmpl)
			}
			n.long = long
		case strings.HasPrefix(part, "-"):
			short := part[1:]
			if utf8.RuneCountInString(short) != 1 || short == "-" || short == "=" || short == ":" {
				return n, fmt.Errorf("short name %q must be a single character in template %q", part, tmpl)
			}
			r, _ := utf8.DecodeRuneInString(short)
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				if n.symbol != "" {
					return n, fmt.Errorf("multiple symbol names in template %q", tmpl)
				}
				n.symbol = short
				continue
			}
			if n.short != "" {
				return n, fmt.Errorf("multiple short names in template %q", tmpl)
			}
			n.short = short
		default:
			return n, fmt.Errorf("name %q must start with - or -- in template %q", part, tmpl)
		}
	}
	return n, nil
}

// firstChar returns the first character of s as a string.
func firstChar(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
