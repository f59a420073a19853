// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// patternTimeout bounds a single class-name match.
const patternTimeout = 100 * time.Millisecond

// ErrInvalidPattern is returned for a pattern matcher that does not compile.
var ErrInvalidPattern = errors.New("invalid class type pattern")

// =============================================================================
// Class-Name Matchers
// =============================================================================

// MatcherKind distinguishes literal names from patterns.
type MatcherKind int

const (
	// MatchName compares the class name with a literal string, exactly or
	// by suffix depending on the table-wide suffix mode.
	MatchName MatcherKind = iota

	// MatchPattern searches the class name with an ECMAScript regular
	// expression.
	MatchPattern
)

// Matcher tests a class name for one entry of a class-type table.
type Matcher struct {
	kind    MatcherKind
	text    string
	flags   string
	pattern *regexp2.Regexp
}

// Name returns a literal name matcher.
func Name(name string) Matcher {
	return Matcher{kind: MatchName, text: name}
}

// Pattern compiles an ECMAScript regular expression matcher.
//
// Inputs:
//
//	source - The expression between the slashes of a JS regex literal.
//	flags - Any of "i", "m", "u", "g", "y". "g", "y" and "u" do not change
//	        the outcome of a single test and are accepted for convenience.
//
// Outputs:
//
//	Matcher - The compiled matcher.
//	error - Wraps ErrInvalidPattern when the expression or a flag is rejected.
func Pattern(source, flags string) (Matcher, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 'g', 'y', 'u':
		default:
			return Matcher{}, fmt.Errorf("%w: /%s/%s: unsupported flag %q", ErrInvalidPattern, source, flags, f)
		}
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return Matcher{}, fmt.Errorf("%w: /%s/%s: %v", ErrInvalidPattern, source, flags, err)
	}
	re.MatchTimeout = patternTimeout
	return Matcher{kind: MatchPattern, text: source, flags: flags, pattern: re}, nil
}

// ParseMatcher reads the textual form used in configuration files:
// "/source/flags" is a pattern, anything else is a literal name.
func ParseMatcher(s string) (Matcher, error) {
	if len(s) >= 2 && s[0] == '/' {
		if end := strings.LastIndexByte(s, '/'); end > 0 {
			return Pattern(s[1:end], s[end+1:])
		}
	}
	return Name(s), nil
}

// MustParseMatcher is ParseMatcher for literals known to be valid.
func MustParseMatcher(s string) Matcher {
	m, err := ParseMatcher(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Kind reports whether m is a name or a pattern matcher.
func (m Matcher) Kind() MatcherKind {
	return m.kind
}

// Match reports whether className satisfies m. With suffix set, name
// matchers compare by suffix instead of equality; patterns are unaffected.
func (m Matcher) Match(className string, suffix bool) bool {
	switch m.kind {
	case MatchName:
		if suffix {
			return strings.HasSuffix(className, m.text)
		}
		return className == m.text
	case MatchPattern:
		if m.pattern == nil {
			return false
		}
		ok, err := m.pattern.MatchString(className)
		return err == nil && ok
	default:
		return false
	}
}

// String returns the configuration-file form of m.
func (m Matcher) String() string {
	if m.kind == MatchPattern {
		return "/" + m.text + "/" + m.flags
	}
	return m.text
}

// UnmarshalYAML reads a matcher from a scalar in ParseMatcher form.
func (m *Matcher) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: class type matcher must be a string", node.Line)
	}
	parsed, err := ParseMatcher(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the ParseMatcher form.
func (m Matcher) MarshalYAML() (any, error) {
	return m.String(), nil
}
