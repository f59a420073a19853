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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		matcher string
		class   string
		suffix  bool
		want    bool
	}{
		{name: "exact hit", matcher: "Test", class: "Test", want: true},
		{name: "exact miss", matcher: "Test", class: "MyTest", want: false},
		{name: "suffix hit", matcher: "View", class: "ItemView", suffix: true, want: true},
		{name: "suffix miss", matcher: "View", class: "ViewModel", suffix: true, want: false},
		{name: "pattern hit", matcher: "/est$/", class: "Test", want: true},
		{name: "pattern miss", matcher: "/MyTest/", class: "Test", want: false},
		{name: "pattern ignores suffix mode", matcher: "/^Item/", class: "ItemView", suffix: true, want: true},
		{name: "pattern case insensitive", matcher: "/^itemview$/i", class: "ItemView", want: true},
		{name: "pattern searches anywhere", matcher: "/Coll/", class: "TodoCollection", want: true},
		{name: "lone slash is a name", matcher: "/", class: "/", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMatcher(tt.matcher)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.class, tt.suffix))
		})
	}
}

func TestPattern_CombinedFlags(t *testing.T) {
	m, err := Pattern("^view$", "im")
	require.NoError(t, err)
	assert.True(t, m.Match("Item\nView", false))
	assert.False(t, m.Match("ItemView", false))

	m, err = Pattern("view", "gyu")
	require.NoError(t, err)
	assert.False(t, m.Match("ItemView", false), "g, y and u leave case sensitivity alone")
}

func TestParseMatcher_Errors(t *testing.T) {
	for _, s := range []string{"/(/", "/a/s", "/a/x"} {
		_, err := ParseMatcher(s)
		assert.ErrorIs(t, err, ErrInvalidPattern, s)
	}
}

func TestMatcher_String(t *testing.T) {
	assert.Equal(t, "Test", Name("Test").String())
	assert.Equal(t, "/est$/i", MustParseMatcher("/est$/i").String())
	assert.Equal(t, MatchPattern, MustParseMatcher("/x/").Kind())
	assert.Equal(t, MatchName, MustParseMatcher("x").Kind())
}

func TestMatcherTable_YAML(t *testing.T) {
	doc := []byte(`
view: ['/View$/', Layout]
model: [Todo]
`)
	var table Table[Matcher]
	require.NoError(t, yaml.Unmarshal(doc, &table))
	assert.Equal(t, []string{"view", "model"}, table.Keys())

	view, _ := table.Get("view")
	require.Len(t, view, 2)
	assert.Equal(t, MatchPattern, view[0].Kind())
	assert.True(t, view[0].Match("ItemView", false))
	assert.True(t, view[1].Match("Layout", false))

	out, err := yaml.Marshal(table)
	require.NoError(t, err)
	assert.Contains(t, string(out), "/View$/")
}

func TestMatcherTable_YAMLInvalidPattern(t *testing.T) {
	var table Table[Matcher]
	err := yaml.Unmarshal([]byte(`view: ['/(/']`), &table)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
