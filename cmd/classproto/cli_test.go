// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/classproto/services/classproto/estree"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelClassJSON = `{
  "type": "Program",
  "sourceType": "module",
  "body": [
    {
      "type": "ClassDeclaration",
      "id": {"type": "Identifier", "name": "Todo"},
      "superClass": {"type": "Identifier", "name": "Model"},
      "decorators": [
        {
          "type": "Decorator",
          "expression": {
            "type": "CallExpression",
            "callee": {"type": "Identifier", "name": "propertiesToPrototype"},
            "arguments": [{"type": "Literal", "value": "model", "raw": "'model'"}]
          }
        }
      ],
      "body": {
        "type": "ClassBody",
        "body": [
          {
            "type": "PropertyDefinition",
            "key": {"type": "Identifier", "name": "defaults"},
            "value": {"type": "ObjectExpression", "properties": []},
            "computed": false,
            "static": false
          }
        ]
      }
    }
  ]
}`

const noClassJSON = `{"type":"Program","sourceType":"script","body":[{"type":"EmptyStatement"}]}`

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func statementCount(t *testing.T, data []byte) int {
	t.Helper()
	prog, err := estree.Decode(data)
	require.NoError(t, err)
	return len(prog.Body)
}

func TestTransformCommand_Stdin(t *testing.T) {
	stdout, _, err := execute(t, modelClassJSON, "transform")
	require.NoError(t, err)

	assert.Equal(t, 3, statementCount(t, []byte(stdout)))
	assert.Contains(t, stdout, `"name":"assign"`)
	assert.Contains(t, stdout, `"name":"defineProperty"`)
}

func TestTransformCommand_StdinIndent(t *testing.T) {
	stdout, _, err := execute(t, modelClassJSON, "transform", "--indent")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n  \"body\": [")
}

func TestTransformCommand_PrintsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", noClassJSON)
	b := writeFile(t, dir, "b.json", modelClassJSON)

	stdout, _, err := execute(t, "", "transform", "-j", "2", a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 1, statementCount(t, []byte(lines[0])))
	assert.Equal(t, 3, statementCount(t, []byte(lines[1])))
}

func TestTransformCommand_Write(t *testing.T) {
	dir := t.TempDir()
	changed := writeFile(t, dir, "todo.json", modelClassJSON)
	untouched := writeFile(t, dir, "empty.json", noClassJSON)

	stdout, _, err := execute(t, "", "transform", "--write", changed, untouched)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(changed)
	require.NoError(t, err)
	assert.Equal(t, 3, statementCount(t, data))

	data, err = os.ReadFile(untouched)
	require.NoError(t, err)
	assert.Equal(t, noClassJSON, string(data), "unchanged files are not rewritten")
}

func TestTransformCommand_Check(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "todo.json", modelClassJSON)

	_, stderr, err := execute(t, "", "transform", "--check", path)
	require.ErrorIs(t, err, errWouldChange)
	assert.Contains(t, stderr, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, modelClassJSON, string(data), "--check never writes")

	_, _, err = execute(t, "", "transform", "--write", path)
	require.NoError(t, err)
	_, _, err = execute(t, "", "transform", "--check", path)
	assert.NoError(t, err, "a rewritten file is stable")
}

func TestTransformCommand_Config(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "classproto.yaml", "ensure_constructor_name: false\n")

	stdout, _, err := execute(t, modelClassJSON, "--config", cfg, "transform")
	require.NoError(t, err)
	assert.Equal(t, 2, statementCount(t, []byte(stdout)))
}

func TestTransformCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"type":"ExpressionStatement"}`)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "not a program", args: []string{"transform", bad}},
		{name: "missing file", args: []string{"transform", filepath.Join(dir, "missing.json")}},
		{name: "invalid stdin", stdin: "{", args: []string{"transform"}},
		{name: "write without files", args: []string{"transform", "--write"}},
		{name: "write and check", args: []string{"transform", "--write", "--check", bad}},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "none.yaml"), "transform", bad}},
		{name: "bad log level", args: []string{"--log-level", "loud", "transform", bad}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestTransformCommand_Stats(t *testing.T) {
	_, stderr, err := execute(t, modelClassJSON, "transform", "--stats")
	require.NoError(t, err)
	assert.Contains(t, stderr, "classproto_transform_classes_total")
	assert.Contains(t, stderr, "classproto_transform_statements_total")
}

func TestWriteStats_FiltersOtherMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mine := prometheus.NewCounter(prometheus.CounterOpts{Name: "classproto_test_total", Help: "x"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "y"})
	reg.MustRegister(mine, other)
	mine.Inc()

	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, reg))
	assert.Contains(t, buf.String(), "classproto_test_total 1")
	assert.NotContains(t, buf.String(), "other_total")
}

func TestDefaultsCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "classproto.yaml", `
additional_prototype_properties:
  widget: [template]
class_types:
  view: ['/View$/']
`)

	stdout, _, err := execute(t, "", "--config", cfg, "defaults")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "prototype_properties:\n  model:\n"))
	assert.Contains(t, stdout, "widget:")
	assert.Contains(t, stdout, "- template")
	assert.Contains(t, stdout, "class_types:\n  view:\n")
	assert.Contains(t, stdout, "- /View$/")
	assert.Less(t, strings.Index(stdout, "application:"), strings.Index(stdout, "widget:"),
		"additional categories follow the built-in ones")
}

func TestTraceFlag(t *testing.T) {
	_, stderr, err := execute(t, modelClassJSON, "--trace", "transform")
	require.NoError(t, err)
	assert.Contains(t, stderr, "transform.Transformer.Transform")
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

// =============================================================================
// Watcher
// =============================================================================

func TestFileWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "todo.json")

	clock := time.Unix(0, 0)
	var handled []string
	fw := &fileWatcher{
		files:    map[string]bool{tracked: true},
		pending:  map[string]time.Time{},
		debounce: time.Second,
		now:      func() time.Time { return clock },
		handle:   func(_ context.Context, path string) { handled = append(handled, path) },
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	fw.record(fsnotify.Event{Name: tracked, Op: fsnotify.Write})
	fw.record(fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write})
	fw.record(fsnotify.Event{Name: tracked, Op: fsnotify.Chmod})

	clock = clock.Add(500 * time.Millisecond)
	fw.flush(context.Background())
	assert.Empty(t, handled, "still inside the debounce window")

	fw.record(fsnotify.Event{Name: tracked, Op: fsnotify.Write})
	clock = clock.Add(999 * time.Millisecond)
	fw.flush(context.Background())
	assert.Empty(t, handled, "a new write restarts the window")

	clock = clock.Add(time.Millisecond)
	fw.flush(context.Background())
	assert.Equal(t, []string{tracked}, handled)

	fw.flush(context.Background())
	assert.Len(t, handled, 1, "handled once")
}

func TestNewFileWatcher_StopsWithContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "todo.json", modelClassJSON)

	fw, err := newFileWatcher([]string{path}, func(context.Context, string) {},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.True(t, fw.files[abs])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, fw.run(ctx))
}
