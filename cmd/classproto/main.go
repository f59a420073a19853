// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command classproto moves class fields onto class prototypes in ESTree
// JSON documents.
//
// Usage:
//
//	classproto transform app.json                # print the rewritten tree
//	classproto transform --write src/*.json      # rewrite files in place
//	classproto transform --check src/*.json      # exit 1 if anything would change
//	classproto transform --watch --write src/*.json
//	parser app.js | classproto transform | generator > app.out.js
//	classproto defaults --config classproto.yaml # show the effective tables
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AleutianAI/classproto/services/classproto/config"
	"github.com/AleutianAI/classproto/services/classproto/transform"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		// --check reports changed files itself.
		if !errors.Is(err, errWouldChange) {
			fmt.Fprintf(os.Stderr, "classproto: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what every subcommand shares.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	trace      bool

	logger   *slog.Logger
	shutdown func(context.Context) error
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "classproto",
		Short:         "Move class fields onto class prototypes in ESTree JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(context.WithoutCancel(cmd.Context()))
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (defaults when empty)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVar(&a.trace, "trace", false, "print OpenTelemetry spans to stderr")

	root.AddCommand(newTransformCommand(a), newDefaultsCommand(a))
	return root
}

// setup configures logging and tracing from the persistent flags.
func (a *app) setup() error {
	level, err := parseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if !a.trace {
		return nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(a.stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	a.shutdown = tp.Shutdown
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}

// options loads --config, or the defaults when it is empty.
func (a *app) options(ctx context.Context) (transform.Options, error) {
	opts := transform.DefaultOptions()
	if a.configPath != "" {
		f, err := config.Load(ctx, a.configPath)
		if err != nil {
			return transform.Options{}, err
		}
		opts = f.Options()
	}
	opts.Logger = a.logger
	return opts, nil
}
