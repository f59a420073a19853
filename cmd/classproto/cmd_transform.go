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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/AleutianAI/classproto/services/classproto/estree"
	"github.com/AleutianAI/classproto/services/classproto/transform"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errWouldChange is returned by --check when at least one file would change.
var errWouldChange = errors.New("files would change")

type transformFlags struct {
	write       bool
	check       bool
	watch       bool
	stats       bool
	indent      bool
	concurrency int
}

func newTransformCommand(a *app) *cobra.Command {
	var f transformFlags
	cmd := &cobra.Command{
		Use:   "transform [files...]",
		Short: "Rewrite ESTree JSON files, or stdin when no files are given",
		Long: `Reads ESTree Program JSON, moves class fields onto class prototypes
and writes the result.

Without --write the rewritten trees are printed to stdout in argument order.
With --check nothing is written; the command lists files that would change
and exits 1 if there are any.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTransform(cmd.Context(), f, args)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&f.write, "write", "w", false, "rewrite changed files in place")
	flags.BoolVar(&f.check, "check", false, "report files that would change and exit 1 if any")
	flags.BoolVar(&f.watch, "watch", false, "keep running and re-process files when they change")
	flags.BoolVar(&f.stats, "stats", false, "print rewrite counters to stderr when done")
	flags.BoolVar(&f.indent, "indent", false, "indent JSON output")
	flags.IntVarP(&f.concurrency, "concurrency", "j", runtime.GOMAXPROCS(0), "files processed in parallel")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	cmd.MarkFlagsMutuallyExclusive("watch", "check")
	return cmd
}

func (a *app) runTransform(ctx context.Context, f transformFlags, files []string) error {
	opts, err := a.options(ctx)
	if err != nil {
		return err
	}
	tr := transform.NewTransformer(opts)

	if len(files) == 0 {
		if f.write || f.watch {
			return errors.New("--write and --watch need file arguments")
		}
		err := a.transformStream(ctx, tr, f)
		if f.stats {
			a.printStats()
		}
		return err
	}

	results, err := a.transformFiles(ctx, tr, files, f)
	if err != nil {
		return err
	}
	reportErr := a.report(results, f)
	if f.stats {
		a.printStats()
	}
	if reportErr != nil {
		return reportErr
	}

	if f.watch {
		return a.watch(ctx, files, func(ctx context.Context, path string) {
			res, err := a.transformFile(ctx, tr, path, f)
			if err != nil {
				a.logger.Error("transform failed", slog.String("path", path), slog.String("error", err.Error()))
				return
			}
			if err := a.report([]fileResult{res}, f); err != nil {
				a.logger.Error("report failed", slog.String("path", path), slog.String("error", err.Error()))
			}
		})
	}
	return nil
}

// fileResult is the outcome for one input file.
type fileResult struct {
	path    string
	updated bool
	written bool
	output  []byte
}

// transformFiles processes files concurrently and returns results in
// argument order. The first error cancels the rest.
func (a *app) transformFiles(ctx context.Context, tr *transform.Transformer, files []string, f transformFlags) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.transformFile(gctx, tr, path, f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// transformFile decodes, rewrites and, with --write, saves one file.
func (a *app) transformFile(ctx context.Context, tr *transform.Transformer, path string, f transformFlags) (fileResult, error) {
	res := fileResult{path: path}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	prog, err := estree.Decode(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	res.updated = tr.Transform(ctx, prog).Updated
	if f.check || (f.write && !res.updated) {
		return res, nil
	}

	out, err := encode(prog, f.indent)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if !f.write {
		res.output = out
		return res, nil
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	res.written = true
	a.logger.Info("file rewritten", slog.String("path", path))
	return res, nil
}

// report prints outputs or, with --check, the changed paths.
func (a *app) report(results []fileResult, f transformFlags) error {
	changed := 0
	for _, r := range results {
		switch {
		case f.check:
			if r.updated {
				changed++
				fmt.Fprintln(a.stderr, r.path)
			}
		case r.output != nil:
			if _, err := a.stdout.Write(r.output); err != nil {
				return err
			}
		}
	}
	if changed > 0 {
		return fmt.Errorf("%w: %d file(s)", errWouldChange, changed)
	}
	return nil
}

// transformStream rewrites one program read from stdin.
func (a *app) transformStream(ctx context.Context, tr *transform.Transformer, f transformFlags) error {
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	prog, err := estree.Decode(data)
	if err != nil {
		return fmt.Errorf("stdin: %w", err)
	}
	updated := tr.Transform(ctx, prog).Updated
	if f.check {
		if updated {
			fmt.Fprintln(a.stderr, "<stdin>")
			return errWouldChange
		}
		return nil
	}
	out, err := encode(prog, f.indent)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

func encode(prog *estree.Program, indent bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if indent {
		out, err = estree.EncodeIndent(prog, "", "  ")
	} else {
		out, err = estree.Encode(prog)
	}
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
