// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads rewrite options from a YAML file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AleutianAI/classproto/services/classproto/rules"
	"github.com/AleutianAI/classproto/services/classproto/transform"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

const configTracerName = "classproto.config"

// MaxConfigFileSize bounds the size of a config file.
const MaxConfigFileSize = 1 << 20

var (
	// ErrConfigTooLarge is returned for files over MaxConfigFileSize.
	ErrConfigTooLarge = errors.New("config file too large")

	// ErrInvalidConfig is returned when a parsed file fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// =============================================================================
// File
// =============================================================================

// File is the YAML form of transform.Options.
//
// Description:
//
//	Omitted keys keep the defaults of transform.DefaultOptions. Category
//	tables keep document order, which decides class-type precedence.
//	Class-type entries are plain names or "/source/flags" patterns.
//
// Example:
//
//	alternative_prototype_properties:
//	  model: [defaults, url]
//	class_types:
//	  view: ['/View$/', Layout]
//	  model: [Todo]
//	match_class_type_suffix: true
//	replace_constructor_name: true
type File struct {
	// PrototypeProperties replaces the built-in category table when set.
	PrototypeProperties *rules.Table[string] `yaml:"prototype_properties"`

	AlternativePrototypeProperties rules.Table[string] `yaml:"alternative_prototype_properties"`
	AdditionalPrototypeProperties  rules.Table[string] `yaml:"additional_prototype_properties"`

	ClassDecorator           string `yaml:"class_decorator"`
	RemoveClassDecorator     *bool  `yaml:"remove_class_decorator"`
	PrototypeDecorator       string `yaml:"prototype_decorator"`
	RemovePrototypeDecorator *bool  `yaml:"remove_prototype_decorator"`
	InstanceDecorator        string `yaml:"instance_decorator"`
	RemoveInstanceDecorator  *bool  `yaml:"remove_instance_decorator"`

	ConvertToPropertyGetters *bool `yaml:"convert_to_property_getters"`

	ClassTypes            rules.Table[rules.Matcher] `yaml:"class_types"`
	AlternativeClassTypes rules.Table[rules.Matcher] `yaml:"alternative_class_types"`
	AdditionalClassTypes  rules.Table[rules.Matcher] `yaml:"additional_class_types"`
	MatchClassTypeSuffix  *bool                      `yaml:"match_class_type_suffix"`

	EnsureConstructorName  *bool `yaml:"ensure_constructor_name"`
	ReplaceConstructorName *bool `yaml:"replace_constructor_name"`
}

// Options applies the file over transform.DefaultOptions.
func (f *File) Options() transform.Options {
	opts := transform.DefaultOptions()
	if f == nil {
		return opts
	}
	if f.PrototypeProperties != nil {
		opts.PrototypeProperties = f.PrototypeProperties.Clone()
	}
	opts.AlternativePrototypeProperties = f.AlternativePrototypeProperties.Clone()
	opts.AdditionalPrototypeProperties = f.AdditionalPrototypeProperties.Clone()

	setString(&opts.ClassDecorator, f.ClassDecorator)
	setString(&opts.PrototypeDecorator, f.PrototypeDecorator)
	setString(&opts.InstanceDecorator, f.InstanceDecorator)
	setBool(&opts.RemoveClassDecorator, f.RemoveClassDecorator)
	setBool(&opts.RemovePrototypeDecorator, f.RemovePrototypeDecorator)
	setBool(&opts.RemoveInstanceDecorator, f.RemoveInstanceDecorator)
	setBool(&opts.ConvertToPropertyGetters, f.ConvertToPropertyGetters)

	opts.ClassTypes = f.ClassTypes.Clone()
	opts.AlternativeClassTypes = f.AlternativeClassTypes.Clone()
	opts.AdditionalClassTypes = f.AdditionalClassTypes.Clone()
	setBool(&opts.MatchClassTypeSuffix, f.MatchClassTypeSuffix)

	setBool(&opts.EnsureConstructorName, f.EnsureConstructorName)
	setBool(&opts.ReplaceConstructorName, f.ReplaceConstructorName)
	return opts
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads and parses a config file.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	path - File to read. A missing file is an error.
//
// Outputs:
//
//	*File - The parsed file. Never nil on success.
//	error - ErrConfigTooLarge, ErrInvalidConfig, or a wrapped I/O or YAML error.
func Load(ctx context.Context, path string) (*File, error) {
	if ctx == nil {
		return nil, fmt.Errorf("config.Load: ctx must not be nil")
	}
	ctx, span := otel.Tracer(configTracerName).Start(ctx, "config.Load")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	info, err := os.Stat(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stat failed")
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		err := fmt.Errorf("%w: %s is %d bytes, limit %d", ErrConfigTooLarge, path, info.Size(), MaxConfigFileSize)
		span.RecordError(err)
		span.SetStatus(codes.Error, "too large")
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	f, err := Parse(ctx, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}

	slog.Debug("config loaded",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)),
	)
	return f, nil
}

// Parse decodes and validates a config document. Unknown keys are
// rejected. An empty document yields the defaults.
func Parse(ctx context.Context, data []byte) (*File, error) {
	_, span := otel.Tracer(configTracerName).Start(ctx, "config.Parse")
	defer span.End()

	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrConfigTooLarge, len(data), MaxConfigFileSize)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("class_type_categories", f.ClassTypes.Len()),
		attribute.Int("alternative_categories", f.AlternativePrototypeProperties.Len()),
		attribute.Int("additional_categories", f.AdditionalPrototypeProperties.Len()),
	)
	return &f, nil
}

// validate checks the markers once defaults are applied.
func (f *File) validate() error {
	opts := f.Options()
	if opts.PrototypeDecorator == opts.InstanceDecorator {
		return fmt.Errorf("%w: prototype_decorator and instance_decorator are both %q",
			ErrInvalidConfig, opts.PrototypeDecorator)
	}
	for _, name := range []string{opts.ClassDecorator, opts.PrototypeDecorator, opts.InstanceDecorator} {
		if !isIdentifier(name) {
			return fmt.Errorf("%w: decorator name %q is not an identifier", ErrInvalidConfig, name)
		}
	}
	return nil
}

// isIdentifier accepts ASCII JavaScript identifiers.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
