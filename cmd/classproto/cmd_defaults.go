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
	"fmt"

	"github.com/AleutianAI/classproto/services/classproto/rules"
	"github.com/AleutianAI/classproto/services/classproto/transform"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// effectiveTables is what "classproto defaults" prints.
type effectiveTables struct {
	PrototypeProperties rules.Table[string]        `yaml:"prototype_properties"`
	ClassTypes          rules.Table[rules.Matcher] `yaml:"class_types"`
}

func newDefaultsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the effective category and class-type tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.options(cmd.Context())
			if err != nil {
				return err
			}
			tr := transform.NewTransformer(opts)
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(effectiveTables{
				PrototypeProperties: tr.FieldNames(),
				ClassTypes:          tr.ClassTypes(),
			}); err != nil {
				return fmt.Errorf("encoding tables: %w", err)
			}
			return enc.Close()
		},
	}
}
