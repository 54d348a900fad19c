// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for room layout documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := layout.GenerateSchema()
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}
}
