// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package main

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <layout-file>",
		Short: "Validate a room layout file without starting the server",
		Long: `Validates a room layout file against the room document schema and
the condition/change parsers. Does NOT start the server.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch layout errors early:
  web-adventure validate game.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
	return cmd
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.With("path", path).Wrapf(err, "reading layout file")
	}

	var problems int
	for _, err := range layout.ValidateDocuments(bytes.NewReader(data)) {
		slog.Error("schema violation", "error", err)
		problems++
	}

	graph, loadErrs := layout.Load(bytes.NewReader(data))
	for _, err := range loadErrs {
		slog.Error("layout error", "error", err)
		problems++
	}
	if _, err := graph.StartRoom(); err != nil {
		slog.Error("layout error", "error", err)
		problems++
	}

	if problems > 0 {
		return oops.Errorf("validation failed: %d problems in %s", problems, path)
	}

	slog.Info("layout valid", "path", path, "rooms", graph.Len())
	return nil
}
