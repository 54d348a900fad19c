// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package main

import (
	"bufio"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/unidavemeyer/web-adventure/internal/auth"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Derive a credential for a password read from stdin",
		Long: `Reads one line from stdin and prints the derived credential in the
session record's pwd format (<hexKey>,<hexSalt>). Useful for seeding
session files by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return oops.Wrapf(err, "reading password")
			}

			credential, err := auth.NewPBKDF2Hasher().Derive(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return err
			}
			cmd.Println(credential)
			return nil
		},
	}
}
