package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the web-adventure CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web-adventure",
		Short: "web-adventure - a small narrative game server",
		Long: `web-adventure serves a graph of rooms over HTTP: each room
conditionally offers exits and mutates per-player variables, with player
state persisted durably across restarts.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewHashCmd())

	return cmd
}
