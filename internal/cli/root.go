// Package cli defines Cobra command definitions for the ragline CLI.
// This file contains the root command, version flag, and TUI launch.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragline-dev/ragline/internal/tui"
	"github.com/ragline-dev/ragline/internal/tui/app"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "ragline",
	Short: "Terminal client for the ragline document Q&A service",
	Long: `Ragline is a terminal client for a prepaid document Q&A service.
Upload PDF documents, ask questions against them, and track your
balance; answers are generated asynchronously and polled to completion.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.Close()

		model := tui.NewModel(svcs.cfg, tui.Services{
			Session:      svcs.session,
			Ledger:       svcs.ledger,
			Registry:     svcs.registry,
			Conversation: svcs.conv,
			Query:        svcs.query,
		})
		return tui.Run(app.New(model))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
}
