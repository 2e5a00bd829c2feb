// init.go implements the "ragline init" command writing a default config.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragline-dev/ragline/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .ragline/config.yaml",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	if _, err := config.ReadConfig(home); err == nil && !initForce {
		return fmt.Errorf("config already exists; use --force to overwrite")
	}

	if err := config.WriteConfig(home, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", filepath.Join(home, ".ragline", "config.yaml"))
	fmt.Println("Edit api.base_url to point at your backend, then run: ragline login <username>")
	return nil
}
