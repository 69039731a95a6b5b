package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gmdkit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to the path given by --config so the
defaults can be inspected and edited. Refuses to overwrite an existing file.`,
	Args: cobra.NoArgs,
	// The root hook loads config and builds the logger; init must work
	// before either exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := config.Default().Save(cfgPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", cfgPath)
	return nil
}
