package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prospekt/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default prospekt.yml config file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(cfgFile); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgFile); err != nil {
		return err
	}

	fmt.Printf("Wrote %s. Put brochure PDFs into %s/ and run `prospekt ingest`.\n", cfgFile, cfg.DataDir)
	return nil
}
