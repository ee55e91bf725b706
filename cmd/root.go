package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prospekt",
	Short: "Ask questions about grocery brochures with per-offer store citations",
	Long: `Prospekt ingests a directory of retail brochure PDFs, builds a
persistent similarity-searchable index over their contents, and answers
natural-language questions about offers, citing the store and source file
behind every passage it used.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// API keys commonly live in a .env next to the data directory.
		_ = godotenv.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "prospekt.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
