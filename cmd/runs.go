package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prospekt/internal/ingestlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past ingestion runs",
	Long: `Lists recorded ingestion runs, newest first. With --run, prints the
per-document outcomes of one run instead, in the same format as the ingest
summary.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 10, "number of runs to show")
	runsCmd.Flags().String("run", "", "show per-document outcomes for the given run ID")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := ingestlog.Open(logPath(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	if runID != "" {
		docs, err := store.Documents(ctx, runID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents recorded for run %s", runID)
		}
		fmt.Printf("Run %s: %d document(s)\n", runID, len(docs))
		printDocuments(docs)
		return nil
	}

	runs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No ingestion runs recorded yet. Run `prospekt ingest` first.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if r.Failed > 0 {
			status = fmt.Sprintf("%d failed", r.Failed)
		}
		fmt.Printf("%s  %s  docs=%d chunks=%d %s (%s)\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.ID, r.Documents, r.Chunks, status,
			r.Duration.Round(10*time.Millisecond))
	}
	return nil
}
