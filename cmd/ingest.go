package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"prospekt/internal/ingestlog"
	"prospekt/internal/pipeline"
	"prospekt/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the brochure index from the data directory",
	Long: `Reads every brochure in the data directory, extracts and tags its text,
splits it into chunks, embeds them, and publishes a fresh index. The
previous index is replaced atomically, so concurrent queries are never
disturbed. A document that cannot be read or parsed is skipped and reported;
it does not abort the run.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	p := pipeline.New(newLoader(cfg), embedder, cfg, slog.Default())

	reporter := progress.NewReporter()
	started := false
	p.SetProgressFunc(func(done, total int, msg string) {
		if !started {
			reporter.Start(total)
			started = true
		}
		reporter.Update(done, msg)
	})

	_, report, err := p.Run(ctx)
	if started {
		reporter.Finish()
	}
	if err != nil {
		return err
	}

	if logStore, logErr := ingestlog.Open(logPath(cfg)); logErr != nil {
		slog.Warn("could not open ingestion log", "error", logErr)
	} else {
		if logErr := logStore.Record(ctx, report); logErr != nil {
			slog.Warn("could not record ingestion run", "error", logErr)
		}
		logStore.Close()
	}

	printReport(report)
	return nil
}

func printReport(report *pipeline.Report) {
	fmt.Printf("Run %s: %d chunk(s) indexed from %d document(s) in %s\n",
		report.RunID, report.ChunksIndexed, len(report.Documents),
		report.Duration.Round(10*time.Millisecond))

	printDocuments(report.Documents)

	if failed := report.FailedCount(); failed > 0 {
		fmt.Printf("%d document(s) failed; see above.\n", failed)
	}
}

func printDocuments(docs []pipeline.DocumentOutcome) {
	for _, doc := range docs {
		name := filepath.Base(doc.SourcePath)
		switch {
		case doc.Failed():
			fmt.Printf("  FAIL %-24s %s\n", name, doc.Error)
		case doc.Degraded:
			fmt.Printf("  OK   %-24s store=%s chunks=%d (degraded: plain text extraction)\n",
				name, doc.StoreID, doc.Chunks)
		default:
			fmt.Printf("  OK   %-24s store=%s chunks=%d\n", name, doc.StoreID, doc.Chunks)
		}
	}
}
