package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Show the chunks produced for one document (debug)",
	Long: `Loads the published index and prints the first N chunks derived from the
given document, with their injected provenance header and structured
metadata, so chunking and tagging can be verified by eye. Read-only.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	chunksCmd.Flags().Int("limit", 3, "number of chunks to show")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	// Accept either the stored path or a bare filename.
	target := args[0]
	chunks := idx.ChunksFor(target)
	if len(chunks) == 0 {
		for _, c := range idx.Chunks() {
			if filepath.Base(c.Meta.SourcePath) == target {
				chunks = append(chunks, c)
			}
		}
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks found for %q (index holds %d chunks)", target, idx.Count())
	}

	total := len(chunks)
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	fmt.Printf("%d chunk(s) for %s (showing %d):\n", total, target, len(chunks))

	for _, c := range chunks {
		fmt.Printf("\n--- %s ---\n", c.ID)
		fmt.Printf("store:    %s\n", c.Meta.StoreID)
		fmt.Printf("source:   %s\n", c.Meta.SourcePath)
		fmt.Printf("ordinal:  %d\n", c.Meta.Ordinal)
		if c.Meta.Degraded {
			fmt.Printf("degraded: true\n")
		}
		fmt.Printf("ingested: %s\n", c.Meta.IngestedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
		fmt.Println(preview(c.Text, 500))
	}
	return nil
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
