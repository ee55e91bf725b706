package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"prospekt/internal/answer"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about the ingested brochures",
	Long: `Retrieves the most relevant brochure chunks for the question and generates
a grounded answer, listing the store and source file behind every passage
that was used. If nothing relevant is indexed, an explicit
insufficient-context answer is returned and no generation call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int("top-k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().Bool("json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	topKFlag, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	topK, err := resolveTopK(cmd.Flags().Changed("top-k"), topKFlag, cfg.TopK)
	if err != nil {
		return err
	}

	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	hits, err := idx.Search(ctx, question, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	composer := answer.NewComposer(generator, cfg.Generation.MaxTokens, cfg.Generation.Temperature)

	ans, err := composer.Answer(ctx, question, hits, nil)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	printAnswer(ans)
	return nil
}

func printAnswer(ans *answer.Answer) {
	fmt.Println(ans.Text)
	if !ans.Grounded {
		return
	}
	fmt.Println("\nSources:")
	for _, c := range ans.Citations {
		fmt.Printf("  [%.1f%%] %s (%s)\n", c.Similarity*100, c.StoreID, filepath.Base(c.SourcePath))
	}
}
