package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"prospekt/internal/answer"
	"prospekt/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering over the ingested brochures",
	Long: `Starts a conversational loop. Prior turns are carried into each prompt
(bounded by chat.history_limit) so follow-up questions like "and at Lidl?"
work. Type "exit" or press Ctrl+C to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	composer := answer.NewComposer(generator, cfg.Generation.MaxTokens, cfg.Generation.Temperature)

	fmt.Printf("Chatting over %d indexed chunk(s). Type 'exit' to quit.\n\n", idx.Count())

	var history []llm.Message
	prompt := promptui.Prompt{Label: "You"}

	for {
		question, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("Bye.")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			fmt.Println("Bye.")
			return nil
		}

		hits, err := idx.Search(ctx, question, cfg.TopK)
		if err != nil {
			fmt.Printf("retrieval failed: %v\n", err)
			continue
		}

		ans, err := composer.Answer(ctx, question, hits, history)
		if err != nil {
			// A failed generation is surfaced and the loop continues; the
			// caller may simply retry.
			fmt.Printf("answer failed: %v\n", err)
			continue
		}

		fmt.Println()
		printAnswer(ans)
		fmt.Println()

		// Only grounded exchanges are worth carrying forward.
		if ans.Grounded {
			history = append(history,
				llm.Message{Role: llm.RoleUser, Content: question},
				llm.Message{Role: llm.RoleAssistant, Content: ans.Text},
			)
			history = llm.TrimTurns(history, cfg.Chat.HistoryLimit)
		}
	}
}
