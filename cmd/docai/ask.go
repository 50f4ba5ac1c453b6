package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jitesh17/docai/internal/models"
)

var (
	askProvider  string
	askMaxTokens int
	askOwnKey    bool
	askOpenAIKey string
	askClaudeKey string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send a prompt about the selected documents to an AI backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providerName := askProvider
		if providerName == "" {
			providerName = config.AI.DefaultProvider
		}
		provider, ok := models.ParseProvider(providerName)
		if !ok {
			return fmt.Errorf("unknown provider %q (expected openai, claude, or custom)", providerName)
		}

		maxTokens := askMaxTokens
		if maxTokens == 0 {
			maxTokens = config.AI.MaxTokens
		}

		draft := models.AIRequestDraft{
			Provider:     provider,
			Prompt:       strings.Join(args, " "),
			SelectedIDs:  application.Selection.IDs(),
			UseCallerKey: askOwnKey,
			OpenAIKey:    askOpenAIKey,
			ClaudeKey:    askClaudeKey,
			MaxTokens:    maxTokens,
		}

		message, err := application.Dispatcher.Submit(cmd.Context(), draft)
		if err != nil {
			return err
		}

		fmt.Println(message)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askProvider, "provider", "", "AI provider: openai, claude, or custom (default from config)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "Response token cap (0 lets the server decide)")
	askCmd.Flags().BoolVar(&askOwnKey, "own-key", false, "Use a caller-supplied provider API key")
	askCmd.Flags().StringVar(&askOpenAIKey, "openai-key", "", "OpenAI API key (with --own-key)")
	askCmd.Flags().StringVar(&askClaudeKey, "claude-key", "", "Claude API key (with --own-key)")
}
