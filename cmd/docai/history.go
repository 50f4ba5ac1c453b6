package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past AI exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.HistoryStorage == nil {
			fmt.Println("History is disabled in configuration")
			return nil
		}

		limit := historyLimit
		if limit == 0 {
			limit = config.History.Limit
		}

		exchanges, err := application.HistoryStorage.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(exchanges) == 0 {
			fmt.Println("No exchanges recorded")
			return nil
		}

		for _, exchange := range exchanges {
			fmt.Printf("[%s] %s via %s (%d document(s))\n",
				exchange.CreatedAt.Format("2006-01-02 15:04"),
				exchange.Provider,
				exchange.Endpoint,
				len(exchange.DocumentIDs))
			fmt.Printf("  Q: %s\n", firstLine(exchange.Prompt))
			fmt.Printf("  A: %s\n", firstLine(exchange.Response))
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.HistoryStorage == nil {
			fmt.Println("History is disabled in configuration")
			return nil
		}

		count, err := application.HistoryStorage.Count(cmd.Context())
		if err != nil {
			return err
		}
		if err := application.HistoryStorage.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Cleared %d exchange(s)\n", count)
		return nil
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum entries to show (0 uses the configured default, -1 shows all)")
	historyCmd.AddCommand(historyClearCmd)
}
