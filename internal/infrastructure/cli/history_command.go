package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdwise/internal/app"
	"github.com/doeshing/cmdwise/internal/domain"
)

const defaultHistoryLimit = 20

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect query history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryStatsCommand(container),
		newHistoryExportCommand(container),
		newHistoryClearCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.History.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("retrieve history: %w", err)
			}
			renderHistoryRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(container *app.Container) *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search history for a keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			records, err := container.History.Search(cmd.Context(), query, limit)
			if err != nil {
				return fmt.Errorf("search history: %w", err)
			}
			renderHistoryRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword")
	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Limit search results")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show execution and risk statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.History.Recent(cmd.Context(), 0)
			if err != nil {
				return fmt.Errorf("retrieve history: %w", err)
			}
			renderHistoryStats(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.History.Recent(cmd.Context(), 0)
			if err != nil {
				return fmt.Errorf("retrieve history: %w", err)
			}
			file, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			for _, rec := range records {
				data, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				if _, err := file.Write(append(data, '\n')); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), args[0])
			return nil
		},
	}
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.History.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}

func renderHistoryRecords(out io.Writer, records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No history recorded yet.")
		return
	}
	for _, rec := range records {
		executed := "suggested"
		if rec.Executed {
			executed = "executed"
		}
		fmt.Fprintf(out, "%s | %s | %s | %s | %s\n",
			humanize.Time(rec.Timestamp),
			rec.Model,
			rec.Validation.RiskLevel,
			executed,
			rec.Command)
	}
}

func renderHistoryStats(out io.Writer, records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No history recorded yet.")
		return
	}

	executed, successful := 0, 0
	riskCounts := map[domain.RiskLevel]int{}
	for _, rec := range records {
		if rec.Executed {
			executed++
			if rec.Success {
				successful++
			}
		}
		riskCounts[rec.Validation.RiskLevel]++
	}

	fmt.Fprintf(out, "Entries: %d\nExecuted: %d\n", len(records), executed)
	if executed > 0 {
		fmt.Fprintf(out, "Success rate: %.1f%%\n", float64(successful)/float64(executed)*100)
	}
	fmt.Fprintln(out, "Risk distribution:")
	for _, level := range []domain.RiskLevel{domain.RiskSafe, domain.RiskModerate, domain.RiskHigh, domain.RiskCritical} {
		if count := riskCounts[level]; count > 0 {
			fmt.Fprintf(out, "  %s: %d\n", level, count)
		}
	}
}
