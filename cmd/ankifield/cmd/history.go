package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ankifield/internal/domain/history"
)

var (
	historyLimit int
	historyRule  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "История запусков правил",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := app.History(cmd.Context(), history.Filter{
			Rule:  historyRule,
			Limit: historyLimit,
		})
		if err != nil {
			return fmt.Errorf("ошибка получения истории: %w", err)
		}

		if jsonOutput {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(runs)
		}

		return printRunsTable(runs)
	},
}

func printRunsTable(runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Println("Запусков не найдено")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tПравило\tРезультат\tОтобрано\tОбновлено\tНачало\tДлительность\tОшибка\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t---\t---\t\n")

	for _, r := range runs {
		outcome := r.Outcome
		if r.DryRun && outcome != "dry_run" {
			outcome += " (dry run)"
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t\n",
			r.ID,
			r.Rule,
			outcome,
			r.Selected,
			r.Updated,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			truncate(r.Error, 40),
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nВсего запусков: %d\n", len(runs))
	return nil
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultLimit, "ограничение количества записей")
	historyCmd.Flags().StringVar(&historyRule, "rule", "", "фильтр по имени правила")
}
