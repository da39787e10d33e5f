package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ankifield/internal/app/client"
	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"
)

var errRunFailed = errors.New("one or more rules failed")

var (
	runAll    bool
	dryRun    bool
	strict    bool
	adhocRule note.Rule
)

var runCmd = &cobra.Command{
	Use:   "run [rule...]",
	Short: "Запустить правила обновления",
	Long: `Запускает правила по порядку. Без аргументов используйте --all для запуска
всех правил из конфигурации или флаги --deck/--model/--template/--threshold/
--field/--value для разового правила.

Ошибка одного правила не останавливает остальные. По умолчанию ошибки только
выводятся, с --strict команда завершается с кодом 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := selectRules(cmd, args)
		if err != nil {
			return err
		}

		results := app.RunRules(cmd.Context(), rules, updater.Options{DryRun: dryRun})

		if jsonOutput {
			if err := printResultsJSON(results); err != nil {
				return err
			}
		} else {
			printResults(results)
		}

		for _, r := range results {
			if r.Err != nil && strict {
				return errRunFailed
			}
		}
		return nil
	},
}

func selectRules(cmd *cobra.Command, args []string) ([]note.Rule, error) {
	if cmd.Flags().Changed("deck") {
		if len(args) > 0 || runAll {
			return nil, fmt.Errorf("разовое правило нельзя совмещать с именами правил или --all")
		}
		adhocRule.Name = "adhoc"
		if err := adhocRule.Validate(); err != nil {
			return nil, err
		}
		return []note.Rule{adhocRule}, nil
	}

	if runAll {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all нельзя совмещать с именами правил")
		}
		return app.Rules(), nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("укажите имена правил, --all или --deck")
	}

	rules := make([]note.Rule, 0, len(args))
	for _, name := range args {
		rule, ok := app.Rule(name)
		if !ok {
			return nil, fmt.Errorf("правило %q не найдено, доступные правила: ankifield rules", name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func printResults(results []client.RuleResult) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		if r.Report == nil {
			fmt.Printf("%s %v\n", red("✗"), r.Err)
			continue
		}

		rep := r.Report
		switch {
		case r.Err != nil:
			fmt.Printf("%s %s: обновлено %d из %d, ошибка: %v\n",
				red("✗"), rep.Rule, rep.Updated, rep.Selected, r.Err)
		case rep.Outcome == updater.OutcomeDryRun:
			fmt.Printf("%s %s: будет обновлено %d заметок (dry run)\n",
				yellow("•"), rep.Rule, rep.Selected)
		case rep.Outcome.NoOp():
			fmt.Printf("%s %s: нечего обновлять (%s)\n",
				yellow("•"), rep.Rule, rep.Outcome)
		default:
			fmt.Printf("%s %s: обновлено %d заметок за %s\n",
				green("✓"), rep.Rule, rep.Updated, rep.Duration().Round(time.Millisecond))
		}
	}
}

type resultJSON struct {
	Report *updater.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func printResultsJSON(results []client.RuleResult) error {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		item := resultJSON{Report: r.Report}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "запустить все правила из конфигурации")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "показать отобранные заметки без обновления")
	runCmd.Flags().BoolVar(&strict, "strict", false, "завершаться с кодом 1 при ошибке правила")

	runCmd.Flags().StringVar(&adhocRule.Deck, "deck", "", "колода разового правила")
	runCmd.Flags().StringVar(&adhocRule.Model, "model", "", "модель заметок")
	runCmd.Flags().StringVar(&adhocRule.Template, "template", "", "имя шаблона карточки")
	runCmd.Flags().IntVar(&adhocRule.IntervalThreshold, "threshold", 0, "порог интервала в днях")
	runCmd.Flags().StringVar(&adhocRule.Field, "field", "", "обновляемое поле")
	runCmd.Flags().StringVar(&adhocRule.Value, "value", "", "записываемое значение")
}
