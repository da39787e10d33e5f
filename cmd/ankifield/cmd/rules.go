package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Список правил",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := app.Rules()

		if jsonOutput {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rules)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Имя\tКолода\tМодель\tШаблон\tИнтервал >\tПоле\tЗначение\t\n")
		fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t---\t\n")
		for _, r := range rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
				r.Name, r.Deck, r.Model, r.Template, r.IntervalThreshold, r.Field, r.Value)
		}
		return w.Flush()
	},
}
