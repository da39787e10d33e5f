package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ankifield/internal/ankiconnect"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Проверить соединение с AnkiConnect",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Проверка соединения с %s...\n", cfg.AnkiConnectAddress)

		version, err := app.CheckConnection(cmd.Context())
		if err != nil {
			if ankiconnect.IsConnectionError(err) {
				fmt.Println(color.RedString("✗ AnkiConnect недоступен"))
				fmt.Println("Is Anki running with AnkiConnect addon installed?")
			}
			return err
		}

		fmt.Println(color.GreenString("✓ Соединение установлено, версия API: %d", version))
		if version < ankiconnect.APIVersion {
			fmt.Println(color.YellowString("⚠️  Версия AnkiConnect ниже %d, обновите дополнение", ankiconnect.APIVersion))
		}
		return nil
	},
}
