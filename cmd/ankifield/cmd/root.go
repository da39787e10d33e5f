// cmd/ankifield/cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"ankifield/internal/app/client"
	"ankifield/internal/config"
	"ankifield/internal/utils/logger"
)

var (
	cfgFile     string
	cfg         *config.Config
	log         *slog.Logger
	app         *client.App
	debug       bool
	jsonOutput  bool
	ankiAddress string
	noHistory   bool
)

var rootCmd = &cobra.Command{
	Use:   "ankifield",
	Short: "ankifield - выборочное обновление полей заметок Anki",
	Long: `ankifield работает с Anki через дополнение AnkiConnect.

Для каждого правила находит заметки колоды нужной модели, у которых карточка
указанного шаблона имеет интервал больше порога, и записывает значение в поле.
Заметки, где поле уже заполнено, не трогаются, поэтому запуск можно повторять.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	config.LoadEnvFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if ankiAddress != "" {
		cfg.AnkiConnectAddress = ankiAddress
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	log = logger.New(cfg.Env, cfg.LogLevel)

	app, err = client.New(cfg, log, client.Options{NoHistory: noHistory})
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".ankifield"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return config.Load(viper.GetViper())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&ankiAddress, "server", "", "адрес AnkiConnect (host:port)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "не вести историю запусков")

	rootCmd.AddCommand(runCmd, rulesCmd, checkCmd, historyCmd, serveCmd)
}
