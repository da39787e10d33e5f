package cmd

import (
	"github.com/spf13/cobra"
)

var serveToken string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API",
	Long: `Запускает HTTP API на server_address. Правила, запущенные через API,
выполняются по одному. Если задан server_token (или --token), все маршруты,
кроме /api/v1/health, требуют заголовок Authorization: Bearer <token>.
В prod окружении токен обязателен.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveToken != "" {
			cfg.ServerToken = serveToken
		}

		token, err := cfg.APIToken()
		if err != nil {
			return err
		}
		if token == "" && !cfg.IsLocal() {
			log.Warn("server_token не задан, API доступен без авторизации")
		}

		return app.Serve(cmd.Context(), token)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveToken, "token", "", "токен доступа к API")
}
