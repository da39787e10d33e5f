package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ankifield/internal/domain/note"
)

var ErrServerTokenRequired = errors.New("server_token обязателен в prod окружении")

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	defaultEnv                = EnvLocal
	defaultLogLevel           = ""
	defaultAnkiConnectAddress = "localhost:8765"
	defaultServerAddress      = "localhost:8766"
	defaultConfigDir          = ".ankifield"
	defaultDataFile           = "history.db"
)

type Config struct {
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	AnkiConnectAddress string        `mapstructure:"anki_connect_address"`
	AnkiConnectAPIKey  string        `mapstructure:"anki_connect_api_key"`
	AnkiConnectTimeout time.Duration `mapstructure:"-"`
	ServerAddress      string        `mapstructure:"server_address"`
	ServerToken        string        `mapstructure:"server_token"`
	ConfigDir          string        `mapstructure:"config_dir"`
	DataPath           string        `mapstructure:"data_path"`
	Rules              []note.Rule   `mapstructure:"rules"`
}

// LoadEnvFile подгружает .env из текущей или родительской директории, если он есть
func LoadEnvFile() {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка загрузки .env файла: %v\n", err)
		}
	}
}

// Load читает конфигурацию из v: переменные окружения, файл конфигурации и
// значения по умолчанию. Если правила не заданы, используются встроенные.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("ANKI_CONNECT_ADDRESS", defaultAnkiConnectAddress)
	v.SetDefault("ANKI_CONNECT_TIMEOUT_SECONDS", 0)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	dataPath := v.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, defaultDataFile)
	}

	var rules []note.Rule
	if err := v.UnmarshalKey("rules", &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rules) == 0 {
		rules = note.BuiltinRules()
	}

	cfg := &Config{
		Env:                v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		AnkiConnectAddress: v.GetString("ANKI_CONNECT_ADDRESS"),
		AnkiConnectAPIKey:  v.GetString("ANKI_CONNECT_API_KEY"),
		AnkiConnectTimeout: time.Duration(v.GetInt("ANKI_CONNECT_TIMEOUT_SECONDS")) * time.Second,
		ServerAddress:      v.GetString("SERVER_ADDRESS"),
		ServerToken:        v.GetString("SERVER_TOKEN"),
		ConfigDir:          configDir,
		DataPath:           dataPath,
		Rules:              rules,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AnkiConnectAddress == "" {
		return fmt.Errorf("anki_connect_address не может быть пустым")
	}
	if c.AnkiConnectTimeout < 0 {
		return fmt.Errorf("anki_connect_timeout_seconds не может быть отрицательным")
	}

	seen := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := seen[r.Name]; ok {
			return fmt.Errorf("%w: duplicate rule name %q", note.ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}
	}

	return nil
}

// Rule возвращает правило по имени
func (c *Config) Rule(name string) (note.Rule, bool) {
	for _, r := range c.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return note.Rule{}, false
}

// APIToken возвращает токен HTTP API. Пустой токен отключает авторизацию,
// поэтому в prod он обязателен.
func (c *Config) APIToken() (string, error) {
	if c.ServerToken == "" && c.IsProd() {
		return "", ErrServerTokenRequired
	}
	return c.ServerToken, nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
