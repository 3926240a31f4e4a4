package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIKey    string
	SecretKey string
	Mainnet   bool

	LogLevel string
	LogDir   string

	HTTPTimeoutSec int

	// AllowUnroundedQty opts into submitting the plain quantity string when
	// the lot-size lookup fails. Off by default: an unrounded quantity can
	// violate the exchange's lot-size rules.
	AllowUnroundedQty bool

	// Telegram (optional)
	TelegramToken  string
	TelegramChatID string
}

// Flags carries the values parsed from the command line. They take precedence
// over the environment.
type Flags struct {
	APIKey    string
	APISecret string
	Mainnet   bool
	LogLevel  string
}

// Load merges command-line flags with the environment. A .env file is loaded
// when present but is not required.
func Load(flags Flags) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		APIKey:         firstNonEmpty(flags.APIKey, os.Getenv("BINANCE_API_KEY")),
		SecretKey:      firstNonEmpty(flags.APISecret, os.Getenv("BINANCE_SECRET_KEY")),
		Mainnet:        flags.Mainnet,
		LogLevel:       firstNonEmpty(flags.LogLevel, os.Getenv("LOG_LEVEL"), "INFO"),
		LogDir:         firstNonEmpty(os.Getenv("LOG_DIR"), "logs"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}

	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("api credentials are required (flags -api-key/-api-secret or BINANCE_API_KEY/BINANCE_SECRET_KEY)")
	}

	var err error
	cfg.HTTPTimeoutSec, err = parsePositiveInt(os.Getenv("HTTP_TIMEOUT_SEC"), "HTTP_TIMEOUT_SEC", 15)
	if err != nil {
		return nil, err
	}

	cfg.AllowUnroundedQty = os.Getenv("ALLOW_UNROUNDED_QTY") == "true"

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parsePositiveInt(value, name string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return i, nil
}
