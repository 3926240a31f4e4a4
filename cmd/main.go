package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"futures-trading-binance/internal/api"
	"futures-trading-binance/internal/cli"
	"futures-trading-binance/internal/config"
	"futures-trading-binance/internal/core"
	"futures-trading-binance/internal/logger"
	"futures-trading-binance/internal/metrics"
	"futures-trading-binance/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	var flags config.Flags
	flag.StringVar(&flags.APIKey, "api-key", "", "Binance API key (falls back to BINANCE_API_KEY)")
	flag.StringVar(&flags.APISecret, "api-secret", "", "Binance API secret (falls back to BINANCE_SECRET_KEY)")
	flag.BoolVar(&flags.Mainnet, "mainnet", false, "use mainnet instead of testnet")
	flag.StringVar(&flags.LogLevel, "log-level", "", "console log level: DEBUG, INFO, WARNING or ERROR")
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start bot: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start bot: %v\n", err)
		return 1
	}

	network := "TESTNET"
	if cfg.Mainnet {
		network = "MAINNET"
	}
	log.Info("bot initialized", "network", network)

	ctx := context.Background()
	client := api.NewClient(cfg, log)
	if err := client.SyncTime(ctx); err != nil {
		log.Warn("failed to synchronize time with binance, using local time", "error", err)
	}

	var notifier core.Notifier
	telegram := service.NewTelegramService(cfg.TelegramToken, cfg.TelegramChatID, log)
	if telegram.Enabled() {
		notifier = telegram
		log.Info("telegram notifications enabled")
	}

	bot := core.NewBot(cfg, log, client, notifier)
	if err := bot.TestConnection(ctx); err != nil {
		if apiErr, ok := api.AsAPIError(err); ok {
			log.Error("failed to initialize bot", "code", apiErr.Code, "message", apiErr.Message)
		} else {
			log.Error("failed to initialize bot", "error", err)
		}
		fmt.Fprintf(os.Stderr, "Failed to start bot: %v\n", err)
		return 1
	}

	tracker := metrics.NewTracker()
	shell := cli.NewShell(bot, os.Stdin, os.Stdout, log, tracker)
	shell.Run(ctx)
	tracker.LogSummary(log)
	return 0
}
