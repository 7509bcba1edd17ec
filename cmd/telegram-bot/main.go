package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/prometheus/client_golang/prometheus"

	"tasklist/internal/clock"
	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/notify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error(ctx, err, "telegram bot stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Info(ctx, "starting telegram bot", "driver", cfg.StoreDriver)

	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return errors.New("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	store, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	logger.Info(ctx, "authorized", "user", api.Self.UserName)

	clk := clock.System{}
	repo := manager.NewTaskManager(store, clk)
	notes := notify.New(cfg.NotifyTTL, newChatSink(api, cfg.TelegramChatID))
	defer notes.Clear()

	bot := NewBot(api, cfg.TelegramChatID)
	ctl := controller.New(repo, notes, bot, clk)
	bot.Bind(ctl, repo)
	ctl.Start()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	defer api.StopReceivingUpdates()

	logger.Info(ctx, "listening for messages", "chat_id", cfg.TelegramChatID)
	bot.Serve(ctx, updates, func() {
		if cfg.MetricsFile == "" {
			return
		}
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, prometheus.DefaultGatherer); err != nil {
			logger.Error(ctx, err, "write metrics", "path", cfg.MetricsFile)
		}
	})
	return nil
}
