package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"

	"h2s_bot/internal/auth"
	"h2s_bot/internal/bot"
	"h2s_bot/internal/config"
	"h2s_bot/internal/fetcher"
	"h2s_bot/internal/notifier"
	"h2s_bot/internal/poller"
	"h2s_bot/internal/storage"
	"h2s_bot/internal/tunnel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.NgrokTunnelName != "" {
		publicURL, err := tunnel.FetchPublicURL(ctx, http.DefaultClient, tunnel.DefaultAPIURL, cfg.NgrokTunnelName)
		if err != nil {
			log.Error("discover ngrok tunnel", "name", cfg.NgrokTunnelName, "error", err)
			os.Exit(1)
		}
		log.Info("ngrok tunnel discovered", "public_url", publicURL)
	}

	var bearer string
	if cfg.H2SUsername != "" {
		session, err := auth.New().Login(ctx, auth.Credentials{
			Username: cfg.H2SUsername,
			Password: cfg.H2SPassword,
		})
		if err != nil {
			log.Error("holland2stay login", "error", err)
			os.Exit(1)
		}
		bearer = session.BearerToken
		log.Info("holland2stay login ok")
	}

	registry := storage.NewRegistry()
	snapshot := storage.NewSnapshot()

	b, err := bot.New(cfg.TelegramBotToken, registry, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	notify := notifier.New(b, snapshot, log)
	b.SetNotifier(notify)

	source := fetcher.New(http.DefaultClient, bearer)
	p := poller.New(source, registry, snapshot, notify, log)
	p.SetTickInterval(cfg.PollInterval)

	log.Info("starting bot", "poll_interval", cfg.PollInterval)

	go p.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	default:
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}
	return slog.New(handler)
}
