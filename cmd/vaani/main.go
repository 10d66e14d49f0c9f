package main

import (
	"context"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"vaani/internal/bus"
	"vaani/internal/config"
	"vaani/internal/intent"
	"vaani/internal/logging"
	"vaani/internal/respond"
)

func main() {
	cfgPath := cli.StringP("config", "c", "vaani.yaml", "Config file path")
	busURL := cli.StringP("url", "u", "", "Url of hub (overrides config)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	logging.Setup(*logLevel)

	log.Info("Starting vaani shard")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *busURL == "" {
		*busURL = os.Getenv("BUS_URL")
	}
	if *busURL != "" {
		cfg.Bus.URL = *busURL
	}

	table := intent.Default()
	if cfg.IntentsFile != "" {
		if table, err = intent.LoadFile(cfg.IntentsFile); err != nil {
			log.Error("Failed to load intents", "err", err)
			os.Exit(1)
		}
	}
	responder := respond.New()
	for _, label := range table.Labels() {
		if !responder.Has(label) {
			log.Warn("Intent has no answer, fallback reply will be used", "label", label)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bus.Dial(ctx, cfg.Bus.URL, cfg.Bus.Shard)
	if err != nil {
		log.Error("failed to connect to bus", "error", err)
		os.Exit(1)
	}

	err = b.Serve(ctx, func(_ context.Context, text string) (string, string) {
		label, kw := intent.MatchKeyword(text, table)
		log.Info("Bus text", "text", text, "intent", label, "keyword", kw)
		return label, responder.Respond(label, text).Text
	})
	if err != nil {
		log.Error("Bus stopped", "error", err)
		os.Exit(1)
	}
}
