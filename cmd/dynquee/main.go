// Command dynquee drives a secondary marquee display by reacting to
// front-end events received over an MQTT broker.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/poppadum/dynquee-go/internal/broker"
	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/eventhandler"
	"github.com/poppadum/dynquee-go/internal/resolver"
	"github.com/poppadum/dynquee-go/internal/shutdown"
	"github.com/poppadum/dynquee-go/internal/slideshow"
)

func main() {
	// ── Flags ───────────────────────────────────────────
	cfgPath := flag.String("config", "/etc/dynquee.ini", "path to dynquee.ini")
	checkInterval := flag.Duration("check-interval", 2*time.Second, "shutdown-flag poll interval while waiting for broker events")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// ── Logger ──────────────────────────────────────────
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("unrecoverable panic in main loop", "panic", r, "stack", string(debug.Stack()))
			os.Exit(1)
		}
	}()

	// ── Config ──────────────────────────────────────────
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	// ── Shutdown coordinator ────────────────────────────
	sd := shutdown.New()

	// ── Components, leaves-first ────────────────────────
	sub := broker.New(cfg.Recalbox, sd)
	defer sub.Close()

	res := resolver.New(cfg)
	show := slideshow.New(cfg.Slideshow, cfg.Media, sd)
	defer show.Stop()

	h := eventhandler.New(sub, res, show, cfg, *checkInterval)

	slog.Info("dynquee starting", "config", *cfgPath, "broker", cfg.Recalbox.Host)
	h.Run(sd)
	slog.Info("dynquee stopped")
}
