// Command gazette runs The Great Work orchestration engine: it wires the
// store, catalogs, and narrative enhancer into the game service, then
// drives the digest on a cron beat until signalled to stop.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/tachyon-beep/jubilant-fortnight/internal/archive"
	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/config"
	"github.com/tachyon-beep/jubilant-fortnight/internal/enhance"
	"github.com/tachyon-beep/jubilant-fortnight/internal/service"
	"github.com/tachyon-beep/jubilant-fortnight/internal/store"
)

func main() {
	configPath := flag.String("config", "gazette.toml", "path to the TOML settings file")
	digestSpec := flag.String("digest", "0 */6 * * *", "cron spec for the digest beat")
	archiveDir := flag.String("archive", "", "directory for the static HTML archive (empty disables export)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load settings", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.Game.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create data dir", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	st, err := store.Open(cfg.Game.DBPath)
	if err != nil {
		logger.Error("open store", "path", cfg.Game.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	cat, err := catalog.Load()
	if err != nil {
		logger.Error("load catalogs", "error", err)
		os.Exit(1)
	}

	enhancer := enhance.NewClient(os.Getenv("ANTHROPIC_API_KEY"),
		time.Duration(cfg.Enhancer.CallTimeoutSeconds)*time.Second)
	if enhancer == nil {
		logger.Info("narrative enhancement disabled (no ANTHROPIC_API_KEY)")
	}

	svc, err := service.New(cfg, st, cat, enhancer, nil, logger)
	if err != nil {
		logger.Error("start service", "error", err)
		os.Exit(1)
	}

	beat := cron.New()
	if _, err := beat.AddFunc(*digestSpec, func() {
		report, err := svc.AdvanceDigest()
		if err != nil {
			logger.Warn("digest skipped", "error", err)
			return
		}
		logger.Info("beat done",
			"press", report.PressReleased,
			"orders", report.OrdersResolved,
			"reprisals", report.ReprisalsTaken,
		)
		if *archiveDir != "" {
			if err := archive.Export(svc, *archiveDir); err != nil {
				logger.Error("archive export", "error", err)
			}
		}
	}); err != nil {
		logger.Error("schedule digest", "spec", *digestSpec, "error", err)
		os.Exit(1)
	}
	beat.Start()
	logger.Info("gazette running", "digest", *digestSpec, "db", cfg.Game.DBPath)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx := beat.Stop()
	<-ctx.Done()
}
