package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/apiprobe/internal/httpapi"
	"github.com/hamed0406/apiprobe/internal/httpapi/middleware"
	"github.com/hamed0406/apiprobe/internal/logging"
	"github.com/hamed0406/apiprobe/internal/notify"
	"github.com/hamed0406/apiprobe/internal/repo/memory"
	"github.com/hamed0406/apiprobe/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the runs API, optionally re-running a suite on an interval",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := memory.New(cfg.MaxStoredRuns)
	api := httpapi.NewServer(logger, store, httpapi.Options{
		Keys: middleware.Keys{
			Public: cfg.PublicAPIKeys,
			Admin:  cfg.AdminAPIKeys,
		},
		PublicRPM:   cfg.PublicRPM,
		PublicBurst: cfg.PublicBurst,
		SuitePath:   cfg.SuitePath,
		BaseURL:     cfg.BaseURL,
	})

	// a Multi even for the single sink, so adding another is a one-liner
	var sinks notify.Multi
	if wh := notify.NewWebhook(cfg.WebhookURL); wh != nil {
		sinks = append(sinks, wh)
	}
	rerunner := scheduler.NewRerunner(logger, store, sinks, cfg.SuitePath, cfg.BaseURL, cfg.Interval())
	go rerunner.Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
