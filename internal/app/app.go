// Package app assembles the server from its parts: configuration, the
// logging router, the hub and the HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "tankarena/server"
	"tankarena/server/internal/config"
	"tankarena/server/internal/telemetry"
	"tankarena/server/logging"
	"tankarena/server/logging/sinks"
)

// Run starts the server and blocks until the context is cancelled or the
// listener fails.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	telemetryLogger := telemetry.WrapLogger(log.New(os.Stdout, "", log.LstdFlags))
	counters := telemetry.NewCounters()

	router, cleanup, err := buildRouter(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
		cleanup()
	}()

	hub := server.NewHub(cfg, server.Deps{
		Logger:    telemetryLogger,
		Metrics:   counters,
		Publisher: router,
	})
	defer hub.Close()

	go hub.Registry().Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: hub.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			telemetryLogger.Printf("shutdown: %v", err)
		}
	}()

	telemetryLogger.Printf("server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func buildRouter(cfg config.Logging) (*logging.Router, func(), error) {
	logCfg := logging.DefaultConfig()
	if len(cfg.Sinks) > 0 {
		logCfg.EnabledSinks = cfg.Sinks
	}
	logCfg.MinimumSeverity = parseSeverity(cfg.Level)
	logCfg.JSON.FilePath = cfg.JSONPath

	cleanup := func() {}
	var named []logging.NamedSink
	if logCfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: sinks.NewConsoleSink(os.Stdout, logCfg.Console),
		})
	}
	if logCfg.HasSink("json") && cfg.JSONPath != "" {
		file, err := os.OpenFile(cfg.JSONPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open json log: %w", err)
		}
		cleanup = func() { file.Close() }
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(file, logCfg.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(nil, logCfg, named)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("construct logging router: %w", err)
	}
	return router, cleanup, nil
}

func parseSeverity(level string) logging.Severity {
	switch level {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
