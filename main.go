package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetgraph/internal/api"
	"assetgraph/internal/change"
	"assetgraph/internal/graph"
	"assetgraph/internal/logging"
	"assetgraph/internal/middleware"
	"assetgraph/internal/project"

	"go.uber.org/zap"
)

func main() {
	root := flag.String("root", ".", "project root")
	watch := flag.Bool("watch", true, "re-evaluate loaders when the asset tree changes")
	flag.Parse()

	// Load configuration
	cfg, err := project.Load(*root)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := project.Open(cfg, logger.Logger)
	if err != nil {
		logger.Fatal("failed to open project", zap.Error(err))
	}
	defer p.Close()

	if _, report, err := p.Sync(ctx, nil); err != nil {
		logger.Fatal("initial run failed", zap.Error(err))
	} else {
		logReport(logger, report)
	}

	if *watch {
		w, err := p.NewWatcher(ctx)
		if err != nil {
			logger.Fatal("failed to start watcher", zap.Error(err))
		}
		go func() {
			err := w.Run(ctx, nil, func(batch change.Batch, report *graph.Report) {
				logger.Info("cycle completed", zap.Int("changes", batch.Len()))
				logReport(logger, report)
			})
			if err != nil {
				logger.Error("watcher stopped", zap.Error(err))
			}
		}()
	}

	// Set up router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.Health)
	api.NewLoaderHandler(p.Runner).Register(mux)

	// Apply middleware; RequestID runs first
	handler := middleware.Chain(
		mux,
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.RequestID,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func logReport(logger *logging.Logger, report *graph.Report) {
	for _, res := range report.Failed() {
		logger.Warn("loader failed",
			zap.String("node", res.NodeName),
			zap.Stringer("target", res.Target),
			zap.String("error", res.Error),
		)
	}
	logger.Info("loaders evaluated",
		zap.Int("targets", len(report.Results)),
		zap.Int("revisited", report.Revisited()),
	)
}
