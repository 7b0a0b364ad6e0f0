package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/earningscall-analyzer/internal/adapters/http"
	"github.com/kirillkom/earningscall-analyzer/internal/bootstrap"
	"github.com/kirillkom/earningscall-analyzer/internal/config"
	"github.com/kirillkom/earningscall-analyzer/internal/observability/logging"
)

const serviceName = "earnings-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewLogger(os.Stdout, serviceName, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	router, err := httpadapter.NewRouter(cfg, app.AnalyzeUC, app.AnalyzeUC, app.Metrics)
	if err != nil {
		log.Fatalf("router error: %v", err)
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		log.Fatalf("listen error: %v", err)
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	// Model calls can run for minutes; the write deadline follows LLM_TIMEOUT.
	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      writeTimeout(cfg.LLMTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"provider", cfg.LLMProvider,
			"credential_configured", app.CredentialErr == nil,
			"max_connections", cfg.APIMaxConnections,
		)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}

func writeTimeout(llmTimeout time.Duration) time.Duration {
	if llmTimeout <= 0 {
		return 0
	}
	return llmTimeout + 30*time.Second
}
