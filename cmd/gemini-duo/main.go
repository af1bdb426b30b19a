package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shouni/gemini-duo-kit/pkg/blobstore"
	"github.com/shouni/gemini-duo-kit/pkg/config"
	"github.com/shouni/gemini-duo-kit/pkg/encoder"
	"github.com/shouni/gemini-duo-kit/pkg/generator"
	"github.com/shouni/gemini-duo-kit/pkg/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("サーバーが異常終了しました", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := blobstore.New(cfg.BlobTTL)
	go store.RunJanitor(ctx, cfg.BlobTTL/2)

	enc, err := encoder.NewEncoder(store)
	if err != nil {
		return err
	}

	gen, err := generator.NewGeminiGenerator(cfg.APIKey, enc,
		generator.WithEndpoint(cfg.Endpoint),
		generator.WithModel(cfg.Model),
		generator.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)
	if err != nil {
		return err
	}

	h, err := server.New(gen, store, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewRouter(h, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("APIサーバーを起動します", "addr", cfg.Addr, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("サーバーを停止しました")
	return nil
}
