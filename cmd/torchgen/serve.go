package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/server"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":8080", "listen address")
	templatesDir := fs.String("templates", "", "directory holding templates (embedded set if empty)")
	basePath := fs.String("base", "", "path prefix the API is mounted under")
	noValidate := fs.Bool("no-validate", false, "skip OpenAPI request validation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := loadStore(*templatesDir)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	fns := []server.OptionFn{
		server.WithStore(store),
		server.WithOrchestrator(orchestrator.New(orchestrator.WithStore(store))),
		server.WithLogger(logger),
	}
	if *noValidate {
		fns = append(fns, server.WithoutValidation())
	}
	api, err := server.New(ctx, fns...)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	if _, err := server.RegisterRoutes(mux, *basePath, api); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
