package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zkl/internal/devnet"
	"zkl/internal/logging"
	"zkl/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerd:", err)
		os.Exit(1)
	}
}

func run() error {
	s, err := initConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, Config.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	n := devnet.NewNetwork(s.chain, s.programs, s.guardian, s.trusted, log)
	srv := devnet.NewServer(n, devnet.ServerOptions{
		RateLimit: Config.RateLimit,
		Burst:     Config.RateBurst,
		Metrics:   metrics.New(),
	}, log)

	hs := &http.Server{
		Addr:              Config.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	log.Info("ledgerd listening",
		"addr", Config.Listen,
		"chain", s.chain,
		"guardian", hex.EncodeToString(n.Guardian.PublicKey().Slice()),
		"registry", s.programs.Registry,
		"inbox", s.programs.Inbox,
		"bridge", s.programs.Bridge,
	)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
