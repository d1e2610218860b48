package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/bananimon/internal/avatar"
	"github.com/lazypower/bananimon/internal/logger"
	"github.com/lazypower/bananimon/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	eng, closeDB, err := openEngine(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	eng.StartSweeps()
	defer eng.Stop()

	var gen *avatar.Generator
	client, err := avatar.NewClient(cfg.Avatar)
	if err != nil {
		log.Warn("avatar generation disabled", "error", err)
	} else {
		gen = avatar.NewGenerator(client, cfg.Avatar.Variants, log)
		log.Info("avatar provider ready", "provider", cfg.Avatar.Provider, "model", cfg.Avatar.Model)
	}

	if cfg.Session.Secret == "" {
		log.Warn("no session secret configured, sessions will not survive a restart")
	}
	sessions, err := server.NewSessions(cfg.Session)
	if err != nil {
		return err
	}

	srv := server.New(eng, gen, sessions, log, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("bananimon serving", "addr", addr, "db", eng.DB.Path, "timezone", cfg.Game.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
