package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"coverwall/internal/pipeline"
	"coverwall/internal/shutdown"
	"coverwall/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search sessions over HTTP and WebSocket",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ListenAddr = addr
	}

	log := newLogger(cfg, configPath)
	defer log.Close()

	p, err := pipeline.Build(cfg, log, pipeline.Overrides{})
	if err != nil {
		return err
	}

	sh := shutdown.New(cmd.Context())
	sh.Listen()

	sessions := web.NewSessionManager(p.NewSession, cfg.SessionRetention, nil)
	sessions.StartCleanup(sh.Context(), func() {
		if n := p.Cache.Purge(); n > 0 {
			log.Debug("Purged %d expired cache entries", n)
		}
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      web.NewServer(sessions, log).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sh.AddCleanup(func() {
		log.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error: %v", err)
		}
	})

	log.Info("Starting web server on %s", cfg.ListenAddr)
	err = httpServer.ListenAndServe()
	// Blocks until the cleanups started by a signal have finished.
	sh.Shutdown()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server stopped")
	return nil
}
