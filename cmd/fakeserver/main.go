// Command fakeserver runs the in-memory document repository backend for local
// development. Data is lost on exit.
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docrepo/internal/config"
	"docrepo/internal/fakeapi"
	"docrepo/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(gin.ReleaseMode)
	srv := fakeapi.New(fakeapi.Options{JWTSecret: cfg.Fake.JWTSecret, Log: log})

	log.Info("fake backend starting",
		zap.String("addr", cfg.Fake.Port),
		zap.Strings("departments", fakeapi.DefaultDepartments),
	)
	if err := srv.Run(cfg.Fake.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
