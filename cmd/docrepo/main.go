// Command docrepo is the command-line client of the document repository.
// Usage: docrepo <command> [flags]; run docrepo help for the command list.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docrepo/internal/apiclient"
	"docrepo/internal/cli"
	"docrepo/internal/config"
	"docrepo/internal/logger"
	"docrepo/internal/port"
	"docrepo/internal/session"
	s3storage "docrepo/internal/storage/s3"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	tokens, err := session.Open(cfg.Session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session store: %v\n", err)
		return 1
	}
	defer func() { _ = tokens.Close() }()

	client := apiclient.NewClient(cfg.API, tokens, apiclient.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(cfg, cli.Deps{
		API:    client,
		Tokens: tokens,
		Storage: func(ctx context.Context) (port.ObjectStorage, error) {
			return s3storage.NewS3Client(ctx, cfg.Archive)
		},
		Log: log,
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	})

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if msg := cli.Message(err); msg != "" {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
