// Package main runs the duelboard session tracker service.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/duelboard/duelboard/internal/app"
	"github.com/duelboard/duelboard/internal/platform/config"
	"github.com/duelboard/duelboard/internal/platform/otel"
)

func main() {
	// A local .env is a development convenience; absence is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env err=%v", err)
	}

	log.SetPrefix("[DUELBOARD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("parse config: %v", err)
	}

	shutdown, err := otel.Setup(ctx, "duelboard")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("tracing shutdown err=%v", err)
		}
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		config.Exitf("initialize app: %v", err)
	}
	if err := a.Serve(ctx); err != nil {
		config.Exitf("serve: %v", err)
	}
}
