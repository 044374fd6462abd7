package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/api"
	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/display"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/output"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
)

// A headless server on the built-in defaults, with no config file
func main() {
	cfg := config.Defaults()
	logger.Init(cfg.LogLevel, false)
	log := logger.WithComponent("server")

	sh, err := shell.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize shell")
	}
	defer sh.Stop()

	mjpegOut := output.NewMJPEGOutput(output.Config{
		Width:   cfg.Viewport.Width,
		Height:  cfg.Viewport.Height,
		FPS:     cfg.Stream.FPS,
		Quality: cfg.Stream.Quality,
	})
	if err := mjpegOut.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start MJPEG output")
	}
	defer mjpegOut.Stop()

	renderer := display.NewRenderer(cfg.Viewport.Width, cfg.Viewport.Height)
	displayMgr := display.NewManager(sh, renderer, mjpegOut, cfg.Stream.FPS)
	if err := displayMgr.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start display")
	}
	defer displayMgr.Stop()

	server := api.NewServer(sh, nil, displayMgr, mjpegOut)
	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	log.Info().
		Int("port", cfg.ServerPort).
		Str("session", sh.Session()).
		Msg("WebDesk is running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
