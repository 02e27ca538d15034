package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/logger"
	"github.com/lyj289/3d-geojson-viewer/internal/page"
	"github.com/lyj289/3d-geojson-viewer/internal/processor"
	"github.com/lyj289/3d-geojson-viewer/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE"    description:"Path to configuration file (defaults apply when empty)"`
	Example    string `short:"e" long:"example"   env:"EXAMPLE"        description:"GeoJSON path or URL shown on page load; overrides config"`
	Addr       string `short:"a" long:"addr"      env:"LISTEN_ADDRESS" description:"Address to listen on" default:"127.0.0.1"`
	Port       int    `short:"p" long:"port"      env:"LISTEN_PORT"    description:"Port to listen on"    default:"8080"`
	BasePath   string `short:"b" long:"base-path" env:"BASE_PATH"      description:"Path prefix the page uses for API calls when behind a reverse proxy"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Example != "" {
		cfg.Example = opts.Example
		cfg.ExampleInline = ""
	}

	client := &http.Client{Timeout: 15 * time.Second}
	example, err := processor.LoadExample(client, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load example data")
	}

	index, err := page.Build(page.Data{Title: cfg.Title, EchartsHost: cfg.EchartsHost, APIBase: opts.BasePath})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build page")
	}

	srvCtx := server.NewServerContext(cfg, index, example)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srvCtx.Sessions.Run(ctx)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("page_bytes", len(index)).
		Bool("example", example != "").
		Msg("Web server started")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
