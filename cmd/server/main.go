package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brunobiangulo/docreader"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := docreader.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("DOCREADER_EBOOK_CONVERT_PATH"); v != "" {
		cfg.EbookConvertPath = v
	}
	if v := os.Getenv("DOCREADER_LIBREOFFICE_PATH"); v != "" {
		cfg.LibreOfficePath = v
	}
	if v := os.Getenv("DOCREADER_PREVIEW_DIR"); v != "" {
		cfg.PreviewDir = v
	}
	if v := os.Getenv("DOCREADER_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("DOCREADER_CONVERSION_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.ConversionTimeoutSeconds = secs
		}
	}

	apiKey := os.Getenv("DOCREADER_API_KEY")

	reader, err := docreader.New(cfg)
	if err != nil {
		slog.Error("creating reader", "error", err)
		os.Exit(1)
	}
	defer reader.Close()

	h := newHandler(reader)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extract", h.handleExtract)
	mux.HandleFunc("GET /formats", h.handleFormats)
	mux.HandleFunc("GET /health", h.handleHealth)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      wrap(mux, apiKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // conversions can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
