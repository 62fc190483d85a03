// Kaizen Flow: sprint lifecycle and adaptive scheduling engine.
//
// Usage:
//
//	kaizenflow serve   # REST API, event stream and MCP over HTTP (default)
//	kaizenflow mcp     # MCP over stdio
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/config"
	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"github.com/kaizenflow/internal/handler"
	"github.com/kaizenflow/internal/mcptools"
	"github.com/kaizenflow/internal/notify"
	"github.com/kaizenflow/internal/router"
	"github.com/kaizenflow/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "serve":
		err = runServe()
	case "mcp":
		err = runStdio()
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Printf("kaizenflow %s\n", mcptools.Version)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("kaizenflow %s: %v", command, err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: kaizenflow [serve|mcp|version]")
}

// app holds everything built from the configuration.
type app struct {
	cfg       config.AppConfig
	bus       *events.Bus
	notifier  notify.Notifier
	forwarder *notify.Forwarder
	engine    *service.Engine
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	bus := events.NewBus(
		events.WithSubscriberCapacity(cfg.EventBufferSize),
		events.WithLogger(log.Default()),
	)
	notifier := newNotifier(cfg)
	forwarder := notify.NewForwarder(bus, notifier, cfg.WebhookTimeout)
	return &app{
		cfg:       cfg,
		bus:       bus,
		notifier:  notifier,
		forwarder: forwarder,
		engine:    service.NewEngine(db.DB, forwarder),
	}, nil
}

func newNotifier(cfg config.AppConfig) notify.Notifier {
	if cfg.WebhookURL == "" {
		return notify.Nop{}
	}
	log.Printf("[webhook] relaying events to %s", cfg.WebhookURL)
	return notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookToken, cfg.WebhookTimeout)
}

func runServe() error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.forwarder.Wait()
	gin.SetMode(a.cfg.GinMode)

	if a.cfg.GuardRails() {
		rails := service.NewGuardRailScheduler(time.Local, a.notifier)
		if err := rails.Register(); err != nil {
			return err
		}
		rails.Start()
		defer rails.Stop()
	}

	mcpServer := mcptools.NewServer(a.engine)
	r := router.SetupRouter(handler.NewAPI(a.engine, a.bus), mcptools.NewHTTPHandler(mcpServer))
	srv := &http.Server{
		Addr:    a.cfg.ListenAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("kaizenflow listening on %s", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runStdio serves MCP on stdin/stdout. Logs go to stderr.
func runStdio() error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.forwarder.Wait()
	return mcptools.ServeStdio(mcptools.NewServer(a.engine))
}
