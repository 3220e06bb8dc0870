// Violation viewer: tails the validation topics in Kafka and streams the
// events to a browser over WebSocket.
package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"ticket-validator/internal/observability/logging"
)

//go:embed static/*
var staticFiles embed.FS

func newMux(hub *Hub) http.Handler {
	staticFS, _ := fs.Sub(staticFiles, "static")

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.HandleFunc("/ws", wsHandler(hub))
	return mux
}

func main() {
	addr := pflag.String("addr", ":8081", "HTTP listen address")
	brokers := pflag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicViolations := pflag.String("topic-violations", "ticket.validation.violation", "violation event topic")
	topicSummary := pflag.String("topic-summary", "ticket.validation.summary", "run summary topic")
	since := pflag.Duration("since", time.Hour, "replay events newer than this")
	logLevel := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := newHub()
	go hub.run(ctx.Done())

	brokerList := strings.Split(*brokers, ",")
	go consumeKafka(ctx, hub, brokerList, *topicViolations, *since)
	go consumeKafka(ctx, hub, brokerList, *topicSummary, *since)

	server := &http.Server{
		Addr:              *addr,
		Handler:           newMux(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", *addr).
		Strs("brokers", brokerList).
		Strs("topics", []string{*topicViolations, *topicSummary}).
		Msg("Violation viewer starting")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
