package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"ticket-validator/internal/app"
	"ticket-validator/internal/config"
	apphttp "ticket-validator/internal/http"
	"ticket-validator/internal/observability"
	"ticket-validator/internal/report"
	"ticket-validator/internal/service/validation"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	configFile  string
	input       string
	format      string
	metricsAddr string
	logLevel    string
	logFormat   string
	kafka       bool
	serve       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("ticket-validator", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ticket-validator [flags] [input]\n\n")
		fmt.Fprintf(stderr, "Validates one JSON ticket record per line and prints a summary.\n\n")
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVarP(&opts.configFile, "config", "c", os.Getenv("CONFIG_FILE"), "YAML config file")
	fs.StringVarP(&opts.input, "input", "i", "", "input file, or - for stdin")
	fs.StringVarP(&opts.format, "format", "f", "", "report format: text, json or legacy")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /v1/summary on this address")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")
	fs.BoolVar(&opts.kafka, "kafka", false, "publish events to Kafka")
	fs.BoolVar(&opts.serve, "serve", false, "keep the HTTP server running after the report until interrupted")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "at most one input may be given, got %d\n", fs.NArg())
		return exitUsage
	}

	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	applyFlags(fs, &opts, cfg)

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return exitError
	}
	defer application.Shutdown()

	var server *observability.Server
	if cfg.Observability.MetricsAddr != "" {
		server = observability.NewServer(cfg.Observability.MetricsAddr, apphttp.NewRouter(application))
		if err := server.Start(); err != nil {
			log.Error().Err(err).Str("addr", cfg.Observability.MetricsAddr).Msg("Failed to start HTTP server")
			return exitError
		}
		defer shutdownServer(server)
	}

	if err := application.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to start application")
		return exitError
	}

	summary, runErr := application.Run(ctx)
	if runErr != nil && summary.State != validation.StateAborted {
		// The input could not be opened; there is nothing to report.
		log.Error().Err(runErr).Msg("Validation failed")
		return exitError
	}

	if err := report.Write(stdout, format, summary); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
		return exitError
	}
	if runErr != nil {
		return exitError
	}

	if opts.serve && server != nil {
		log.Info().Str("addr", server.Addr()).Msg("Serving until interrupted")
		<-ctx.Done()
	}
	return exitOK
}

// applyFlags overrides cfg with every flag set explicitly on the command line.
func applyFlags(fs *pflag.FlagSet, opts *options, cfg *config.Configuration) {
	if fs.NArg() == 1 {
		cfg.Input.Path = fs.Arg(0)
	}
	if fs.Changed("input") {
		cfg.Input.Path = opts.input
	}
	if fs.Changed("format") {
		cfg.Report.Format = opts.format
	}
	if fs.Changed("metrics-addr") {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}
	if fs.Changed("log-level") {
		cfg.Observability.LogLevel = opts.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Observability.LogFormat = opts.logFormat
	}
	if fs.Changed("kafka") {
		cfg.Kafka.Enabled = opts.kafka
	}
}

func shutdownServer(s *observability.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
