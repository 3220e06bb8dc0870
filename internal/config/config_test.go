package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var envVars = []string{
	"CONFIG_FILE", "SERVICE_NAME", "INPUT_PATH", "INPUT_MAX_LINE_BYTES",
	"REPORT_FORMAT", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_VIOLATIONS",
	"KAFKA_TOPIC_SUMMARY", "KAFKA_PRINCIPAL",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Name != "ticket-validator" {
		t.Errorf("expected default name 'ticket-validator', got %s", cfg.Service.Name)
	}
	if cfg.Input.Path != "ticketData.txt" {
		t.Errorf("expected default input 'ticketData.txt', got %s", cfg.Input.Path)
	}
	if cfg.Input.MaxLineBytes != 1024*1024 {
		t.Errorf("expected default max line bytes 1MiB, got %d", cfg.Input.MaxLineBytes)
	}
	if cfg.Report.Format != "text" {
		t.Errorf("expected default report format 'text', got %s", cfg.Report.Format)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "console" {
		t.Errorf("expected default log format 'console', got %s", cfg.Observability.LogFormat)
	}
	if cfg.Observability.MetricsAddr != "" {
		t.Errorf("expected metrics server off by default, got %s", cfg.Observability.MetricsAddr)
	}
	if cfg.Kafka.Enabled {
		t.Errorf("expected Kafka disabled by default")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"localhost:9092"}) {
		t.Errorf("expected default brokers [localhost:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicViolations != "ticket.validation.violation" {
		t.Errorf("unexpected violations topic %s", cfg.Kafka.TopicViolations)
	}
	if cfg.Kafka.TopicSummary != "ticket.validation.summary" {
		t.Errorf("unexpected summary topic %s", cfg.Kafka.TopicSummary)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVICE_NAME", "tickets-nightly")
	t.Setenv("INPUT_PATH", "-")
	t.Setenv("INPUT_MAX_LINE_BYTES", "4096")
	t.Setenv("REPORT_FORMAT", "legacy")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC_VIOLATIONS", "v")
	t.Setenv("KAFKA_TOPIC_SUMMARY", "s")
	t.Setenv("KAFKA_PRINCIPAL", "svc-tickets")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Name != "tickets-nightly" {
		t.Errorf("expected name 'tickets-nightly', got %s", cfg.Service.Name)
	}
	if cfg.Input.Path != "-" {
		t.Errorf("expected input '-', got %s", cfg.Input.Path)
	}
	if cfg.Input.MaxLineBytes != 4096 {
		t.Errorf("expected max line bytes 4096, got %d", cfg.Input.MaxLineBytes)
	}
	if cfg.Report.Format != "legacy" {
		t.Errorf("expected report format 'legacy', got %s", cfg.Report.Format)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Observability.LogFormat)
	}
	if cfg.Observability.MetricsAddr != ":9090" {
		t.Errorf("expected metrics addr ':9090', got %s", cfg.Observability.MetricsAddr)
	}
	if !cfg.Kafka.Enabled {
		t.Errorf("expected Kafka enabled")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicViolations != "v" || cfg.Kafka.TopicSummary != "s" {
		t.Errorf("unexpected topics %s/%s", cfg.Kafka.TopicViolations, cfg.Kafka.TopicSummary)
	}
	if cfg.Kafka.Principal != "svc-tickets" {
		t.Errorf("expected principal 'svc-tickets', got %s", cfg.Kafka.Principal)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_MAX_LINE_BYTES", "not-a-number")
	t.Setenv("KAFKA_ENABLED", "invalid")
	t.Setenv("KAFKA_BROKERS", " , ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Input.MaxLineBytes != 1024*1024 {
		t.Errorf("expected default max line bytes on invalid input, got %d", cfg.Input.MaxLineBytes)
	}
	if cfg.Kafka.Enabled {
		t.Errorf("expected default Kafka enabled on invalid input")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"localhost:9092"}) {
		t.Errorf("expected default brokers on empty list, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServiceName(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVICE_NAME", "my-service")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service name, got %s", cfg.Kafka.Principal)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "validator.yaml")
	content := `
input:
  path: /data/tickets.txt
report:
  format: json
kafka:
  enabled: true
  brokers: [broker-a:9092]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REPORT_FORMAT", "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Input.Path != "/data/tickets.txt" {
		t.Errorf("expected input from file, got %s", cfg.Input.Path)
	}
	if cfg.Report.Format != "legacy" {
		t.Errorf("expected env to override file, got %s", cfg.Report.Format)
	}
	if !cfg.Kafka.Enabled {
		t.Errorf("expected Kafka enabled from file")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"broker-a:9092"}) {
		t.Errorf("expected brokers from file, got %v", cfg.Kafka.Brokers)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Kafka.TopicSummary != "ticket.validation.summary" {
		t.Errorf("expected default summary topic, got %s", cfg.Kafka.TopicSummary)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("input: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Errorf("expected error for invalid YAML")
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			t.Setenv(key, tt.envValue)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvOrDefaultInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{"number", "42", 42},
		{"empty", "", 7},
		{"invalid", "abc", 7},
		{"zero", "0", 7},
		{"negative", "-5", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_INT_VAR"
			t.Setenv(key, tt.envValue)

			if got := envOrDefaultInt(key, 7); got != tt.expected {
				t.Errorf("envOrDefaultInt(%s) = %d, want %d", tt.envValue, got, tt.expected)
			}
		})
	}
}
