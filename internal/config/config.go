package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration is the full runtime configuration of the validator.
type Configuration struct {
	Service       ServiceConfig       `yaml:"service"`
	Input         InputConfig         `yaml:"input"`
	Report        ReportConfig        `yaml:"report"`
	Observability ObservabilityConfig `yaml:"observability"`
	Kafka         KafkaConfig         `yaml:"kafka"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
}

type InputConfig struct {
	Path         string `yaml:"path"`
	MaxLineBytes int    `yaml:"maxLineBytes"`
}

type ReportConfig struct {
	Format string `yaml:"format"`
}

type ObservabilityConfig struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
	// MetricsAddr enables the HTTP server when non-empty.
	MetricsAddr string `yaml:"metricsAddr"`
}

type KafkaConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Brokers         []string `yaml:"brokers"`
	TopicViolations string   `yaml:"topicViolations"`
	TopicSummary    string   `yaml:"topicSummary"`
	// Principal defaults to Service.Name.
	Principal string `yaml:"principal"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Configuration {
	return &Configuration{
		Service: ServiceConfig{Name: "ticket-validator"},
		Input: InputConfig{
			Path:         "ticketData.txt",
			MaxLineBytes: 1024 * 1024,
		},
		Report: ReportConfig{Format: "text"},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"localhost:9092"},
			TopicViolations: "ticket.validation.violation",
			TopicSummary:    "ticket.validation.summary",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if set) and environment variables, in that order.
func Load() (*Configuration, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (*Configuration, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Name
	}
	return cfg, nil
}

func (c *Configuration) applyEnv() {
	c.Service.Name = envOrDefault("SERVICE_NAME", c.Service.Name)

	c.Input.Path = envOrDefault("INPUT_PATH", c.Input.Path)
	c.Input.MaxLineBytes = envOrDefaultInt("INPUT_MAX_LINE_BYTES", c.Input.MaxLineBytes)

	c.Report.Format = envOrDefault("REPORT_FORMAT", c.Report.Format)

	c.Observability.LogLevel = envOrDefault("LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = envOrDefault("LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsAddr = envOrDefault("METRICS_ADDR", c.Observability.MetricsAddr)

	c.Kafka.Enabled = envOrDefaultBool("KAFKA_ENABLED", c.Kafka.Enabled)
	c.Kafka.Brokers = envOrDefaultList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.TopicViolations = envOrDefault("KAFKA_TOPIC_VIOLATIONS", c.Kafka.TopicViolations)
	c.Kafka.TopicSummary = envOrDefault("KAFKA_TOPIC_SUMMARY", c.Kafka.TopicSummary)
	c.Kafka.Principal = envOrDefault("KAFKA_PRINCIPAL", c.Kafka.Principal)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// envOrDefaultList splits a comma-separated value, dropping empty items.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
