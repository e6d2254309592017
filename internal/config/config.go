package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix  = "HERALD"
	configName = "herald"
)

const (
	ExporterNone          = "none"
	ExporterElasticsearch = "elasticsearch"
	ExporterOtlp          = "otlp"
)

type Config struct {
	ServiceName string
	Server      ServerConfig
	Console     ConsoleConfig
	Agent       AgentConfig
	Tracing     TracingConfig
	Elastic     ElasticConfig
	Otlp        OtlpConfig
	Collector   CollectorConfig
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	ApiDelay        time.Duration
	RenderDelay     time.Duration
}

type ConsoleConfig struct {
	Format string
	Level  string
}

type AgentConfig struct {
	Enabled           bool
	Exporter          string
	BufferSize        int
	FlushInterval     time.Duration
	ErrorDedupeWindow time.Duration
}

type TracingConfig struct {
	Endpoint string
}

type ElasticConfig struct {
	Addresses []string
	Retries   int
}

type OtlpConfig struct {
	Endpoint string
}

type CollectorConfig struct {
	Addr string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "herald-demo")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.api_delay", 100*time.Millisecond)
	v.SetDefault("server.render_delay", 50*time.Millisecond)
	v.SetDefault("console.format", "json")
	v.SetDefault("console.level", "debug")
	v.SetDefault("agent.enabled", true)
	v.SetDefault("agent.exporter", ExporterNone)
	v.SetDefault("agent.buffer_size", 30)
	v.SetDefault("agent.flush_interval", 5*time.Second)
	v.SetDefault("agent.error_dedupe_window", time.Minute)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("elasticsearch.addresses", []string{})
	v.SetDefault("elasticsearch.retries", 30)
	v.SetDefault("otlp.endpoint", "localhost:4317")
	v.SetDefault("collector.addr", ":4317")
}

// Load reads herald.yaml from the working directory, or path when given, and
// overlays HERALD_ prefixed environment variables. A missing herald.yaml in
// the working directory is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	cfg := &Config{
		ServiceName: v.GetString("service.name"),
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			ApiDelay:        v.GetDuration("server.api_delay"),
			RenderDelay:     v.GetDuration("server.render_delay"),
		},
		Console: ConsoleConfig{
			Format: v.GetString("console.format"),
			Level:  v.GetString("console.level"),
		},
		Agent: AgentConfig{
			Enabled:           v.GetBool("agent.enabled"),
			Exporter:          strings.ToLower(v.GetString("agent.exporter")),
			BufferSize:        v.GetInt("agent.buffer_size"),
			FlushInterval:     v.GetDuration("agent.flush_interval"),
			ErrorDedupeWindow: v.GetDuration("agent.error_dedupe_window"),
		},
		Tracing: TracingConfig{
			Endpoint: v.GetString("tracing.endpoint"),
		},
		Elastic: ElasticConfig{
			Addresses: v.GetStringSlice("elasticsearch.addresses"),
			Retries:   v.GetInt("elasticsearch.retries"),
		},
		Otlp: OtlpConfig{
			Endpoint: v.GetString("otlp.endpoint"),
		},
		Collector: CollectorConfig{
			Addr: v.GetString("collector.addr"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Agent.Exporter {
	case ExporterNone, ExporterElasticsearch, ExporterOtlp:
	default:
		return fmt.Errorf("agent.exporter %q: %w", c.Agent.Exporter, ErrUnknownExporter)
	}
	if c.Agent.BufferSize < 0 {
		return fmt.Errorf("agent.buffer_size %d: %w", c.Agent.BufferSize, ErrNegativeValue)
	}
	if c.Elastic.Retries < 0 {
		return fmt.Errorf("elasticsearch.retries %d: %w", c.Elastic.Retries, ErrNegativeValue)
	}
	durations := []struct {
		key   string
		value time.Duration
	}{
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"server.api_delay", c.Server.ApiDelay},
		{"server.render_delay", c.Server.RenderDelay},
		{"agent.flush_interval", c.Agent.FlushInterval},
		{"agent.error_dedupe_window", c.Agent.ErrorDedupeWindow},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s %s: %w", d.key, d.value, ErrNegativeValue)
		}
	}
	return nil
}

var (
	ErrUnknownExporter = errors.New("unknown exporter")
	ErrNegativeValue   = errors.New("value must not be negative")
)
