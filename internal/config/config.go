// Package config loads the application configuration from viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Philos250/TransactiTrack/internal/certs"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/events"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "TRANSACTITRACK"

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	Backend string
	Path    string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TLS             TLSConfig
}

// TLSConfig configures HTTPS for the API. Without a certificate and key
// file a self-signed certificate for Hosts is kept in CertDir.
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
	CertDir  string
	Hosts    []string
}

// Source returns the certificate source for the server.
func (c TLSConfig) Source() certs.Source {
	return certs.Source{
		CertFile: c.CertFile,
		KeyFile:  c.KeyFile,
		Dir:      c.CertDir,
		Hosts:    c.Hosts,
	}
}

// LoggingConfig configures the default slog logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// EventsConfig configures the AMQP event publisher. An empty URL disables it.
type EventsConfig struct {
	AMQPURL       string
	Exchange      string
	RoutingPrefix string
}

// Enabled reports whether events should be published to a broker.
func (c EventsConfig) Enabled() bool {
	return c.AMQPURL != ""
}

// Publisher returns the publisher configuration.
func (c EventsConfig) Publisher() events.Config {
	cfg := events.DefaultConfig()
	cfg.URL = c.AMQPURL
	if c.Exchange != "" {
		cfg.Exchange = c.Exchange
	}
	if c.RoutingPrefix != "" {
		cfg.RoutingPrefix = c.RoutingPrefix
	}
	return cfg
}

// Config is the typed application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Events   EventsConfig
	Sheets   SheetsConfig
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendSQLite)
	v.SetDefault("database.path", "$HOME/.local/share/transactitrack/transactitrack.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_dir", "$HOME/.local/share/transactitrack/certs")
	v.SetDefault("server.tls.hosts", certs.DefaultHosts)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("events.exchange", events.DefaultConfig().Exchange)
	v.SetDefault("events.routing_prefix", events.DefaultConfig().RoutingPrefix)
}

// BindEnv makes TRANSACTITRACK_SECTION_KEY override section.key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the typed configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("database.backend"))),
			Path:    ExpandPath(v.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			AllowedOrigins:  splitList(v.GetStringSlice("server.allowed_origins")),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			TLS: TLSConfig{
				Enabled:  v.GetBool("server.tls.enabled"),
				CertFile: ExpandPath(v.GetString("server.tls.cert_file")),
				KeyFile:  ExpandPath(v.GetString("server.tls.key_file")),
				CertDir:  ExpandPath(v.GetString("server.tls.cert_dir")),
				Hosts:    splitList(v.GetStringSlice("server.tls.hosts")),
			},
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Events: EventsConfig{
			AMQPURL:       v.GetString("events.amqp_url"),
			Exchange:      v.GetString("events.exchange"),
			RoutingPrefix: v.GetString("events.routing_prefix"),
		},
		Sheets: loadSheets(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Backend {
	case BackendSQLite, BackendBolt:
	default:
		problems = append(problems, fmt.Sprintf("invalid database backend %q: must be %q or %q", c.Database.Backend, BackendSQLite, BackendBolt))
	}
	if c.Database.Path == "" {
		problems = append(problems, "database path cannot be empty")
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		problems = append(problems, fmt.Sprintf("invalid server address %q: %v", c.Server.Addr, err))
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"read_timeout", c.Server.ReadTimeout},
		{"write_timeout", c.Server.WriteTimeout},
		{"request_timeout", c.Server.RequestTimeout},
		{"shutdown_timeout", c.Server.ShutdownTimeout},
	}
	for _, timeout := range timeouts {
		if timeout.d < 0 {
			problems = append(problems, fmt.Sprintf("server %s cannot be negative", timeout.name))
		}
	}

	if tls := c.Server.TLS; tls.Enabled {
		if (tls.CertFile == "") != (tls.KeyFile == "") {
			problems = append(problems, "server tls cert_file and key_file must be set together")
		}
		if tls.CertFile == "" && tls.CertDir == "" {
			problems = append(problems, "server tls needs cert_file and key_file or a cert_dir")
		}
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be console or json", c.Logging.Format))
	}

	if c.Events.Enabled() {
		if parsed, err := url.Parse(c.Events.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events exchange cannot be empty when an AMQP URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", common.ErrInvalidConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
