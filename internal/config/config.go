// Package config maps viper settings onto the typed process configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable; dots and dashes in
// keys become underscores (server.addr -> MEMBERGRAPH_SERVER_ADDR).
const EnvPrefix = "MEMBERGRAPH"

type Config struct {
	Server   Server
	GraphQL  GraphQL
	Database Database
	Loader   Loader
	Log      Log
	Otel     Otel
	Metrics  Metrics
}

type Server struct {
	Addr         string
	Timeout      time.Duration
	Pretty       bool
	MaxBodyBytes int64
	CORSOrigins  []string
}

type GraphQL struct {
	MaxDepth int
}

type Database struct {
	// Driver is one of sqlite, postgres, mysql or memory.
	Driver       string
	DSN          string
	MaxOpenConns int
}

type Loader struct {
	// MaxBatch caps keys per backend call; 0 is unlimited.
	MaxBatch int
}

type Log struct {
	Level  string
	Format string
}

type Otel struct {
	Endpoint string
	Service  string
}

type Metrics struct {
	// Addr serves /metrics on its own listener; empty disables it.
	Addr string
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.timeout":          10 * time.Second,
	"server.pretty":           false,
	"server.max-body-bytes":   int64(1 << 20),
	"server.cors-origins":     []string{},
	"graphql.max-depth":       5,
	"database.driver":         "sqlite",
	"database.dsn":            "file:membergraph.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	"database.max-open-conns": 10,
	"loader.max-batch":        0,
	"log.level":               "info",
	"log.format":              "json",
	"otel.endpoint":           "",
	"otel.service":            "membergraph",
	"metrics.addr":            "",
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Flags registers the serve flags on fs. Flag names are the config keys.
func Flags(fs *pflag.FlagSet) {
	fs.String("server.addr", defaults["server.addr"].(string), "HTTP listen address")
	fs.Duration("server.timeout", defaults["server.timeout"].(time.Duration), "Per-request timeout")
	fs.Bool("server.pretty", false, "Pretty-print JSON responses")
	fs.Int64("server.max-body-bytes", defaults["server.max-body-bytes"].(int64), "Maximum request body size; 0 is unlimited")
	fs.StringSlice("server.cors-origins", nil, "Allowed CORS origins; repeatable")
	fs.Int("graphql.max-depth", defaults["graphql.max-depth"].(int), "Maximum field nesting depth; 0 disables the check")
	fs.Int("loader.max-batch", 0, "Maximum keys per loader batch; 0 is unlimited")
	fs.String("metrics.addr", "", "Prometheus listen address; empty disables it")
	fs.String("otel.endpoint", "", "OTLP collector endpoint")
	fs.String("otel.service", defaults["otel.service"].(string), "OpenTelemetry service name")
}

// DatabaseFlags registers the flags shared by every command touching the
// database.
func DatabaseFlags(fs *pflag.FlagSet) {
	fs.String("database.driver", defaults["database.driver"].(string), "Database driver: sqlite, postgres, mysql or memory")
	fs.String("database.dsn", defaults["database.dsn"].(string), "Database connection string")
	fs.Int("database.max-open-conns", defaults["database.max-open-conns"].(int), "Connection pool size")
	fs.String("log.level", defaults["log.level"].(string), "Log level: debug, info, warn or error")
	fs.String("log.format", defaults["log.format"].(string), "Log format: json or console")
}

// Load reads an optional config file and builds a Config from v.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}
	c := &Config{
		Server: Server{
			Addr:         v.GetString("server.addr"),
			Timeout:      v.GetDuration("server.timeout"),
			Pretty:       v.GetBool("server.pretty"),
			MaxBodyBytes: v.GetInt64("server.max-body-bytes"),
			CORSOrigins:  v.GetStringSlice("server.cors-origins"),
		},
		GraphQL: GraphQL{MaxDepth: v.GetInt("graphql.max-depth")},
		Database: Database{
			Driver:       v.GetString("database.driver"),
			DSN:          v.GetString("database.dsn"),
			MaxOpenConns: v.GetInt("database.max-open-conns"),
		},
		Loader: Loader{MaxBatch: v.GetInt("loader.max-batch")},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Otel: Otel{
			Endpoint: v.GetString("otel.endpoint"),
			Service:  v.GetString("otel.service"),
		},
		Metrics: Metrics{Addr: v.GetString("metrics.addr")},
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("config: database.driver %q: want sqlite, postgres, mysql or memory", c.Database.Driver)
	}
	if c.GraphQL.MaxDepth < 0 {
		return fmt.Errorf("config: graphql.max-depth must not be negative")
	}
	if c.Loader.MaxBatch < 0 {
		return fmt.Errorf("config: loader.max-batch must not be negative")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("config: server.timeout must not be negative")
	}
	return nil
}
