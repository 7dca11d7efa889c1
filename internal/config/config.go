package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Admin    AdminConfig    `yaml:"admin"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Admin-Token"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	CallbackPath    string        `yaml:"callback_path"    env:"SERVER_CALLBACK_PATH"    env-default:"/callback"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	// Zero: a request queued behind the review lock must not lose its
	// connection while its text is still being ingested.
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"0s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// AnalyzerConfig describes how to launch the two analyzer processes. Both
// run the same command; the compiled artifact path is appended to Args.
type AnalyzerConfig struct {
	Command     string `yaml:"command"      env:"ANALYZER_COMMAND"      env-default:"lt-proc"`
	ArgsRaw     string `yaml:"args"         env:"ANALYZER_ARGS"         env-default:"-z"`
	PrimaryPath string `yaml:"primary_path" env:"ANALYZER_PRIMARY_PATH" env-required:"true"`
	GuesserPath string `yaml:"guesser_path" env:"ANALYZER_GUESSER_PATH" env-required:"true"`
}

// Args splits ArgsRaw on whitespace.
func (c AnalyzerConfig) Args() []string {
	return strings.Fields(c.ArgsRaw)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// AdminConfig guards the admin endpoints. An empty token leaves them open.
type AdminConfig struct {
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}
