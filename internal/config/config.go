package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, API authentication,
// the scanner itself, and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default minimum log level when set
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:"127.0.0.1:8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request.
		// Scans of large trees are slow, so the default is generous.
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"5m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// EnablePprof mounts the runtime profiler under /debug/pprof/
		EnablePprof bool `env:"HTTP_ENABLE_PPROF" env-default:"false" yaml:"enablePprof"`
		// AllowedOrigin is the value of Access-Control-Allow-Origin
		AllowedOrigin string `env:"HTTP_ALLOWED_ORIGIN" env-default:"*" yaml:"allowedOrigin"`
	} `yaml:"http"`

	// JWT holds the RSA key pair used to sign (jwt command) and verify (API) tokens
	JWT struct {
		// PublicKey is a PEM encoded RSA public key. API authentication is disabled when empty.
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is a PEM encoded RSA private key used by the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Scanner configures discovery and digesting
	Scanner struct {
		// Workers is the size of the digest worker pool. Zero means GOMAXPROCS.
		Workers int `env:"SCANNER_WORKERS" env-default:"0" yaml:"workers"`
		// Extensions is the allow-list of executable-class extensions
		Extensions []string `env:"SCANNER_EXTENSIONS" env-default:"exe,dll" env-separator:"," yaml:"extensions"`
		// CaseInsensitiveExtensions makes extension matching ignore case
		CaseInsensitiveExtensions bool `env:"SCANNER_CASE_INSENSITIVE_EXTENSIONS" env-default:"false" yaml:"caseInsensitiveExtensions"` //nolint: lll
		// Algorithm is the digest function; blocklists must be built with the same one
		Algorithm string `env:"SCANNER_ALGORITHM" env-default:"sha256" yaml:"algorithm"`
		// BufferSize is the read buffer used while digesting, in bytes
		BufferSize int `env:"SCANNER_BUFFER_SIZE" env-default:"8192" yaml:"bufferSize"`
		// BlocklistPath is used when a request does not name a blocklist
		BlocklistPath string `env:"SCANNER_BLOCKLIST_PATH" yaml:"blocklistPath"`
	} `yaml:"scanner"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: the configuration is then read from the
// environment alone, so the CLI works without any config file.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
