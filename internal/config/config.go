// Package config builds the CLI configuration once at start-up.
// Non-secret settings may live in a YAML file in the XDG config dir; the API key
// only ever comes from the environment (process env or a local .env file).
// The resulting Config is passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/xdg"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LookupFunc resolves a single environment key.
type LookupFunc func(string) (string, bool)

// Environment keys.
const (
	EnvAPIKey          = "DUNE_API_KEY"
	EnvBaseURL         = "DUNE_API_BASE_URL"
	EnvRequestTimeout  = "DUNE_API_REQUEST_TIMEOUT"
	EnvPerformance     = "DUNEQUERY_PERFORMANCE"
	EnvPollInterval    = "DUNEQUERY_POLL_INTERVAL"
	EnvMaxWait         = "DUNEQUERY_MAX_WAIT"
	EnvOutput          = "DUNEQUERY_OUTPUT"
	EnvReportRetention = "DUNEQUERY_REPORT_RETENTION"
	EnvLogLevel        = "DUNEQUERY_LOG_LEVEL"
	EnvMetricsFile     = "DUNEQUERY_METRICS_FILE"
)

// DefaultBaseURL is the public Dune API origin.
const DefaultBaseURL = "https://api.dune.com"

// OutputFormats lists the accepted values for Output.Format.
var OutputFormats = []string{"browser", "table", "csv", "json"}

// PerformanceTiers lists the engine sizes accepted by the execute endpoint.
var PerformanceTiers = []string{"medium", "large"}

// Config holds every setting the CLI needs for one run.
type Config struct {
	API         APIConfig
	Poll        PollConfig
	Output      OutputConfig
	LogLevel    string
	MetricsFile string
}

// APIConfig holds connection settings for the query engine.
type APIConfig struct {
	Key            string
	BaseURL        string
	RequestTimeout time.Duration
	Performance    string
}

// PollConfig controls the completion poller.
type PollConfig struct {
	Interval time.Duration
	// MaxWait bounds the total wait; zero disables the bound.
	MaxWait time.Duration
}

// OutputConfig controls result presentation.
type OutputConfig struct {
	Format string
	// ReportRetention is how long generated HTML reports are kept; zero keeps them forever.
	ReportRetention time.Duration
}

// fileConfig mirrors the YAML config file. The API key is deliberately absent.
type fileConfig struct {
	BaseURL         string `yaml:"base_url"`
	RequestTimeout  string `yaml:"request_timeout"`
	Performance     string `yaml:"performance"`
	PollInterval    string `yaml:"poll_interval"`
	MaxWait         string `yaml:"max_wait"`
	Output          string `yaml:"output"`
	ReportRetention string `yaml:"report_retention"`
	LogLevel        string `yaml:"log_level"`
	MetricsFile     string `yaml:"metrics_file"`
}

// Options selects the sources Load reads from.
type Options struct {
	// Lookup reads the process environment. Required.
	Lookup LookupFunc
	// FilePath is the YAML config file; empty skips it.
	FilePath string
	// DotEnvPath is a .env file consulted after the process environment; empty skips it.
	DotEnvPath string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			RequestTimeout: 10 * time.Second,
			Performance:    "medium",
		},
		Poll: PollConfig{
			Interval: time.Second,
			MaxWait:  30 * time.Minute,
		},
		Output: OutputConfig{
			Format:          "browser",
			ReportRetention: 24 * time.Hour,
		},
		LogLevel: "info",
	}
}

// Path returns the path to the YAML config file. The directory is not created.
func Path() (string, error) {
	dir, err := xdg.ConfigLocation()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFromEnv loads configuration from the process environment, ./.env and the
// default config file.
func LoadFromEnv() (Config, error) {
	opts := Options{Lookup: os.LookupEnv, DotEnvPath: ".env"}
	if p, err := Path(); err == nil {
		opts.FilePath = p
	}
	return Load(opts)
}

// Load builds a Config from defaults, the YAML file, the .env file and the
// environment, in increasing precedence. It does not validate.
func Load(opts Options) (Config, error) {
	if opts.Lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}
	cfg := Defaults()

	if opts.FilePath != "" {
		if err := applyFile(opts.FilePath, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.Lookup
	if opts.DotEnvPath != "" {
		values, err := godotenv.Read(opts.DotEnvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, apperrors.Wrap(apperrors.KindConfiguration, "read "+opts.DotEnvPath, err)
		}
		lookup = WithFallback(lookup, values)
	}

	if err := applyEnv(lookup, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize lower-cases the enumerated settings so "TABLE" and "table" are the
// same choice. Call it again after overlaying flags.
func (c *Config) Normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.API.Performance = strings.ToLower(strings.TrimSpace(c.API.Performance))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// WithFallback returns a LookupFunc that consults primary first and then values.
func WithFallback(primary LookupFunc, values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}
}

// Validate checks the configuration is usable for a query run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return apperrors.New(apperrors.KindConfiguration, EnvAPIKey+" is not set (export it or add it to .env)")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return apperrors.New(apperrors.KindConfiguration, "API base URL is empty")
	}
	if c.API.RequestTimeout <= 0 {
		return apperrors.New(apperrors.KindConfiguration, "request timeout must be positive")
	}
	if c.Poll.Interval <= 0 {
		return apperrors.New(apperrors.KindConfiguration, "poll interval must be positive")
	}
	if c.Poll.MaxWait < 0 {
		return apperrors.New(apperrors.KindConfiguration, "max wait must not be negative")
	}
	if c.Output.ReportRetention < 0 {
		return apperrors.New(apperrors.KindConfiguration, "report retention must not be negative")
	}
	if !contains(OutputFormats, c.Output.Format) {
		return apperrors.New(apperrors.KindConfiguration,
			fmt.Sprintf("unknown output %q (want one of %s)", c.Output.Format, strings.Join(OutputFormats, ", ")))
	}
	if !contains(PerformanceTiers, c.API.Performance) {
		return apperrors.New(apperrors.KindConfiguration,
			fmt.Sprintf("unknown performance tier %q (want one of %s)", c.API.Performance, strings.Join(PerformanceTiers, ", ")))
	}
	return nil
}

func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return apperrors.Wrap(apperrors.KindConfiguration, "read config file", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return apperrors.Wrap(apperrors.KindConfiguration, "parse "+path, err)
	}

	setString(&cfg.API.BaseURL, fc.BaseURL)
	setString(&cfg.API.Performance, fc.Performance)
	setString(&cfg.Output.Format, fc.Output)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.MetricsFile, fc.MetricsFile)

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &cfg.API.RequestTimeout},
		{"poll_interval", fc.PollInterval, &cfg.Poll.Interval},
		{"max_wait", fc.MaxWait, &cfg.Poll.MaxWait},
		{"report_retention", fc.ReportRetention, &cfg.Output.ReportRetention},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := parseDuration(d.raw)
		if err != nil {
			return apperrors.Wrap(apperrors.KindConfiguration, "config file "+d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(lookup LookupFunc, cfg *Config) error {
	applyString(lookup, EnvAPIKey, &cfg.API.Key)
	applyString(lookup, EnvBaseURL, &cfg.API.BaseURL)
	applyString(lookup, EnvPerformance, &cfg.API.Performance)
	applyString(lookup, EnvOutput, &cfg.Output.Format)
	applyString(lookup, EnvLogLevel, &cfg.LogLevel)
	applyString(lookup, EnvMetricsFile, &cfg.MetricsFile)

	if err := applyDuration(lookup, EnvRequestTimeout, &cfg.API.RequestTimeout); err != nil {
		return err
	}
	if err := applyDuration(lookup, EnvPollInterval, &cfg.Poll.Interval); err != nil {
		return err
	}
	if err := applyDuration(lookup, EnvMaxWait, &cfg.Poll.MaxWait); err != nil {
		return err
	}
	return applyDuration(lookup, EnvReportRetention, &cfg.Output.ReportRetention)
}

func applyString(lookup LookupFunc, key string, dst *string) {
	if raw, ok := lookup(key); ok {
		setString(dst, raw)
	}
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	v, err := parseDuration(raw)
	if err != nil {
		return apperrors.Wrap(apperrors.KindConfiguration, "invalid "+key, err)
	}
	*dst = v
	return nil
}

func setString(dst *string, raw string) {
	if v := strings.TrimSpace(raw); v != "" {
		*dst = v
	}
}

// parseDuration accepts Go durations ("1500ms") and bare integers as seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func contains(values []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
