// Package config loads engine and storage settings from YAML files and
// PAIRWISE_* environment variables.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, the
// environment.
//
//	cfg, err := config.LoadFromFile("pairwise.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	formula, _ := cfg.BuildFormula()
//	opts, _ := cfg.EngineOptions(prometheus.DefaultRegisterer)
//	e := pairwise.New(formula, opts...)
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete configuration.
type Config struct {
	Engine    EngineConfig   `yaml:"engine"`
	Formula   FormulaConfig  `yaml:"formula"`
	Resources ResourceConfig `yaml:"resources"`
	Storage   StorageConfig  `yaml:"storage"`
	Logging   LoggingConfig  `yaml:"logging"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// EngineConfig holds engine options.
type EngineConfig struct {
	// Precompute enables the triangular cache for self comparisons.
	Precompute bool `yaml:"precompute"`
	// Workers bounds assembly parallelism. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// ProgressInterval throttles progress log lines. 0 disables progress logging.
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

// FormulaConfig selects the formula.
type FormulaConfig struct {
	// Metric is a distance.ParseMetric name, e.g. "l2" or "cosine".
	Metric string `yaml:"metric"`
	// Kernel is "", "exponential", "gaussian" or "linear".
	// Empty evaluates the plain distance.
	Kernel string `yaml:"kernel"`
	// Width is the kernel width for exponential and gaussian kernels.
	Width float64 `yaml:"width"`
}

// ResourceConfig holds resource limits. Sizes accept K, M, G and T suffixes.
type ResourceConfig struct {
	MemoryLimit             string `yaml:"memory_limit"`
	MaxConcurrentAssemblies int    `yaml:"max_concurrent_assemblies"`
	IOLimit                 string `yaml:"io_limit_per_sec"`
}

// StorageConfig selects where assembled matrices are persisted.
type StorageConfig struct {
	// Backend is "memory", "local", "s3" or "minio".
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`

	// Compression is "none", "zstd" or "lz4".
	Compression string `yaml:"compression"`
	// Precision is "float64" or "float32".
	Precision string `yaml:"precision"`
	// ManifestCodec is a codec.ByName name.
	ManifestCodec string `yaml:"manifest_codec"`
}

// LoggingConfig configures the engine logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text", "json" or "none".
	Format string `yaml:"format"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Prometheus bool `yaml:"prometheus"`
}

// LoadDefaults returns the built-in defaults.
func LoadDefaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers: 0,
		},
		Formula: FormulaConfig{
			Metric: "l2",
			Width:  1,
		},
		Resources: ResourceConfig{
			MemoryLimit:             "0",
			MaxConcurrentAssemblies: 1,
			IOLimit:                 "0",
		},
		Storage: StorageConfig{
			Backend:       "local",
			Path:          "./data",
			Compression:   "zstd",
			Precision:     "float64",
			ManifestCodec: "go-json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "none",
		},
	}
}

// LoadFromEnv returns the defaults overlaid with PAIRWISE_* variables.
func LoadFromEnv() (*Config, error) {
	cfg := LoadDefaults()
	applyEnvVars(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults and applies the
// environment on top. A missing file is not an error.
func LoadFromFile(path string) (*Config, error) {
	cfg := LoadDefaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnvVars(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvVars(cfg *Config) {
	cfg.Engine.Precompute = getEnvBool("PAIRWISE_PRECOMPUTE", cfg.Engine.Precompute)
	cfg.Engine.Workers = getEnvInt("PAIRWISE_WORKERS", cfg.Engine.Workers)
	cfg.Engine.ProgressInterval = getEnvDuration("PAIRWISE_PROGRESS_INTERVAL", cfg.Engine.ProgressInterval)

	cfg.Formula.Metric = getEnv("PAIRWISE_METRIC", cfg.Formula.Metric)
	cfg.Formula.Kernel = getEnv("PAIRWISE_KERNEL", cfg.Formula.Kernel)
	cfg.Formula.Width = getEnvFloat("PAIRWISE_KERNEL_WIDTH", cfg.Formula.Width)

	cfg.Resources.MemoryLimit = getEnv("PAIRWISE_MEMORY_LIMIT", cfg.Resources.MemoryLimit)
	cfg.Resources.MaxConcurrentAssemblies = getEnvInt("PAIRWISE_MAX_ASSEMBLIES", cfg.Resources.MaxConcurrentAssemblies)
	cfg.Resources.IOLimit = getEnv("PAIRWISE_IO_LIMIT", cfg.Resources.IOLimit)

	cfg.Storage.Backend = getEnv("PAIRWISE_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = getEnv("PAIRWISE_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.Bucket = getEnv("PAIRWISE_STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Prefix = getEnv("PAIRWISE_STORAGE_PREFIX", cfg.Storage.Prefix)
	cfg.Storage.Region = getEnv("PAIRWISE_STORAGE_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = getEnv("PAIRWISE_STORAGE_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKey = getEnv("PAIRWISE_STORAGE_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("PAIRWISE_STORAGE_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.Secure = getEnvBool("PAIRWISE_STORAGE_SECURE", cfg.Storage.Secure)
	cfg.Storage.Compression = getEnv("PAIRWISE_STORAGE_COMPRESSION", cfg.Storage.Compression)
	cfg.Storage.Precision = getEnv("PAIRWISE_STORAGE_PRECISION", cfg.Storage.Precision)
	cfg.Storage.ManifestCodec = getEnv("PAIRWISE_MANIFEST_CODEC", cfg.Storage.ManifestCodec)

	cfg.Logging.Level = getEnv("PAIRWISE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("PAIRWISE_LOG_FORMAT", cfg.Logging.Format)

	cfg.Metrics.Prometheus = getEnvBool("PAIRWISE_PROMETHEUS", cfg.Metrics.Prometheus)
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// parseByteSize parses sizes like "512M" or "2GB". "", "0" and "unlimited" are 0.
func parseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
	case strings.HasSuffix(s, "T"):
		multiplier = 1 << 40
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("%w: bad size %q", ErrInvalidConfig, s)
	}
	return val * multiplier, nil
}
