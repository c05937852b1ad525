package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/pairwise"
	"github.com/hupe1980/pairwise/blobstore"
	"github.com/hupe1980/pairwise/blobstore/minio"
	"github.com/hupe1980/pairwise/blobstore/s3"
	"github.com/hupe1980/pairwise/codec"
	"github.com/hupe1980/pairwise/distance"
	"github.com/hupe1980/pairwise/kernel"
	"github.com/hupe1980/pairwise/matrixstore"
	"github.com/hupe1980/pairwise/progress"
	"github.com/hupe1980/pairwise/prommetrics"
	"github.com/hupe1980/pairwise/resource"
	"github.com/prometheus/client_golang/prometheus"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return invalid("workers must be >= 0, got %d", c.Engine.Workers)
	}
	if c.Engine.ProgressInterval < 0 {
		return invalid("progress_interval must be >= 0")
	}

	if _, err := c.BuildFormula(); err != nil {
		return err
	}

	if _, err := parseByteSize(c.Resources.MemoryLimit); err != nil {
		return err
	}
	if _, err := parseByteSize(c.Resources.IOLimit); err != nil {
		return err
	}
	if c.Resources.MaxConcurrentAssemblies < 0 {
		return invalid("max_concurrent_assemblies must be >= 0, got %d", c.Resources.MaxConcurrentAssemblies)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory":
	case "local":
		if c.Storage.Path == "" {
			return invalid("storage.path is required for the local backend")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return invalid("storage.bucket is required for the s3 backend")
		}
	case "minio":
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return invalid("storage.bucket and storage.endpoint are required for the minio backend")
		}
	default:
		return invalid("unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := matrixstore.ParseCompression(c.Storage.Compression); err != nil {
		return invalid("%v", err)
	}
	if _, err := matrixstore.ParsePrecision(c.Storage.Precision); err != nil {
		return invalid("%v", err)
	}
	if _, ok := codec.ByName(c.Storage.ManifestCodec); !ok {
		return invalid("unknown manifest codec %q", c.Storage.ManifestCodec)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "none", "text", "json":
	default:
		return invalid("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// BuildFormula builds the configured distance or kernel formula.
func (c *Config) BuildFormula() (pairwise.Formula, error) {
	metric, err := distance.ParseMetric(c.Formula.Metric)
	if err != nil {
		return nil, invalid("%v", err)
	}
	d, err := distance.New(metric)
	if err != nil {
		return nil, invalid("%v", err)
	}

	switch strings.ToLower(c.Formula.Kernel) {
	case "", "none":
		return d, nil
	case "exponential":
		k, err := kernel.NewExponential(d, c.Formula.Width)
		if err != nil {
			return nil, invalid("%v", err)
		}
		return k, nil
	case "gaussian":
		k, err := kernel.NewGaussian(c.Formula.Width)
		if err != nil {
			return nil, invalid("%v", err)
		}
		return k, nil
	case "linear":
		return kernel.NewLinear(), nil
	default:
		return nil, invalid("unknown kernel %q", c.Formula.Kernel)
	}
}

// ResourceController builds the configured resource controller.
func (c *Config) ResourceController() (*resource.Controller, error) {
	mem, err := parseByteSize(c.Resources.MemoryLimit)
	if err != nil {
		return nil, err
	}
	io, err := parseByteSize(c.Resources.IOLimit)
	if err != nil {
		return nil, err
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:        mem,
		MaxConcurrentAssemblies: int64(c.Resources.MaxConcurrentAssemblies),
		IOLimitBytesPerSec:      io,
	}), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, invalid("unknown log level %q", s)
	}
	return level, nil
}

// Logger builds the configured engine logger.
func (c *Config) Logger() *pairwise.Logger {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json":
		return pairwise.NewJSONLogger(level)
	case "text":
		return pairwise.NewTextLogger(level)
	default:
		return pairwise.NoopLogger()
	}
}

// EngineOptions returns the engine options for this configuration. The
// Prometheus collector is registered with reg when metrics are enabled.
func (c *Config) EngineOptions(reg prometheus.Registerer) ([]pairwise.Option, error) {
	rc, err := c.ResourceController()
	if err != nil {
		return nil, err
	}
	logger := c.Logger()

	opts := []pairwise.Option{
		pairwise.WithPrecompute(c.Engine.Precompute),
		pairwise.WithWorkers(c.Engine.Workers),
		pairwise.WithLogger(logger),
		pairwise.WithResourceController(rc),
	}
	if c.Metrics.Prometheus {
		opts = append(opts, pairwise.WithMetricsCollector(prommetrics.New(reg)))
	}
	if c.Engine.ProgressInterval > 0 {
		opts = append(opts, pairwise.WithProgress(
			progress.NewThrottled(progress.NewLog(logger.Logger, "assemble"), c.Engine.ProgressInterval),
		))
	}
	return opts, nil
}

// OpenStore opens the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.Store, error) {
	st := c.Storage
	switch strings.ToLower(st.Backend) {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "local":
		if err := os.MkdirAll(st.Path, 0o755); err != nil {
			return nil, fmt.Errorf("config: create storage dir: %w", err)
		}
		return blobstore.NewLocalStore(st.Path), nil
	case "s3":
		opts := []s3.Option{s3.WithPrefix(st.Prefix)}
		if st.Region != "" {
			opts = append(opts, s3.WithRegion(st.Region))
		}
		if st.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(st.Endpoint))
		}
		store, err := s3.New(ctx, st.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := minio.Dial(st.Endpoint, st.AccessKey, st.SecretKey, st.Secure, st.Bucket, st.Prefix)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("config: ensure bucket %s: %w", st.Bucket, err)
		}
		return store, nil
	default:
		return nil, invalid("unknown storage backend %q", st.Backend)
	}
}

// MatrixStore opens the configured blob store and wraps it in a matrixstore.Store
// that shares rc's IO limit.
func (c *Config) MatrixStore(ctx context.Context, rc *resource.Controller) (*matrixstore.Store, error) {
	blobs, err := c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	comp, err := matrixstore.ParseCompression(c.Storage.Compression)
	if err != nil {
		return nil, invalid("%v", err)
	}
	prec, err := matrixstore.ParsePrecision(c.Storage.Precision)
	if err != nil {
		return nil, invalid("%v", err)
	}
	cd, ok := codec.ByName(c.Storage.ManifestCodec)
	if !ok {
		return nil, invalid("unknown manifest codec %q", c.Storage.ManifestCodec)
	}

	return matrixstore.New(blobs,
		matrixstore.WithCompression(comp),
		matrixstore.WithPrecision(prec),
		matrixstore.WithCodec(cd),
		matrixstore.WithResourceController(rc),
		matrixstore.WithLogger(c.Logger().Logger),
	), nil
}
