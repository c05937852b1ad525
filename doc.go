// Package pairwise computes pairwise distances and kernel values between two
// collections of feature vectors.
//
// An Engine evaluates a pluggable Formula over a binding of a left-hand and a
// right-hand collection. It answers single pairs, rows, columns and batches
// of pairs, and assembles full matrices in parallel.
//
// # Quick Start
//
//	data, _ := features.NewDense(vectors)
//	h := features.Share(data)
//	defer h.Release()
//
//	e := pairwise.New(distance.MustNew(distance.MetricL2))
//	defer e.Close()
//
//	_ = e.Bind(h, h)                       // self comparison
//	d, _ := e.Evaluate(0, 1)               // one pair
//	m, _ := e.Assemble(ctx)                // full matrix, column-major
//
// # Binding
//
// Collections are shared through reference-counted features.Handle values.
// Bind retains both handles; ReplaceLHS and ReplaceRHS swap one side and hand
// the previous handle back to the caller. Bindings are checked for type and
// class compatibility; see CheckCompatibility for the exact rule.
//
// # Self Comparisons
//
// Binding the same handle on both sides makes a self comparison. Indices then
// address a mirrored range of 2n entries where index idx >= n refers to vector
// 2n-1-idx. Assemble evaluates only the upper triangle and mirrors it.
//
// # Precompute Mode
//
// With WithPrecompute(true), self comparisons are served from a triangular
// float32 cache of all n*(n+1)/2 values, built once on first use (or
// explicitly via EnsureBuilt) and discarded on every rebind. Cache memory is
// accounted against the engine's resource.Controller.
//
// # Observability
//
//	e := pairwise.New(f,
//	    pairwise.WithLogger(pairwise.NewJSONLogger(slog.LevelInfo)),
//	    pairwise.WithMetricsCollector(prommetrics.New(prometheus.DefaultRegisterer)),
//	    pairwise.WithProgress(progress.NewThrottled(progress.NewLog(slog.Default(), "matrix"), time.Second)),
//	)
//
// # Configuration and Persistence
//
// Package config builds formulas, engine options and stores from YAML and
// PAIRWISE_* environment variables. Package matrixstore saves assembled
// matrices to any blobstore.Store (local disk, memory, S3, MinIO).
//
//	cfg, _ := config.LoadFromFile("pairwise.yaml")
//	opts, _ := cfg.EngineOptions(prometheus.DefaultRegisterer)
//	store, _ := cfg.MatrixStore(ctx, nil)
//	_, _ = store.Save(ctx, "gram", m)
package pairwise
