package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sldlayout/pkg/cache"
	"github.com/matzehuels/sldlayout/pkg/errors"
	sldio "github.com/matzehuels/sldlayout/pkg/io"
	"github.com/matzehuels/sldlayout/pkg/observability"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to share the caching logic.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options, each run working on its own diagram.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Hooks receives stage events. When nil the globally registered
	// observability hooks are used.
	Hooks observability.StageHooks
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID)
	result := &Result{
		RunID:     runID,
		InputHash: cache.Hash(opts.Input),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	d, err := r.Decode(ctx, opts.Input)
	if err != nil {
		return nil, err
	}
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.Panels = len(d.Panels())
	logger.Debug("decoded topology", "panels", result.Stats.Panels, "duration", result.Stats.DecodeTime)

	laidOut := false
	ensureLayout := func() error {
		if laidOut {
			return nil
		}
		if err := r.layout(ctx, d, *opts.Params, logger); err != nil {
			return err
		}
		laidOut = true
		return nil
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	layoutKey := r.Keyer.LayoutKey(result.InputHash, opts.LayoutKeyOpts())
	if data, hit := r.cacheGet(ctx, "layout", layoutKey, opts.Refresh, logger); hit {
		result.Layout = data
		result.CacheInfo.LayoutHit = true
	} else {
		if err := ensureLayout(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := sldio.WriteLayout(d, runID, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
		}
		result.Layout = buf.Bytes()
		r.cacheSet(ctx, "layout", layoutKey, result.Layout, cache.TTLLayout, logger)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed layout",
		"panels", result.Stats.Panels,
		"cached", result.CacheInfo.LayoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit := r.cachedArtifacts(ctx, result.InputHash, opts, logger)
		if !hit {
			if err := ensureLayout(); err != nil {
				return nil, err
			}
			err := r.stage(ctx, StageRender, func() error {
				var err error
				artifacts, err = Render(ctx, d, opts.Formats, opts.Detailed)
				return err
			})
			if err != nil {
				return nil, err
			}
			for format, data := range artifacts {
				key := r.Keyer.ArtifactKey(result.InputHash, opts.ArtifactKeyOpts(format))
				r.cacheSet(ctx, "artifact", key, data, cache.TTLArtifact, logger)
			}
		}
		result.Artifacts = artifacts
		result.CacheInfo.RenderHit = hit
		result.Stats.RenderTime = time.Since(renderStart)

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	if laidOut {
		result.Diagram = d
		result.Stats.Nodes, result.Stats.Cells = countCells(d)
	}
	return result, nil
}

// LayoutDiagram lays out an already decoded diagram and returns its JSON
// layout. No cache is involved.
func (r *Runner) LayoutDiagram(ctx context.Context, d *sld.Diagram, p params.Parameters) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	if err := r.layout(ctx, d, p, r.Logger.With("run", runID)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sldio.WriteLayout(d, runID, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return buf.Bytes(), nil
}

func (r *Runner) cachedArtifacts(ctx context.Context, inputHash string, opts Options, logger *log.Logger) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
		data, hit := r.cacheGet(ctx, "artifact", key, opts.Refresh, logger)
		if !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) cacheGet(ctx context.Context, keyType, key string, refresh bool, logger *log.Logger) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) stageHooks() observability.StageHooks {
	if r.Hooks != nil {
		return r.Hooks
	}
	return observability.Stages()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
