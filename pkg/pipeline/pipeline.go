// Package pipeline runs the single-line diagram layout end to end.
//
// This package implements the decode → layout → render pipeline used by
// the CLI and the layout server. By centralizing this logic, both entry
// points share the same stage order, caching and instrumentation.
//
// # Architecture
//
// The layout itself runs six stages, per panel then for the whole diagram:
//
//  1. cells: classify nodes into cells and build their block trees
//  2. position: resolve busbar rows, columns and cell orders
//  3. subsections: partition the panel and settle intern cell shapes
//  4. placement: structural positions of busbars and blocks
//  5. coordinates + routing: panel geometry, panel placement and the
//     two-pass snake-line routing
//
// Each stage reports to the registered [observability.StageHooks] and logs
// its progress at debug level.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   topologyJSON,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Layout)
//
// Run the layout on an already built diagram:
//
//	err := runner.Layout(ctx, d, params.Default())
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/cache"
	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Stage names reported to hooks and logs.
const (
	StageDecode      = "decode"
	StageCells       = "cells"
	StagePosition    = "position"
	StageSubsections = "subsections"
	StagePlacement   = "placement"
	StageRouting     = "routing"
	StageRender      = "render"
)

// Format constants for debug artifacts.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Input is the JSON topology document.
	Input []byte `json:"-"`

	// Params overrides the default layout parameters.
	Params *params.Parameters `json:"params,omitempty"`

	// Formats lists the debug artifacts to render besides the layout.
	Formats []string `json:"formats,omitempty"`

	// Detailed adds block trees to the debug artifacts.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if o.Params == nil {
		p := params.Default()
		o.Params = &p
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ParamsHash: paramsHash(*o.Params),
		Strategy:   o.Params.PositionStrategy,
	}
}

// ArtifactKeyOpts returns cache key options for a debug artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     fmt.Sprintf("%s/detailed=%t", format, o.Detailed),
		ParamsHash: paramsHash(*o.Params),
		Strategy:   o.Params.PositionStrategy,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs. A cached layout keeps the run ID
	// of the run that computed it.
	RunID string

	// InputHash is the content hash of the input document.
	InputHash string

	// Diagram is the laid out diagram. It is nil when the layout and every
	// artifact came from the cache.
	Diagram *sld.Diagram

	// Layout is the JSON layout document.
	Layout []byte

	// Artifacts contains rendered debug views keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Panels     int
	Nodes      int
	Cells      int
	DecodeTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}
