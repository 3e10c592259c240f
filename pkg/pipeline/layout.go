package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/cells"
	"github.com/matzehuels/sldlayout/pkg/sld/coord"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
	"github.com/matzehuels/sldlayout/pkg/sld/position/clustering"
	"github.com/matzehuels/sldlayout/pkg/sld/position/free"
	"github.com/matzehuels/sldlayout/pkg/sld/snakeline"
)

// Warning kinds reported to the stage hooks.
const (
	WarnUnhandledPattern = "unhandled_pattern"
	WarnUndefinedBlock   = "undefined_block"
)

var finders = map[string]func() position.Finder{
	params.StrategyClustering: func() position.Finder { return clustering.New() },
	params.StrategyFree:       func() position.Finder { return free.New() },
}

// NewFinder returns the position strategy with the given name.
func NewFinder(name string) (position.Finder, error) {
	mk, ok := finders[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown position strategy %q", name)
	}
	return mk(), nil
}

// Layout runs every layout stage on d, in place.
func (r *Runner) Layout(ctx context.Context, d *sld.Diagram, p params.Parameters) error {
	return r.layout(ctx, d, p, r.Logger)
}

func (r *Runner) layout(ctx context.Context, d *sld.Diagram, p params.Parameters, logger *log.Logger) error {
	if d == nil {
		return errors.New(errors.ErrCodePrecondition, "nil diagram")
	}
	finder, err := NewFinder(p.PositionStrategy)
	if err != nil {
		return err
	}

	for _, g := range d.Panels() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.layoutPanel(ctx, g, p, finder, logger); err != nil {
			return err
		}
	}

	return r.stage(ctx, StageRouting, func() error {
		return snakeline.Run(d, p, coord.VerticalStack{Spacing: p.PanelSpacing}, logger)
	})
}

func (r *Runner) layoutPanel(ctx context.Context, g *sld.Graph, p params.Parameters, finder position.Finder, logger *log.Logger) error {
	logger = logger.With("panel", g.ID)

	if err := r.stage(ctx, StageCells, func() error {
		return cells.Detect(g, p, logger)
	}); err != nil {
		return err
	}
	r.reportWarnings(ctx, g)

	var ordered []*position.Slot
	if err := r.stage(ctx, StagePosition, func() error {
		var err error
		ordered, err = finder.Find(g, p, logger)
		return err
	}); err != nil {
		return err
	}

	var subs []*position.Subsection
	if err := r.stage(ctx, StageSubsections, func() error {
		var err error
		subs, err = position.Partition(g, ordered, p, logger)
		return err
	}); err != nil {
		return err
	}

	return r.stage(ctx, StagePlacement, func() error {
		position.Place(g, subs)
		logger.Debug("placed", "subsections", len(subs), "hspan", g.HSpan, "rows", g.MaxRow)
		return nil
	})
}

// stage times fn and reports it to the stage hooks.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) error {
	hooks := r.stageHooks()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	hooks.OnStageComplete(ctx, name, time.Since(start), err)
	return err
}

// reportWarnings forwards the recovered classification anomalies of g.
func (r *Runner) reportWarnings(ctx context.Context, g *sld.Graph) {
	hooks := r.stageHooks()
	for _, c := range g.Cells() {
		if c.Kind == sld.InternCell && c.Shape == sld.ShapeUnhandled {
			hooks.OnWarning(ctx, StageCells, WarnUnhandledPattern)
		}
		if c.Root == nil {
			continue
		}
		c.Root.Walk(func(b *sld.Block) {
			if b.Kind == sld.Undefined {
				hooks.OnWarning(ctx, StageCells, WarnUndefinedBlock)
			}
		})
	}
}
