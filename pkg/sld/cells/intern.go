package cells

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// organize gives an intern cell its initial shape from its root block:
//
//   - a bundle of legs is ONE_LEG
//   - a single run from one busbar to another is MAYBE_FLAT
//   - a serial block opening and closing with legs is two-sided; it is
//     MAYBE_FLAT when each side reaches one distinct busbar and the cell has
//     no other busbar, UNDEFINED otherwise until subsections settle it
//
// Anything else is UNHANDLED_PATTERN.
func organize(c *sld.Cell, p params.Parameters, logger *log.Logger) error {
	root := c.Root
	c.Direction = sld.DirTop
	switch {
	case root.Kind == sld.LegParallel:
		c.Shape = sld.ShapeOneLeg
	case root.Kind == sld.LegPrimary && len(root.Buses()) == 2:
		c.Shape = sld.ShapeMaybeFlat
	case root.Kind == sld.Serial && root.Children[0].IsLegLike() && root.Children[len(root.Children)-1].IsLegLike():
		left, right := root.Children[0], root.Children[len(root.Children)-1]
		c.Legs = [2]*sld.Block{left, right}
		lb, rb := left.Buses(), right.Buses()
		if len(lb) == 1 && len(rb) == 1 && lb[0] != rb[0] && len(c.Buses()) == 2 {
			c.Shape = sld.ShapeMaybeFlat
		} else {
			c.Shape = sld.ShapeUndefined
		}
	default:
		if p.ExceptionIfPatternNotHandled {
			return errors.New(errors.ErrCodeUnhandledPattern, "unhandled intern pattern %s", root).At(c.ID())
		}
		logger.Warn("unhandled intern cell pattern, drawing it vertically", "cell", c.ID(), "root", root.Kind)
		c.Shape = sld.ShapeUnhandled
	}
	return nil
}
