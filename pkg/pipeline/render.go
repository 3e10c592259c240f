package pipeline

import (
	"context"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/render/dot"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Render generates the debug views of a classified diagram.
func Render(ctx context.Context, d *sld.Diagram, formats []string, detailed bool) (map[string][]byte, error) {
	src := dot.DiagramToDOT(d, dot.Options{Detailed: detailed})
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(src)
		case FormatSVG:
			data, err = dot.RenderSVG(ctx, src)
		case FormatPNG:
			data, err = dot.RenderPNG(ctx, src)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
