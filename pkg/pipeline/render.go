package pipeline

import (
	"context"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/render/nodelink"
)

// renderFormats produces every requested artifact. boardData is the board's
// canonical JSON, passed in so the JSON format does not re-serialize.
func renderFormats(ctx context.Context, b *board.Board, boardData []byte, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	nlOpts := nodelink.Options{
		ProducesEdges: opts.ProducesEdges,
		Detailed:      opts.Detailed,
	}

	// DOT is computed once and shared by the graphviz-based formats.
	dot := ""
	needDOT := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(b, nlOpts)
		}
		return dot
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			artifacts[FormatJSON] = boardData
		case FormatDOT:
			artifacts[FormatDOT] = []byte(needDOT())
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, needDOT())
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "svg render failed")
			}
			artifacts[FormatSVG] = svg
		case FormatPNG:
			png, err := nodelink.RenderPNG(ctx, needDOT())
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "png render failed")
			}
			artifacts[FormatPNG] = png
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}
	}

	return artifacts, nil
}
