package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/pipeline"
)

// renderCommand creates the render command for generating diagrams from a
// board that has already been computed.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [board.json|name]",
		Short: "Render diagrams from a computed board",
		Long: `Render diagrams from a computed board.

The render command takes a board, either a board.json file (produced by
'layout') or the name of a stored board, and renders it to DOT, SVG, or PNG.
The board already contains all positioning information, so this step is
purely about producing output artifacts.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if formatsStr == "" {
				opts.Formats = []string{pipeline.FormatSVG}
			}
			for _, f := range opts.Formats {
				if !pipeline.ValidFormats[f] {
					return fmt.Errorf("invalid format: %s (must be 'json', 'dot', 'svg', or 'png')", f)
				}
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.ProducesEdges, "produces", false, "show produced-event edges")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show item descriptions")

	return cmd
}

// runRender loads the board and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	b, err := c.loadBoard(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering board...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, b, opts)
	spinner.Stop()
	if err != nil {
		printError("Rendering failed")
		return err
	}

	printSuccess("Rendered board %q", b.InstanceName)
	printBoardStats(len(b.Items), len(b.Connections), cacheHit)

	return writeArtifacts(artifacts, opts.Formats, renderBase(input), output)
}

// loadBoard reads the board from a JSON file when input looks like a path,
// otherwise from the board store by name.
func (c *CLI) loadBoard(ctx context.Context, input string) (*board.Board, error) {
	if strings.HasSuffix(input, ".json") || fileExists(input) {
		b, err := board.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("load board %s: %w", input, err)
		}
		return b, nil
	}

	boards, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("open board store: %w", err)
	}
	defer boards.Close()
	return boards.Get(ctx, input)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// renderBase makes a usable default output base for stored board names,
// which have no file extension to strip.
func renderBase(input string) string {
	if strings.HasSuffix(input, ".json") {
		return input
	}
	return input + ".json"
}
