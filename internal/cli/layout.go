package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/pipeline"
)

// layoutCommand creates the layout command for computing boards from concepts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		boardName  string
		priorPath  string
		save       bool
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [concept.json]",
		Short: "Compute a board layout from a concept model",
		Long: `Compute a board layout from a concept model.

The layout command reads a concept JSON file, repairs it into a valid model,
and computes a positioned EventStorming board. When a prior snapshot is given
(--board for a stored board, --prior for a file), item identities and manual
positions are preserved across regeneration.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runLayout(cmd.Context(), args[0], opts, layoutParams{
				boardName: boardName,
				priorPath: priorPath,
				save:      save,
				output:    output,
				noCache:   noCache,
			})
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	// Merge flags
	cmd.Flags().StringVarP(&boardName, "board", "b", "", "stored board to merge against (and save target)")
	cmd.Flags().StringVar(&priorPath, "prior", "", "prior board file to merge against")
	cmd.Flags().BoolVar(&save, "save", false, "save the resulting board to the store")

	// Render flags
	cmd.Flags().BoolVar(&opts.ProducesEdges, "produces", false, "show produced-event edges in diagrams")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show item descriptions in diagrams")

	return cmd
}

// layoutParams bundles the non-pipeline flags of the layout command.
type layoutParams struct {
	boardName string
	priorPath string
	save      bool
	output    string
	noCache   bool
}

// runLayout loads the concept and prior, executes the pipeline, and writes
// the artifacts.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, params layoutParams) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read concept %s: %w", input, err)
	}
	opts.ConceptJSON = data

	prior, err := c.loadPrior(ctx, params)
	if err != nil {
		return err
	}
	opts.Prior = prior

	runner, err := c.newRunner(params.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing board...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		printError("Layout failed")
		return err
	}

	printSuccess("Computed board %q", result.Board.InstanceName)
	printBoardStats(len(result.Board.Items), len(result.Board.Connections), result.CacheInfo.LayoutHit)
	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	if params.save {
		if err := c.saveBoard(ctx, params.boardName, result.Board); err != nil {
			return err
		}
	}

	if err := writeArtifacts(result.Artifacts, opts.Formats, input, params.output); err != nil {
		return err
	}

	if !params.save && params.boardName == "" {
		printNextStep("Save for incremental merges", fmt.Sprintf("%s layout %s --board %s --save", appName, input, result.Board.InstanceName))
	}
	return nil
}

// loadPrior resolves the prior snapshot from --prior or --board. A stored
// board that does not exist yet is not an error; the layout starts fresh.
func (c *CLI) loadPrior(ctx context.Context, params layoutParams) (*board.Board, error) {
	if params.priorPath != "" {
		prior, err := board.ReadFile(params.priorPath)
		if err != nil {
			return nil, fmt.Errorf("load prior %s: %w", params.priorPath, err)
		}
		return prior, nil
	}
	if params.boardName == "" {
		return nil, nil
	}

	boards, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("open board store: %w", err)
	}
	defer boards.Close()

	prior, err := boards.Get(ctx, params.boardName)
	if errors.Is(err, errors.ErrCodeBoardNotFound) {
		c.Logger.Debug("no stored board, starting fresh", "board", params.boardName)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return prior, nil
}

// saveBoard persists the board under name, defaulting to its instance name.
func (c *CLI) saveBoard(ctx context.Context, name string, b *board.Board) error {
	if name == "" {
		name = b.InstanceName
	}
	b.InstanceName = name

	boards, err := newStore()
	if err != nil {
		return fmt.Errorf("open board store: %w", err)
	}
	defer boards.Close()

	if err := boards.Put(ctx, b); err != nil {
		return fmt.Errorf("save board %s: %w", name, err)
	}
	printInfo("Saved board %q", name)
	return nil
}

// =============================================================================
// Artifact Output
// =============================================================================

// writeArtifacts writes each requested format to disk. With a single format
// the output flag names the file directly; with multiple formats it is used
// as a base path and the format extension is appended.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := artifactPath(output, input, format, len(formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// artifactPath derives the output path for one format.
func artifactPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".concept")
	}
	base = strings.TrimSuffix(base, "."+format)
	return base + "." + format
}
