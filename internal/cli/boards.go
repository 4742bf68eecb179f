package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stormboard/stormboard/pkg/board"
)

// boardsCommand creates the boards management command.
func (c *CLI) boardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Manage stored board snapshots",
	}

	cmd.AddCommand(c.boardsListCommand())
	cmd.AddCommand(c.boardsShowCommand())
	cmd.AddCommand(c.boardsExportCommand())
	cmd.AddCommand(c.boardsImportCommand())
	cmd.AddCommand(c.boardsDeleteCommand())

	return cmd
}

// boardsListCommand creates the "boards list" subcommand.
func (c *CLI) boardsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := newStore()
			if err != nil {
				return fmt.Errorf("open board store: %w", err)
			}
			defer boards.Close()

			names, err := boards.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No stored boards")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

// boardsShowCommand creates the "boards show" subcommand.
func (c *CLI) boardsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored board as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := newStore()
			if err != nil {
				return fmt.Errorf("open board store: %w", err)
			}
			defer boards.Close()

			b, err := boards.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := board.Marshal(b)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

// boardsExportCommand creates the "boards export" subcommand.
func (c *CLI) boardsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Export a stored board to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := newStore()
			if err != nil {
				return fmt.Errorf("open board store: %w", err)
			}
			defer boards.Close()

			b, err := boards.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = args[0] + ".json"
			}
			if err := board.WriteFile(path, b); err != nil {
				return err
			}
			printSuccess("Exported board %q", args[0])
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.json)")
	return cmd
}

// boardsImportCommand creates the "boards import" subcommand.
func (c *CLI) boardsImportCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import [board.json]",
		Short: "Import a board file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := board.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load board %s: %w", args[0], err)
			}

			target := name
			if target == "" {
				target = b.InstanceName
			}
			b.InstanceName = target

			boards, err := newStore()
			if err != nil {
				return fmt.Errorf("open board store: %w", err)
			}
			defer boards.Close()

			if err := boards.Put(cmd.Context(), b); err != nil {
				return err
			}
			printSuccess("Imported board %q", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "store under this name (default the board's instance name)")
	return cmd
}

// boardsDeleteCommand creates the "boards delete" subcommand.
func (c *CLI) boardsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := newStore()
			if err != nil {
				return fmt.Errorf("open board store: %w", err)
			}
			defer boards.Close()

			if err := boards.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted board %q", args[0])
			return nil
		},
	}
}
