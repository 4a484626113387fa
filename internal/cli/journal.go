package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import journal rows from CSV",
		Long: `Reads a journal CSV and saves every valid row.

Required columns: ticker, status, entry_date, entry_price.
Rows that cannot be parsed are reported and skipped; rows whose id is
already in the journal replace the stored copy.

Example:
  journal import trades.csv
  journal import - < trades.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			report, err := e.service.ImportPositions(cmd.Context(), in)
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), report)
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the journal as CSV",
		Long: `Writes every stored position as CSV, to a file or to stdout.

Example:
  journal export backup.csv
  journal export > backup.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				_, err := e.service.ExportPositions(cmd.Context(), cmd.OutOrStdout())
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			n, err := e.service.ExportPositions(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d positions to %s\n", n, args[0])
			return nil
		},
	}
}

func newPositionsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "positions",
		Aliases: []string{"pos"},
		Short:   "List, show and delete journal positions",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List positions, newest entry first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := e.service.ListPositions(cmd.Context(), status)
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), positions)
		},
	}
	list.Flags().StringVar(&status, "status", "all", "open, closed or all")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := e.service.GetPosition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), pos)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.service.DeletePosition(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
