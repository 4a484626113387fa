package cli

import (
	"github.com/spf13/cobra"
)

func newLayoutCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show and change the dashboard layout",
		Long: `The layout decides which dashboard sections are computed and in what order.

Example:
  journal layout show
  journal layout hide monthly
  journal layout show-widget monthly --order 0
  journal layout theme dark
  journal layout reset`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := e.service.Layout(cmd.Context())
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), layout)
		},
	}

	var column, order int
	widget := func(use, short string, visible bool) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " <widget>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				layout, err := e.service.SetWidget(cmd.Context(), args[0], visible, column, order)
				if err != nil {
					return err
				}
				return e.write(cmd.OutOrStdout(), layout)
			},
		}
		c.Flags().IntVar(&column, "column", -1, "column to move the widget to")
		c.Flags().IntVar(&order, "order", -1, "position within the dashboard")
		return c
	}

	theme := &cobra.Command{
		Use:   "theme <light|dark>",
		Short: "Set the dashboard theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := e.service.SetTheme(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), layout)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := e.service.ResetLayout(cmd.Context())
			if err != nil {
				return err
			}
			return e.write(cmd.OutOrStdout(), layout)
		},
	}

	cmd.AddCommand(
		show,
		widget("show-widget", "Show a widget, optionally moving it", true),
		widget("hide", "Hide a widget", false),
		theme,
		reset,
	)
	return cmd
}
