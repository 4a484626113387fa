package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRiskCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Position sizing against a stop",
	}

	var riskAmount, entry, stop float64
	size := &cobra.Command{
		Use:   "size",
		Short: "Whole-share size that risks a fixed amount between entry and stop",
		Long: `Returns the number of whole shares that loses --risk if the stop is hit.
MAX_POSITION_RISK caps the amount risked when it is set.

Example:
  journal risk size --risk 250 --entry 12.40 --stop 11.80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := e.service.PositionSize(riskAmount, entry, stop)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.0f shares (%s %s deployed)\n", shares, money(shares*entry), e.cfg.BaseCurrency)
			return nil
		},
	}
	size.Flags().Float64Var(&riskAmount, "risk", 0, "amount to risk")
	size.Flags().Float64Var(&entry, "entry", 0, "entry price")
	size.Flags().Float64Var(&stop, "stop", 0, "stop price")
	for _, name := range []string{"risk", "entry", "stop"} {
		_ = size.MarkFlagRequired(name)
	}

	cmd.AddCommand(size)
	return cmd
}
