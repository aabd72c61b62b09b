package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/hos"
)

func newRulesCmd(loadEngine func() (*hos.Engine, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active Hours-of-Service rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := loadEngine()
			if err != nil {
				return err
			}
			r := engine.Rules()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models.NewRules(r))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := []struct {
				name  string
				value float64
				unit  string
			}{
				{"daily driving limit", r.DailyDrivingLimit, "h"},
				{"daily duty limit", r.DailyDutyLimit, "h (not enforced)"},
				{"cycle limit", r.CycleLimit, "h"},
				{"break after", r.BreakTriggerHours, "h driving"},
				{"break duration", r.BreakDuration, "h"},
				{"off-duty duration", r.OffDutyDuration, "h"},
				{"fuel stop interval", r.FuelStopIntervalMiles, "mi"},
				{"fuel stop duration", r.FuelStopDuration, "h"},
				{"shift start", r.ShiftStartHour, "h"},
			}
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%g\t%s\n", row.name, row.value, row.unit)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rules as JSON")

	return cmd
}
