package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/hos"
)

type scheduleOptions struct {
	distance  float64
	duration  float64
	cycleUsed float64
	json      bool
	timeline  bool
}

func newScheduleCmd(loadEngine func() (*hos.Engine, error)) *cobra.Command {
	var opts scheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the driving schedule for a trip",
		Example: `  eldplan schedule --distance 1500 --duration 25 --cycle-used 10
  eldplan schedule --distance 225.5 --duration 4.2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := loadEngine()
			if err != nil {
				return err
			}

			schedule, err := engine.Plan(hos.TripRequest{
				TotalDistanceMiles:    opts.distance,
				TotalDurationHours:    opts.duration,
				CurrentCycleUsedHours: opts.cycleUsed,
			})
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), models.NewSchedule(schedule))
			}
			return printSchedule(cmd.OutOrStdout(), opts, schedule)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.distance, "distance", 0, "total trip distance in miles")
	f.Float64Var(&opts.duration, "duration", 0, "total driving time in hours")
	f.Float64Var(&opts.cycleUsed, "cycle-used", 0, "hours already used in the current cycle")
	f.BoolVar(&opts.json, "json", false, "print the schedule as JSON")
	f.BoolVar(&opts.timeline, "timeline", false, "print each driving day's timeline")
	_ = cmd.MarkFlagRequired("distance")
	_ = cmd.MarkFlagRequired("duration")
	cmd.MarkFlagsMutuallyExclusive("json", "timeline")

	return cmd
}

func printSchedule(out io.Writer, opts scheduleOptions, s *hos.Schedule) error {
	fmt.Fprintf(out, "Trip: %.2f mi, %.2f h driving, %.2f h cycle used\n",
		opts.distance, opts.duration, opts.cycleUsed)
	fmt.Fprintf(out, "Days needed: %d  Available cycle: %.2f h  Daily driving: %.2f h\n\n",
		s.DaysNeeded, s.AvailableCycleHours, s.AvailableDailyDriving)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tENTRY\tHOURS\tMILES\tON-DUTY\tBREAKS\tFUEL STOPS")
	for _, e := range s.Entries() {
		switch e.Kind {
		case hos.EntryDriving:
			d := e.Day
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\t%d\t%d\n",
				d.DayIndex, e.Kind, d.DrivingHours, d.DistanceMiles, d.TotalOnDutyHours, len(d.Breaks), len(d.FuelStops))
		case hos.EntryOffDuty:
			o := e.OffDuty
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t-\t-\t-\t-\n", o.DayIndex, e.Kind, o.DurationHours)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.timeline {
		for i := range s.Days {
			printTimeline(out, &s.Days[i])
		}
	}

	c := s.Compliance
	verdict := "COMPLIANT"
	if !c.IsCompliant {
		verdict = "NOT COMPLIANT"
	}
	_, err := fmt.Fprintf(out, "\nCompliance: %s (%.2f of %.2f cycle hours used, %.2f remaining)\n",
		verdict, c.TotalCycleHoursUsed, c.CycleLimit, c.RemainingCycleHours)
	return err
}

func printTimeline(out io.Writer, d *hos.DetailedDayPlan) {
	fmt.Fprintf(out, "\nDay %d timeline\n", d.DayIndex)
	for _, ev := range d.Timeline {
		fmt.Fprintf(out, "  %s - %s  %-10s %s\n",
			clock(ev.StartHour), clock(ev.EndHour), ev.Kind, ev.Description)
	}
}

// clock formats an hour offset as HH:MM, wrapping past midnight.
func clock(h float64) string {
	minutes := int(h*60+0.5) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
