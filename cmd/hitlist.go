package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/engine"
)

func newHitListCmd() *cobra.Command {
	var (
		venueNames []string
		startDay   string
		endDay     string
		fromTime   string
		toTime     string
		seats      int
	)

	c := &cobra.Command{
		Use:   "hitlist",
		Short: "List open slots for venues over a range of days without booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.client()
			if err != nil {
				return err
			}

			today := dates.Today()
			start, err := dates.ParseDay(startDay, today)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end := start
			if endDay != "" {
				if end, err = dates.ParseDay(endDay, today); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			window := dates.Window{}
			if window.Start, err = dates.ParseClock(fromTime); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if window.End, err = dates.ParseClock(toTime); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if !window.Valid() {
				return fmt.Errorf("--from must not be after --to")
			}

			var days []time.Time
			for _, tok := range dates.DaysBetween(start, end) {
				d, _ := dates.TokenToDate(tok)
				days = append(days, d)
			}
			if len(days) == 0 {
				return fmt.Errorf("--end must not be before --start")
			}

			out := cmd.OutOrStdout()
			for _, e := range engine.HitList(ctx, client, a.registry, a.log, venueNames, days, seats, window) {
				fmt.Fprintf(out, "%s (%s)\n", e.VenueName, e.VenueID)
				for _, s := range e.Slots {
					fmt.Fprintf(out, "  %s %s %s\n", dates.DayToken(s.Day), s.Time, s.Kind)
				}
			}
			return nil
		},
	}

	c.Flags().StringSliceVar(&venueNames, "venues", nil, "venue names, comma separated")
	c.Flags().StringVar(&startDay, "start", "", "first day (YYYY-MM-DD or weekday name)")
	c.Flags().StringVar(&endDay, "end", "", "last day, defaults to --start")
	c.Flags().StringVar(&fromTime, "from", "17:00", "window start HH:MM")
	c.Flags().StringVar(&toTime, "to", "22:00", "window end HH:MM")
	c.Flags().IntVar(&seats, "seats", 2, "party size")

	_ = c.MarkFlagRequired("venues")
	_ = c.MarkFlagRequired("start")
	return c
}
