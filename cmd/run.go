package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/resy-asks/internal/contexts"
	"github.com/example/resy-asks/internal/engine"
	"github.com/example/resy-asks/internal/scheduler"
)

func newRunCmd() *cobra.Command {
	var askSource string

	c := &cobra.Command{
		Use:   "run",
		Short: "Run one pass over every enabled context",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.store(ctx, askSource)
			if err != nil {
				return err
			}
			p := a.pipeline()
			out := cmd.OutOrStdout()
			s := &scheduler.Scheduler{
				Store: store,
				Log:   a.log,
				Pass: func(ctx context.Context, c contexts.Context) (engine.Report, error) {
					rep, err := p.Pass(ctx, c)
					if err == nil {
						printReport(out, c.Name, rep, a.registry.DisplayName)
					}
					return rep, err
				},
			}
			return s.RunOnce(ctx)
		},
	}
	c.Flags().StringVar(&askSource, "asks", "", "ask source (URL or file) for single-context runs; defaults to RESY_ASK_SOURCE")
	return c
}

// printReport writes the whole report at once so concurrent contexts do not interleave.
func printReport(w io.Writer, name string, rep engine.Report, display func(string) string) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] run=%s %s\n", name, rep.RunID, rep.String())
	for _, r := range rep.Results {
		fmt.Fprintf(&b, "  %-17s %s", r.Outcome, r.Ask.String())
		switch {
		case r.Slot != nil:
			fmt.Fprintf(&b, " -> %s", r.Slot.String())
		case r.ConflictVenueID != "":
			fmt.Fprintf(&b, " -> existing at %s", display(r.ConflictVenueID))
		}
		if r.Err != nil {
			fmt.Fprintf(&b, " (%v)", r.Err)
		}
		b.WriteString("\n")
	}
	_, _ = io.WriteString(w, b.String())
}
