package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/resy-asks/internal/contexts"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage credential contexts (needs DATABASE_URL and CRED_ENC_KEY)",
	}
	cmd.AddCommand(newContextAddCmd())
	cmd.AddCommand(newContextListCmd())
	cmd.AddCommand(newContextToggleCmd("enable", true))
	cmd.AddCommand(newContextToggleCmd("disable", false))
	cmd.AddCommand(newContextHistoryCmd())
	return cmd
}

func newContextAddCmd() *cobra.Command {
	var (
		name      string
		token     string
		askSource string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Create or update a context",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			repo, err := a.contexts(ctx)
			if err != nil {
				return err
			}
			if token == "" {
				token = os.Getenv("RESY_AUTH_TOKEN")
			}
			id, err := repo.Save(ctx, contexts.Context{Name: name, AuthToken: token, AskSource: askSource})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved context id=%d name=%q\n", id, name)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "context name")
	c.Flags().StringVar(&token, "token", "", "resy auth token; defaults to RESY_AUTH_TOKEN")
	c.Flags().StringVar(&askSource, "asks", "", "ask source: sheet export URL, .tsv, .yaml or .xlsx file")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("asks")
	return c
}

func newContextListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			repo, err := a.contexts(ctx)
			if err != nil {
				return err
			}
			cs, err := repo.List(ctx)
			if err != nil {
				return err
			}
			for _, c := range cs {
				fmt.Fprintf(cmd.OutOrStdout(), "id=%d name=%q enabled=%t asks=%s updated=%s\n",
					c.ID, c.Name, c.Enabled, c.AskSource, c.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newContextToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " NAME",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			repo, err := a.contexts(ctx)
			if err != nil {
				return err
			}
			if err := repo.SetEnabled(ctx, args[0], enabled); err != nil {
				return fmt.Errorf("context %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", verb, args[0])
			return nil
		},
	}
}

func newContextHistoryCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history NAME",
		Short: "Show recent passes of a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			repo, err := a.contexts(ctx)
			if err != nil {
				return err
			}
			runs, err := repo.RecentPasses(ctx, args[0], limit)
			if err != nil {
				return err
			}
			for _, p := range runs {
				line := fmt.Sprintf("%s run=%s asks=%d skipped=%d satisfied=%d booked=%d booking_failed=%d no_match=%d fetch_failed=%d",
					p.StartedAt.Format(time.RFC3339), p.RunID, p.Asks, p.Invalid+p.Expired, p.Satisfied, p.Booked, p.BookingFailed, p.NoMatch, p.FetchFailed)
				if p.Error != nil {
					line += " error=" + *p.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "number of passes")
	return c
}
