package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/resy-asks/internal/resy"
)

func newPingCmd() *cobra.Command {
	var contextName string
	c := &cobra.Command{
		Use:   "ping",
		Short: "Check that a Resy auth token is accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.pingClient(ctx, contextName)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", client.Name())
			return nil
		},
	}
	c.Flags().StringVar(&contextName, "context", "", "stored context to check; defaults to RESY_AUTH_TOKEN")
	return c
}

func (a *app) pingClient(ctx context.Context, name string) (*resy.Client, error) {
	if name == "" {
		return a.client()
	}
	repo, err := a.contexts(ctx)
	if err != nil {
		return nil, err
	}
	cs, err := repo.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		if c.Name == name {
			return resy.New(resy.Credentials{APIKey: a.cfg.ResyAPIKey, AuthToken: c.AuthToken}, a.resyOptions()...), nil
		}
	}
	return nil, fmt.Errorf("no enabled context named %q", name)
}
