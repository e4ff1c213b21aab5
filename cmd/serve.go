package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/resy-asks/internal/scheduler"
	"github.com/example/resy-asks/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run passes every PASS_INTERVAL and serve health, metrics and pass history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.store(ctx, "")
			if err != nil {
				return err
			}
			ws := &web.Server{Log: a.log}
			if !a.cfg.SingleContext() {
				ws.DB = a.db
				ws.Passes = store.(web.PassHistory)
			}

			s := &scheduler.Scheduler{
				Store:    store,
				Pass:     a.pipeline().Pass,
				Interval: a.cfg.PassInterval,
				Log:      a.log,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := s.Run(gctx); err != nil && gctx.Err() == nil {
					return err
				}
				return nil
			})
			g.Go(func() error {
				return web.Start(gctx, a.cfg.ListenAddr, ws.Routes(), a.log)
			})
			return g.Wait()
		},
	}
}
