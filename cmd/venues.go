package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVenuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Inspect the venue registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "resolve NAME...",
		Short: "Resolve venue names to Resy ids, priming the shared cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			var failed int
			for _, name := range args {
				id, err := a.registry.ResolveOne(ctx, name)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s\tunresolved (%v)\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", name, id)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d venues unresolved", failed, len(args))
			}
			return nil
		},
	})
	return cmd
}
