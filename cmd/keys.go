package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/resy-asks/internal/seal"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate a CRED_ENC_KEY value (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := seal.NewKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export CRED_ENC_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}
