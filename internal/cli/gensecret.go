package cli

import (
	"fmt"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/spf13/cobra"
)

func newGenSecretCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random hex secret for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 16 {
				return fmt.Errorf("secret must be at least 16 bytes, got %d", size)
			}
			s, err := common.MakeRandHexString(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "bytes", "b", 32, "Number of random bytes")
	return cmd
}
