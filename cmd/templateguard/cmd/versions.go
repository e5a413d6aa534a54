package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionsCmd lists archived schema versions in ascending order.
func NewVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List archived schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			arc, closeArchive, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer closeArchive()

			vs, err := arc.Versions(ctx)
			if err != nil {
				return err
			}
			for _, v := range vs {
				fmt.Println(v)
			}
			return nil
		},
	}
}
