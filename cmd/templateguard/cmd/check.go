package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	templateguard "github.com/templateguard/templateguard"
)

type checkOpts struct {
	previous string
}

// NewCheckCompatibilityCmd compares a candidate schema file against an
// archived version (latest by default) without touching the archive.
func NewCheckCompatibilityCmd() *cobra.Command {
	var opt checkOpts
	cmd := &cobra.Command{
		Use:   "check-compatibility <candidate>",
		Short: "Check whether a schema edit is a legal evolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			arc, closeArchive, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer closeArchive()

			candidate, err := readSchema(args[0])
			if err != nil {
				return fmt.Errorf("failed to load candidate schema %s: %w", args[0], err)
			}
			previous, err := selectSchema(cmd, arc, opt.previous)
			if err != nil {
				if errors.Is(err, templateguard.ErrEmptyArchive) {
					fmt.Println("No previous schema versions found; first version is always compatible.")
					return nil
				}
				return err
			}

			res := templateguard.Check(previous, candidate)
			if !res.OK() {
				fmt.Printf("Compatibility check FAILED (v%s -> v%s)\n", previous.Version, candidate.Version)
				printIssues("Violations", res.Violations)
				return errors.New("incompatible schema change")
			}
			fmt.Printf("Compatibility check passed (v%s -> v%s)\n", previous.Version, candidate.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&opt.previous, "previous", "", "archived version to compare against (default: latest)")
	return cmd
}
