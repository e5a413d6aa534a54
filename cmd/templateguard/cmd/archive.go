package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	templateguard "github.com/templateguard/templateguard"
)

// NewArchiveCmd runs a candidate schema through the evolution gate: a legal
// evolution is archived and becomes the latest version, anything else is
// rejected with the full violation list.
func NewArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <candidate>",
		Short: "Propose a schema edit to the evolution gate",
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

			dec, err := templateguard.NewGate(arc).Propose(ctx, candidate)
			if err != nil {
				return err
			}
			if dec.Outcome == templateguard.Rejected {
				fmt.Printf("Rejected schema v%s\n", candidate.Version)
				printIssues("Violations", dec.Violations)
				return errors.New("schema edit rejected")
			}
			if dec.Previous == nil {
				logrus.Debugf("archive was empty; accepted first version without compatibility check")
				fmt.Printf("Accepted schema v%s (first version)\n", candidate.Version)
				return nil
			}
			fmt.Printf("Accepted schema v%s (previous v%s)\n", candidate.Version, dec.Previous)
			return nil
		},
	}
}
