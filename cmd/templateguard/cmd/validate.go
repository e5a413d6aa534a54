package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	templateguard "github.com/templateguard/templateguard"
)

type validateOpts struct {
	schemaVersion string
	strict        bool
}

// NewValidateCmd validates a document against the latest or a pinned schema
// version. Exit code 0 means PASSED; every error and warning is printed.
func NewValidateCmd() *cobra.Command {
	var opt validateOpts
	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a document against the template schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			arc, closeArchive, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer closeArchive()

			schema, err := selectSchema(cmd, arc, opt.schemaVersion)
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return fmt.Errorf("failed to load document %s: %w", args[0], err)
			}

			res := templateguard.Validate(doc, schema, opt.strict)
			printIssues("Errors", res.Errors)
			printIssues("Warnings", res.Warnings)
			if !res.Passed() {
				fmt.Printf("Validation FAILED for %s (schema v%s)\n", args[0], schema.Version)
				return errors.New("validation failed")
			}
			fmt.Printf("Validation PASSED for %s (schema v%s)\n", args[0], schema.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&opt.schemaVersion, "schema-version", "", "validate against a pinned schema version (default: latest)")
	cmd.Flags().BoolVar(&opt.strict, "strict", false, "treat warnings as errors")
	return cmd
}

// selectSchema resolves the latest schema or a pinned version from the archive.
func selectSchema(cmd *cobra.Command, arc templateguard.Archive, pinned string) (*templateguard.Schema, error) {
	ctx := cmd.Context()
	if pinned == "" {
		return arc.Latest(ctx)
	}
	v, err := templateguard.ParseVersion(pinned)
	if err != nil {
		return nil, err
	}
	return arc.Get(ctx, v)
}
