package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	templateguard "github.com/templateguard/templateguard"
	jsonsrc "github.com/templateguard/templateguard/source/json"
	yamlsrc "github.com/templateguard/templateguard/source/yaml"
	dirstore "github.com/templateguard/templateguard/store/dir"
	sqlitestore "github.com/templateguard/templateguard/store/sqlite"
)

type rootOpts struct {
	archivePath string
	backend     string
	debugModeOn bool
}

var rootOpt rootOpts

const (
	backendDir    = "dir"
	backendSQLite = "sqlite"
)

var longRootCmdDescription = `templateguard governs a shared configuration template: it validates concrete
documents against the current or a pinned historical schema version, and it
gates schema edits so only backwards compatible, properly versioned changes
enter the archive.
`

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "templateguard",
	Short:         "Validate documents and gate template schema evolution.",
	Long:          longRootCmdDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("templateguard: %v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.AddCommand(NewValidateCmd(), NewCheckCompatibilityCmd(), NewArchiveCmd(), NewVersionsCmd())

	rootCmd.PersistentFlags().StringVar(&rootOpt.archivePath, "archive", "schemas", "path of the schema archive (directory, or db file for the sqlite backend)")
	rootCmd.PersistentFlags().StringVar(&rootOpt.backend, "backend", backendDir, "archive backend: dir or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&rootOpt.debugModeOn, "debug", "d", false, "turn on debug mode")
}

func initLogger() {
	logrus.SetOutput(os.Stderr)
	if rootOpt.debugModeOn {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// openArchive builds the selected archive backend. The returned closer is a
// no-op for the directory backend.
func openArchive(ctx context.Context) (templateguard.Archive, func() error, error) {
	switch rootOpt.backend {
	case backendDir:
		logrus.Debugf("using directory archive at %s", rootOpt.archivePath)
		return dirstore.New(rootOpt.archivePath), func() error { return nil }, nil
	case backendSQLite:
		logrus.Debugf("using sqlite archive at %s", rootOpt.archivePath)
		st, err := sqlitestore.Open(ctx, rootOpt.archivePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive backend %q", rootOpt.backend)
	}
}

// readDocument loads a YAML or JSON file into the untyped mapping the core
// consumes, picking the loader by extension.
func readDocument(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonsrc.DecodeFile(path)
	default:
		return yamlsrc.DecodeFile(path)
	}
}

// readSchema loads and parses a schema document from disk.
func readSchema(path string) (*templateguard.Schema, error) {
	raw, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return templateguard.Load(raw)
}

// printIssues renders a labeled issue list, one line per issue.
func printIssues(label string, iss templateguard.Issues) {
	if len(iss) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, it := range iss {
		fmt.Printf("  - %s: %s\n", it.Code, it.Message)
	}
}
