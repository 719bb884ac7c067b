package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/presentation"
	"github.com/superle3/snippet-leaf/internal/snippet"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Validate a snippet file",
	Long: `Compile a snippet file and report every definition that fails, followed
by the number of snippets per mode.

FILE defaults to the configured snippets_file, or the built-in snippets when
none is set. The snippet_variables_file and snippet_version settings apply.
The command fails when any definition is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	c := cfg
	if len(args) == 1 {
		c.SnippetsFile = args[0]
	}

	src, err := config.SnippetSource(c)
	if err != nil {
		return err
	}
	loaded, err := snippet.NewMemoryLoader().Load(cmd.Context(), src)
	if err != nil {
		return err
	}
	defer loaded.Set.Close()

	path := c.SnippetsFile
	if path == "" {
		path = "(built-in)"
	}
	report := presentation.FromSet(path, loaded.Set, loaded.Err)

	f := presentation.NewFormatter(cmd.OutOrStdout())
	if checkJSON {
		err = f.FormatJSON(report)
	} else {
		err = f.FormatCheck(report)
	}
	if err != nil {
		return err
	}
	if n := len(report.Errors); n > 0 {
		return fmt.Errorf("%d invalid snippet definitions", n)
	}
	return nil
}
