package cmd

import (
	"cmp"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/presentation"
	"github.com/superle3/snippet-leaf/internal/snippet"
)

var errNoSnippetsFile = errors.New("no snippet file given and snippets_file is not set")

var convertCmd = &cobra.Command{
	Use:   "convert [FILE]",
	Short: "Rewrite version 1 snippets in version 2 syntax",
	Long: `Read a snippet file and print it as YAML with every version 1 replacement
rewritten in version 2 syntax: $1 and ${1:text} become @1 and @{1:text},
[[0]] becomes @[0] and literal "@" is doubled.

Snippets without an explicit version use snippet_version from the config.
Replacement functions are left at version 1 since their output is only
known when they run.

Example:
  snippetleaf convert snippets.json > snippets.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	c := cfg
	if len(args) == 1 {
		c.SnippetsFile = args[0]
	}
	if c.SnippetsFile == "" {
		return errNoSnippetsFile
	}

	src, err := config.SnippetSource(c)
	if err != nil {
		return err
	}
	raws, err := snippet.ParseSource(src.Data, src.Format)
	if err != nil {
		return err
	}

	out := convertSnippets(raws, src.Variables, src.Version, cmd.ErrOrStderr())
	return presentation.NewFormatter(cmd.OutOrStdout()).FormatSnippets(out)
}

// convertSnippets returns raws with version 1 replacements rewritten.
// Snippets that cannot be converted are kept as they are and reported on
// warn.
func convertSnippets(raws []snippet.RawSnippet, vars snippet.Variables, defaultVersion int, warn io.Writer) []snippet.RawSnippet {
	out := make([]snippet.RawSnippet, len(raws))
	for i, raw := range raws {
		out[i] = raw
		if cmp.Or(raw.Version, defaultVersion, 2) != 1 {
			continue
		}
		if raw.ReplacementFn != "" {
			out[i].Version = 1
			fmt.Fprintf(warn, "snippet %d (%q): replacement function kept at version 1\n", i, raw.Trigger)
			continue
		}
		s, err := snippet.Compile(raw, vars, defaultVersion)
		if err != nil {
			fmt.Fprintf(warn, "snippet %d (%q): %v\n", i, raw.Trigger, err)
			continue
		}
		out[i].Replacement = s.Replacement
		out[i].Version = 2
	}
	return out
}
