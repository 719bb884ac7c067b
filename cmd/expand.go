package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/presentation"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/suite"
)

var (
	expandDoc   string
	expandKeys  string
	expandDiff  bool
	expandJSON  bool
	expandTrace bool
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Replay keystrokes on a document and print the result",
	Long: `Replay a key script on a document using the configured snippets and
print the resulting document with its cursors and the active tabstops.

In the document "|" marks a cursor (several for multiple cursors), "«" and
"»" enclose a selection and "\|" is a literal bar.

The key script is literal characters plus the tokens <Tab>, <S-Tab>, <CR>,
<S-CR>, <BS>, <Esc>, <Space>, <Undo> and <Redo>.

Examples:
  snippetleaf expand --doc '$a+|$' --keys '//'
  snippetleaf expand --doc '$x|$' --keys 'sqy<Tab>' --diff
  snippetleaf expand --doc '|' --keys 'mkx/' --json | jq .tabstops`,
	Args: cobra.NoArgs,
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().StringVar(&expandDoc, "doc", "", "document with cursor markers")
	expandCmd.Flags().StringVarP(&expandKeys, "keys", "k", "", "key script to replay")
	expandCmd.Flags().BoolVar(&expandDiff, "diff", false, "also print a diff against the input document")
	expandCmd.Flags().BoolVar(&expandJSON, "json", false, "print the result as JSON")
	expandCmd.Flags().BoolVar(&expandTrace, "trace", false, "log every handled key to stderr")
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, _ []string) error {
	if expandTrace {
		restore := log.InitWriter(cmd.ErrOrStderr())
		defer restore()
	}

	settings, _, err := config.Load(cmd.Context(), cfg, snippet.NewMemoryLoader())
	if err != nil {
		return err
	}
	defer settings.Snippets.Close()

	sess, err := suite.Open(expandDoc, settings, editor.WithHistoryDepth(cfg.History.Depth))
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}

	before := sess.String()
	if err := sess.Run(expandKeys); err != nil {
		return fmt.Errorf("replaying keys: %w", err)
	}

	result := presentation.ExpandDTO{
		Document: sess.String(),
		Tabstops: sess.Tabstops(),
	}
	if expandDiff {
		result.Diff = presentation.Diff(before, result.Document)
	}

	f := presentation.NewFormatter(cmd.OutOrStdout())
	if expandJSON {
		return f.FormatJSON(result)
	}
	return f.FormatExpand(result)
}
