package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/presentation"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/suite"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(log.EnvDebug, "")

	cfgFile, debugFlag = "", false
	expandDoc, expandKeys = "", ""
	expandDiff, expandJSON, expandTrace = false, false, false
	checkJSON = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return stdout.String(), stderr.String(), err
}

func tempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return path
}

func TestExpand(t *testing.T) {
	path := tempConfig(t, "")

	out, _, err := run(t, "expand", "--config", path, "--doc", "$a+|$", "--keys", "//")
	require.NoError(t, err)
	require.Equal(t, "$a+\\frac{|}{}$\ntabstops: 1:9-9 2:11-11 0:12-12\n", out)

	// A missing config file is created with the defaults.
	cfg, err := config.Read(path)
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), cfg)
}

func TestExpand_Tab(t *testing.T) {
	out, _, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "$a+|$", "--keys", "//x<Tab>y<Tab>")
	require.NoError(t, err)
	require.Equal(t, "$a+\\frac{x}{y}|$\n", out)
}

func TestExpand_Diff(t *testing.T) {
	out, _, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "$a+|$", "--keys", "//", "--diff")
	require.NoError(t, err)
	require.Contains(t, out, "--- before\n+++ after\n-$a+|$\n+$a+\\frac{|}{}$\n")
}

func TestExpand_JSON(t *testing.T) {
	out, _, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "|", "--keys", "mk", "--json")
	require.NoError(t, err)

	var got presentation.ExpandDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "$|$", got.Document)
	require.Empty(t, got.Tabstops)
}

func TestExpand_UsesConfig(t *testing.T) {
	path := tempConfig(t, "snippets_enabled: false\n")

	out, _, err := run(t, "expand", "--config", path, "--doc", "|", "--keys", "mk")
	require.NoError(t, err)
	require.Equal(t, "mk|\n", out)
}

func TestExpand_Trace(t *testing.T) {
	_, stderr, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "|", "--keys", "mk", "--trace")
	require.NoError(t, err)
	require.Contains(t, stderr, "[snippet]")
}

func TestExpand_Errors(t *testing.T) {
	_, _, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "no cursor", "--keys", "x")
	require.ErrorIs(t, err, suite.ErrNoCursor)

	_, _, err = run(t, "expand", "--config", tempConfig(t, ""), "--doc", "|", "--keys", "<Nope>")
	require.ErrorIs(t, err, suite.ErrBadKey)
}

func TestInvalidConfig(t *testing.T) {
	path := tempConfig(t, "snippet_version: 9\n")

	_, _, err := run(t, "expand", "--config", path, "--doc", "|")
	require.ErrorIs(t, err, config.ErrInvalidVersion)
}

func TestDebugLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	t.Setenv(log.EnvLogFile, logPath)

	_, _, err := run(t, "expand", "--config", tempConfig(t, ""), "--doc", "|", "--keys", "a", "--debug")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "snippetleaf starting")
}

func writeSnippets(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheck(t *testing.T) {
	file := writeSnippets(t, "snippets.yaml", "- {trigger: ab, replacement: cd, options: mA}\n- {trigger: ef, replacement: gh, options: t}\n")

	out, _, err := run(t, "check", "--config", tempConfig(t, ""), file)
	require.NoError(t, err)
	require.Contains(t, out, file)
	require.Contains(t, out, "total")
	require.NotContains(t, out, "error:")
}

func TestCheck_InvalidDefinitions(t *testing.T) {
	file := writeSnippets(t, "snippets.yaml", "- {trigger: ab, replacement: cd, options: mA}\n- {trigger: '', replacement: x}\n- {trigger: q, replacement: x, options: Z}\n")

	out, _, err := run(t, "check", "--config", tempConfig(t, ""), file, "--json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 invalid snippet definitions")

	var report presentation.CheckDTO
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 1, report.Snippets)
	require.Equal(t, 1, report.Modes.InlineMath)
	require.Len(t, report.Errors, 2)
	require.Equal(t, 1, report.Errors[0].Index)
	require.Equal(t, 2, report.Errors[1].Index)
}

func TestCheck_BuiltIn(t *testing.T) {
	out, _, err := run(t, "check", "--config", tempConfig(t, ""))
	require.NoError(t, err)
	require.Contains(t, out, "(built-in)")
}

func TestConvert(t *testing.T) {
	file := writeSnippets(t, "snippets.yaml", `- {trigger: sq, replacement: '\sqrt{$1}$0', options: mA, version: 1}
- {trigger: '([a-z])hat', replacement: '\hat{[[0]]}', options: rmA, version: 1}
- {trigger: at, replacement: '@@', options: mA}
- {trigger: fn, replacement_fn: 'function(x) return "$1" end', options: mA, version: 1}
`)

	out, stderr, err := run(t, "convert", "--config", tempConfig(t, ""), file)
	require.NoError(t, err)
	require.Contains(t, stderr, "replacement function kept at version 1")

	got, err := snippet.ParseSource([]byte(out), snippet.FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, `\sqrt{@{1}}@{0}`, got[0].Replacement)
	require.Equal(t, 2, got[0].Version)
	require.Equal(t, `\hat{@[0]}`, got[1].Replacement)
	require.Equal(t, "@@", got[2].Replacement)
	require.Zero(t, got[2].Version)
	require.Equal(t, 1, got[3].Version)
}

func TestConvert_DefaultVersion(t *testing.T) {
	file := writeSnippets(t, "snippets.yaml", "- {trigger: a@, replacement: 'x@$1', options: mA}\n")
	path := tempConfig(t, "snippet_version: 1\n")

	out, _, err := run(t, "convert", "--config", path, file)
	require.NoError(t, err)

	got, err := snippet.ParseSource([]byte(out), snippet.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, "x@@@{1}", got[0].Replacement)
}

func TestConvert_NoFile(t *testing.T) {
	_, _, err := run(t, "convert", "--config", tempConfig(t, ""))
	require.ErrorIs(t, err, errNoSnippetsFile)
}
