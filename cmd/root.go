package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/paths"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the playground.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultLogPath = "snippetleaf.log"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        config.Config
	cfgErr     error
	configPath string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "snippetleaf",
	Short: "LaTeX snippet expansion and tabstops for plain text editing",
	Long: `snippetleaf expands LaTeX snippets as you type: triggers in math or text
mode are replaced by templates whose tabstops you cycle through with Tab.

Run 'snippetleaf playground' to try it interactively, or 'snippetleaf expand'
to replay keystrokes on a document from scripts and tests.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeLog() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .snippetleaf/config.yaml, then ~/.config/snippetleaf/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by "+log.EnvDebug+")")
}

func initConfig() {
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	configPath = ""

	path := paths.ResolveConfigFile(cfgFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		// If write fails, just continue with defaults (no config file)
		if writeErr := config.WriteDefaultConfig(path); writeErr != nil {
			cfg, cfgErr = config.Unmarshal(viper.GetViper())
			return
		}
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		cfgErr = fmt.Errorf("reading config %s: %w", path, err)
		return
	}
	configPath = viper.ConfigFileUsed()
	cfg, cfgErr = config.Unmarshal(viper.GetViper())
}

// setup starts logging and reports a broken config before any command
// runs.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || log.EnabledByEnv() {
		logPath := os.Getenv(log.EnvLogFile)
		if logPath == "" {
			logPath = defaultLogPath
		}
		cleanup, err := log.InitWithTeaLog(logPath, "snippetleaf")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "snippetleaf starting", "command", cmd.Name(), "config", configPath)
	}
	if cfgErr != nil {
		return fmt.Errorf("invalid configuration: %w", cfgErr)
	}
	return nil
}

func closeLog() {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// Execute runs the root command
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
