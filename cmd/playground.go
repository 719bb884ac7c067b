package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/playground"
	"github.com/superle3/snippet-leaf/internal/pubsub"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/watcher"
)

var playgroundDoc string

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Interactive playground for trying snippets",
	Long: `Launch a small editor that runs the snippet engine on every keystroke and
highlights the active tabstops.

Changes to the config, snippet and variables files are picked up while it
runs. Toggling a feature from the playground writes it back to the config.`,
	Args: cobra.NoArgs,
	RunE: runPlayground,
}

func init() {
	playgroundCmd.Flags().StringVar(&playgroundDoc, "doc", "|", "initial document with cursor markers")
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loader := snippet.NewMemoryLoader()
	settings, _, err := config.Load(ctx, cfg, loader)
	if err != nil {
		return err
	}

	reloader := playground.NewReloader(configPath, cfg, settings, loader)
	opts := []playground.Option{
		playground.WithConfigPath(configPath),
		playground.WithEditorOptions(editor.WithHistoryDepth(cfg.History.Depth)),
		playground.WithReloads(pubsub.NewContinuousListener(ctx, reloader.Broker())),
	}
	if l := log.NewListener(ctx); l != nil {
		opts = append(opts, playground.WithLogListener(l))
	}

	w, err := watcher.New(watcher.Config{Files: reloader.Files(), DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	events, err := w.Start()
	if err != nil {
		// The playground still works, it just won't notice file changes.
		log.ErrorErr(log.CatWatcher, "watching config files failed", err)
	} else {
		defer func() { _ = w.Stop() }()
		go reloader.Run(ctx, events)
	}

	model, err := playground.New(playgroundDoc, settings, opts...)
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}
