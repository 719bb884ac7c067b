package playground

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/pubsub"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/suite"
	"github.com/superle3/snippet-leaf/internal/watcher"
)

func nextEvent(t *testing.T, ch <-chan pubsub.Event[suite.Settings]) pubsub.Event[suite.Settings] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no settings published")
		return pubsub.Event[suite.Settings]{}
	}
}

func newReloader(t *testing.T, cfgPath string) *Reloader {
	t.Helper()
	cfg, err := config.Read(cfgPath)
	require.NoError(t, err)
	loader := snippet.NewMemoryLoader()
	settings, _, err := config.Load(context.Background(), cfg, loader)
	require.NoError(t, err)
	return NewReloader(cfgPath, cfg, settings, loader)
}

func TestReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	snippets := filepath.Join(dir, "snippets.yaml")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(snippets, []byte("- {trigger: ab, replacement: cd, options: mA}\n"), 0o600))
	require.NoError(t, config.Save(cfgPath, "snippets_file", snippets))

	r := newReloader(t, cfgPath)
	require.Equal(t, []string{cfgPath, snippets}, r.Files())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := r.Broker().Subscribe(ctx)

	require.NoError(t, os.WriteFile(snippets, []byte("- {trigger: ab, replacement: cd, options: mA}\n- {trigger: ef, replacement: gh, options: mA}\n"), 0o600))
	require.NoError(t, r.Reload(ctx, false))

	ev := nextEvent(t, sub)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.NoError(t, ev.Err)
	require.Equal(t, 2, ev.Payload.Snippets.Len())

	// A broken config keeps the settings in effect.
	require.NoError(t, os.WriteFile(cfgPath, []byte("snippet_version: 9\n"), 0o600))
	require.ErrorIs(t, r.Reload(ctx, true), config.ErrInvalidVersion)

	ev = nextEvent(t, sub)
	require.Equal(t, pubsub.FailedEvent, ev.Type)
	require.ErrorIs(t, ev.Err, config.ErrInvalidVersion)
	require.Equal(t, 2, ev.Payload.Snippets.Len())
}

func TestReloader_Run(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))

	r := newReloader(t, cfgPath)
	require.Equal(t, []string{cfgPath}, r.Files())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := r.Broker().Subscribe(ctx)

	events := make(chan watcher.Event)
	done := make(chan struct{})
	go func() {
		r.Run(ctx, events)
		close(done)
	}()

	require.NoError(t, config.Save(cfgPath, "tabout.enabled", false))
	events <- watcher.Event{Paths: []string{cfgPath}}

	ev := nextEvent(t, sub)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.False(t, ev.Payload.TaboutEnabled)
	require.Positive(t, ev.Payload.Snippets.Len())

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the events channel closed")
	}
}
