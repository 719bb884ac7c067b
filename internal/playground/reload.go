package playground

import (
	"context"
	"sync"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/pubsub"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/suite"
	"github.com/superle3/snippet-leaf/internal/watcher"
)

// Reloader rebuilds the settings when the config or snippet files change
// and publishes each new snapshot. A failed reload publishes the error
// together with the settings still in effect.
type Reloader struct {
	configPath string
	loader     *snippet.Loader
	broker     *pubsub.Broker[suite.Settings]

	mu   sync.Mutex
	cfg  config.Config
	last suite.Settings
}

// NewReloader starts from cfg and the settings built from it. configPath
// may be empty when no config file is in use.
func NewReloader(configPath string, cfg config.Config, current suite.Settings, loader *snippet.Loader) *Reloader {
	return &Reloader{
		configPath: configPath,
		loader:     loader,
		broker:     pubsub.NewBroker[suite.Settings](),
		cfg:        cfg,
		last:       current,
	}
}

// Broker returns the broker carrying reloaded settings.
func (r *Reloader) Broker() *pubsub.Broker[suite.Settings] { return r.broker }

// Files returns the files whose changes trigger a reload.
func (r *Reloader) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := []string{r.configPath}
	if r.cfg.SnippetsFile != "" {
		files = append(files, config.ExpandPath(r.cfg.SnippetsFile))
	}
	if r.cfg.SnippetVariablesFile != "" {
		files = append(files, config.ExpandPath(r.cfg.SnippetVariablesFile))
	}
	return files
}

// Reload rereads the config file when configChanged is set, recompiles the
// snippets and publishes the result.
func (r *Reloader) Reload(ctx context.Context, configChanged bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.cfg
	if configChanged && r.configPath != "" {
		read, err := config.Read(r.configPath)
		if err != nil {
			log.ErrorErr(log.CatConfig, "config reload failed", err, "path", r.configPath)
			r.broker.PublishErr(r.last, err)
			return err
		}
		if read.SnippetsFile != cfg.SnippetsFile || read.SnippetVariablesFile != cfg.SnippetVariablesFile {
			log.Warn(log.CatWatcher, "snippet file paths changed; restart to watch the new files")
		}
		cfg = read
	}

	settings, _, err := config.Load(ctx, cfg, r.loader)
	if err != nil {
		log.ErrorErr(log.CatConfig, "snippet reload failed", err)
		r.broker.PublishErr(r.last, err)
		return err
	}
	r.cfg = cfg
	r.last = settings
	r.broker.Publish(pubsub.ReloadedEvent, settings)
	log.Info(log.CatConfig, "settings reloaded", "snippets", settings.Snippets.Len())
	return nil
}

// Run reloads on every watcher event until ctx is cancelled or events is
// closed.
func (r *Reloader) Run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			configChanged := r.configPath != "" && ev.Has(r.configPath)
			_ = r.Reload(ctx, configChanged)
		}
	}
}
