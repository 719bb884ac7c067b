// Package playground is a small terminal editor driving the snippet engine,
// with the active tabstops highlighted and a live log pane.
package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/superle3/snippet-leaf/internal/config"
	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/keys"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/mathctx"
	"github.com/superle3/snippet-leaf/internal/pubsub"
	"github.com/superle3/snippet-leaf/internal/suite"
)

const maxLogLines = 200

// savedMsg reports the result of persisting a toggled setting.
type savedMsg struct {
	key string
	err error
}

// Model is the playground state.
type Model struct {
	session    *suite.Session
	initial    string
	settings   suite.Settings
	editorOpts []editor.Option

	keys     keys.KeyMap
	help     help.Model
	styles   Styles
	showHelp bool
	showLogs bool

	logs    []string
	logSub  *log.Listener
	reloads *pubsub.ContinuousListener[suite.Settings]

	configPath string
	status     string
	err        error
	width      int
	height     int
}

// Option configures a Model.
type Option func(*Model)

// WithLogListener shows log lines from l in the log pane.
func WithLogListener(l *log.Listener) Option {
	return func(m *Model) { m.logSub = l }
}

// WithReloads applies settings published by a Reloader.
func WithReloads(l *pubsub.ContinuousListener[suite.Settings]) Option {
	return func(m *Model) { m.reloads = l }
}

// WithConfigPath persists toggled settings to the config file at path.
func WithConfigPath(path string) Option {
	return func(m *Model) { m.configPath = path }
}

// WithEditorOptions configures the editor view, e.g. its history depth.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Model) { m.editorOpts = append(m.editorOpts, opts...) }
}

// New opens marked, a document with "|" cursor markers, in a playground.
func New(marked string, settings suite.Settings, opts ...Option) (Model, error) {
	m := Model{
		initial:  marked,
		settings: settings,
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		styles:   DefaultStyles(),
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	sess, err := suite.Open(marked, settings, m.editorOpts...)
	if err != nil {
		return Model{}, fmt.Errorf("opening document: %w", err)
	}
	m.session = sess
	return m, nil
}

// Session returns the edited session.
func (m Model) Session() *suite.Session { return m.session }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenLogs(), m.listenReloads())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case log.Event:
		m.logs = append(m.logs, strings.TrimRight(msg.Payload, "\n"))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, m.listenLogs()

	case pubsub.Event[suite.Settings]:
		if msg.Err != nil {
			m.err = fmt.Errorf("reload: %w", msg.Err)
		} else {
			// A reloaded snapshot carries its own reference to its snippets;
			// the one it replaces is released.
			old := m.settings.Snippets
			m.applySettings(msg.Payload)
			old.Close()
			m.err = nil
			m.status = "settings reloaded"
		}
		return m, m.listenReloads()

	case savedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("saving %s: %w", msg.key, msg.err)
		} else {
			m.status = "saved " + msg.key
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		sess, err := suite.Open(m.initial, m.settings, m.editorOpts...)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.session = sess
		m.status = "document reset"
		return m, nil
	case key.Matches(msg, m.keys.ToggleSnippets):
		s := m.settings
		s.SnippetsEnabled = !s.SnippetsEnabled
		m.applySettings(s)
		m.status = fmt.Sprintf("snippets %s", onOff(s.SnippetsEnabled))
		return m, m.save("snippets_enabled", s.SnippetsEnabled)
	case key.Matches(msg, m.keys.ToggleAutofraction):
		s := m.settings
		s.Autofraction.Enabled = !s.Autofraction.Enabled
		m.applySettings(s)
		m.status = fmt.Sprintf("autofraction %s", onOff(s.Autofraction.Enabled))
		return m, m.save("autofraction.enabled", s.Autofraction.Enabled)
	case key.Matches(msg, m.keys.ToggleTrigger):
		s := m.settings
		name := config.TriggerTab
		if s.SnippetsTrigger == suite.KeyTab {
			s.SnippetsTrigger = suite.KeySpace
			name = config.TriggerSpace
		} else {
			s.SnippetsTrigger = suite.KeyTab
		}
		m.applySettings(s)
		m.status = "snippet trigger " + name
		return m, m.save("snippets_trigger", name)
	}

	for _, k := range editorKeys(msg) {
		if err := m.session.Press(k); err != nil {
			log.ErrorErr(log.CatUI, "key failed", err, "key", k.String())
			m.err = err
			return m, nil
		}
	}
	m.err = nil
	return m, nil
}

func (m Model) listenLogs() tea.Cmd {
	if m.logSub == nil {
		return nil
	}
	return m.logSub.Listen()
}

func (m Model) listenReloads() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	return m.reloads.Listen()
}

func (m *Model) applySettings(s suite.Settings) {
	m.settings = s
	m.session.Handler().SetSettings(s)
}

// save persists one key when a config file is in use.
func (m Model) save(key string, value any) tea.Cmd {
	if m.configPath == "" {
		return nil
	}
	path := m.configPath
	return func() tea.Msg {
		return savedMsg{key: key, err: config.Save(path, key, value)}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View implements tea.Model.
func (m Model) View() string {
	inner := max(m.width-2, 10)

	title := m.styles.Title.Render("snippetleaf playground")
	doc := strings.Join(renderDocument(m.session.View().State(), m.session.Handler().Tabstops(), m.styles, inner), "\n")
	editorPane := m.styles.Pane.Width(inner).Render(doc)

	sections := []string{title, editorPane, m.statusLine()}
	if m.showLogs {
		sections = append(sections, m.logPane(inner))
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(m.err.Error())
	}
	ctx := mathctx.FromState(m.session.View().State())
	parts := []string{"mode: " + ctx.Mode.String()}
	if stops := m.session.Tabstops(); len(stops) > 0 {
		parts = append(parts, "tabstops: "+strings.Join(stops, " "))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return m.styles.Status.Render(strings.Join(parts, " · "))
}

func (m Model) logPane(width int) string {
	lines := m.logs
	rows := max(m.height/3, 3)
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	body := "no log lines (run with --debug)"
	if len(lines) > 0 {
		styled := make([]string, len(lines))
		for i, l := range lines {
			styled[i] = m.styles.LogLine.Render(l)
		}
		body = strings.Join(styled, "\n")
	}
	return m.styles.Pane.Width(width).MaxHeight(rows + 2).Render(body)
}
