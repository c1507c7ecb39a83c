// Package watch implements the live registry view: a terminal table of
// the shared backlog that refreshes as other agents mutate it.
//
// Refreshes are driven by filesystem notifications on the coordination
// root rather than tight polling; because registry saves are atomic
// renames, the watcher observes the containing directory and filters for
// the registry name. A slow tick backstops notification loss on
// filesystems with unreliable events.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/registry"
)

// fallbackRefresh bounds how stale the view can get if notifications are
// dropped.
const fallbackRefresh = 5 * time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
)

type registryChangedMsg struct{}

type tickMsg time.Time

type watchErrMsg struct{ err error }

// Model is the bubbletea model for the live registry view.
type Model struct {
	layout  coordfs.Layout
	store   *registry.Store
	watcher *fsnotify.Watcher
	table   table.Model
	count   int
	err     error
}

// New creates a Model over the given coordination layout. The returned
// model owns an fsnotify watcher; Run closes it on exit.
func New(layout coordfs.Layout) (*Model, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(layout.Root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", layout.Root, err)
	}

	columns := []table.Column{
		{Title: "ID", Width: 16},
		{Title: "Status", Width: 10},
		{Title: "Priority", Width: 8},
		{Title: "Claimed By", Width: 20},
		{Title: "Title", Width: 40},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	m := &Model{
		layout:  layout,
		store:   registry.NewStore(layout.RegistryPath()),
		watcher: watcher,
		table:   t,
	}
	m.reload()
	return m, nil
}

// Init starts the notification and tick loops.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), tick())
}

// Update handles bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 4)
		return m, nil

	case registryChangedMsg:
		m.reload()
		return m, m.waitForChange()

	case tickMsg:
		m.reload()
		return m, tick()

	case watchErrMsg:
		m.err = msg.err
		return m, m.waitForChange()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the registry table.
func (m *Model) View() string {
	header := titleStyle.Render(fmt.Sprintf("Work Registry (%d tasks)", m.count))
	help := helpStyle.Render("↑/↓ scroll · r refresh · q quit")
	if m.err != nil {
		return header + "\n" + errStyle.Render(m.err.Error()) + "\n" + m.table.View() + "\n" + help
	}
	return header + "\n" + m.table.View() + "\n" + help
}

// reload reads the registry and rebuilds the table rows. Display-only
// reads skip the registry lock; the view may trail in-flight claims by
// one refresh.
func (m *Model) reload() {
	snap, err := m.store.Load()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.count = len(snap.Tasks)

	rows := make([]table.Row, 0, len(snap.Tasks))
	for _, task := range snap.Tasks {
		rows = append(rows, table.Row{
			task.ID,
			task.Status.String(),
			task.Priority.String(),
			task.ClaimedBy,
			task.Title,
		})
	}
	m.table.SetRows(rows)
}

// waitForChange blocks on the next relevant filesystem event.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				if filepath.Base(ev.Name) == coordfs.RegistryFileName {
					return registryChangedMsg{}
				}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return watchErrMsg{err: fmt.Errorf("watcher closed")}
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(fallbackRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the live view and blocks until the user quits.
func Run(layout coordfs.Layout) error {
	m, err := New(layout)
	if err != nil {
		return err
	}
	defer func() { _ = m.watcher.Close() }()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
