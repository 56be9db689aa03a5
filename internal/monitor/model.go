package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings as constants for consistency.
const (
	KeyQuit          = "q"
	KeyQuitAlt       = "ctrl+c"
	KeyToggleDetails = "d"
	KeyScrollUp      = "up"
	KeyScrollUpK     = "k"
	KeyScrollDown    = "down"
	KeyScrollDownJ   = "j"
)

// spinnerInterval is the animation frame rate for in-flight status glyphs.
const spinnerInterval = 150 * time.Millisecond

// tickMsg signals a periodic view refresh.
type tickMsg time.Time

// spinnerTickMsg signals a spinner animation frame update.
type spinnerTickMsg time.Time

// Model is the Bubble Tea model for the fleet dashboard. It only reads:
// the scheduler owns all cache writes, so a slow host never stalls a
// render tick.
type Model struct {
	cache    *Cache
	topo     Topology
	interval time.Duration

	vm          ViewModel
	showDetails bool

	width  int
	height int

	spinnerFrame int
	quitting     bool

	detailViewport viewport.Model
	viewportReady  bool
}

// NewModel creates a dashboard model over a populated cache.
// showDetails starts the per-device listing open.
func NewModel(cache *Cache, topo Topology, interval time.Duration, showDetails bool) Model {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	m := Model{
		cache:       cache,
		topo:        topo,
		interval:    interval,
		showDetails: showDetails,
	}
	m.refresh()
	return m
}

// Init starts the refresh and spinner timers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.spinnerTickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit, KeyQuitAlt:
			m.quitting = true
			return m, tea.Quit

		case KeyToggleDetails:
			m.showDetails = !m.showDetails
			m.refresh()
			return m, nil

		case KeyScrollUp, KeyScrollUpK, KeyScrollDown, KeyScrollDownJ:
			if m.viewportReady && m.showDetails {
				var cmd tea.Cmd
				m.detailViewport, cmd = m.detailViewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case tickMsg:
		m.refresh()
		return m, m.tickCmd()

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// refresh recomputes the view model from the current cache contents.
func (m *Model) refresh() {
	m.vm = Aggregate(m.cache.Snapshot(), m.topo, AggregateOptions{
		IncludeDetails: m.showDetails,
	})
	if m.showDetails && m.viewportReady {
		m.detailViewport.SetContent(m.renderDetailRows())
	}
}

// resizeViewport sizes the detail viewport to the space left under the
// summary and problem sections.
func (m *Model) resizeViewport() {
	headerHeight := 2
	footerHeight := 2
	summaryHeight := len(m.vm.Hosts) + 3
	problemsHeight := len(m.vm.Problems) + 3

	vpHeight := m.height - headerHeight - footerHeight - summaryHeight - problemsHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.viewportReady {
		m.detailViewport = viewport.New(m.width, vpHeight)
		m.viewportReady = true
	} else {
		m.detailViewport.Width = m.width
		m.detailViewport.Height = vpHeight
	}
	if m.showDetails {
		m.detailViewport.SetContent(m.renderDetailRows())
	}
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// spinnerTickCmd returns a command that sends a spinner animation frame.
func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
