package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/splitify/internal/formatter"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/tasks"
)

const (
	progressBuffer = 256
	maxEvents      = 8
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	SplitView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	catalog      services.Catalog
	engine       tasks.Splitter
	initialIDs   []string
	width        int
	height       int
	playlistList list.Model
	playlists    []services.Playlist
	picked       map[string]bool
	progressChan chan tasks.ProgressUpdate
	doneChan     chan splitComplete
	runIDs       []string
	names        map[string]string
	status       map[string]string
	events       []string
	completed    int
	report       *models.ProcessReport
	err          error
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// With playlistIDs the split starts immediately; otherwise the user picks from their playlists.
func NewModel(ctx context.Context, catalog services.Catalog, engine tasks.Splitter, playlistIDs []string) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:        ctx,
		cancel:     cancel,
		view:       PlaylistListView,
		catalog:    catalog,
		engine:     engine,
		initialIDs: playlistIDs,
		picked:     map[string]bool{},
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.mark)),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Report returns the finished run's report and error, if a run completed.
func (m *Model) Report() (*models.ProcessReport, error) {
	return m.report, m.err
}

// Init starts the split when IDs were given up front, otherwise fetches playlists.
func (m *Model) Init() tea.Cmd {
	if len(m.initialIDs) > 0 {
		m.view = SplitView
		return m.startSplit(m.initialIDs)
	}
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(min(msg.Width-8, 60), 10)
		if m.playlistList.Items() != nil {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SplitView:
			return m.handleSplitKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != SplitView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		model, cmd := m.bar.Update(msg)
		m.bar = model.(progress.Model)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.playlists = data.playlists
		m.playlistList = list.New(m.playlistItems(), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Your Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgProgressUpdate:
		cmd := m.applyProgress(msg.data.(tasks.ProgressUpdate))
		return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.doneChan))

	case MsgSplitComplete:
		data := msg.data.(splitComplete)
		m.report = data.report
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) tea.Cmd {
	if update.PlaylistID != "" {
		m.status[update.PlaylistID] = update.Message
	}

	var cmd tea.Cmd
	switch update.Phase {
	case tasks.PlaylistDone, tasks.PlaylistFailed:
		if report, ok := update.Data.(models.PlaylistReport); ok {
			m.names[report.PlaylistID] = report.Name
		}
		m.completed = update.Step
		if update.Total > 0 {
			cmd = m.bar.SetPercent(float64(update.Step) / float64(update.Total))
		}
	}

	m.events = append(m.events, update.Message)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
	return cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == PlaylistListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case SplitView:
		return m.renderSplit()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case m.err != nil:
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.toggleSelected()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.selectedIDs()) == 0 {
			m.toggleSelected()
		}
		if len(m.selectedIDs()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = SplitView
		return m, m.startSplit(m.selectedIDs())
	}
	return m, nil
}

func (m *Model) handleSplitKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart) && m.playlists != nil:
		m.view = PlaylistListView
		m.picked = map[string]bool{}
		m.playlistList.SetItems(m.playlistItems())
		m.report = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != PlaylistListView || m.playlistList.Items() == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) playlistItems() []list.Item {
	items := make([]list.Item, len(m.playlists))
	for i, pl := range m.playlists {
		items[i] = playlistItem{playlist: pl, selected: m.picked[pl.ID]}
	}
	return items
}

func (m *Model) toggleSelected() {
	item, ok := m.playlistList.SelectedItem().(playlistItem)
	if !ok {
		return
	}

	id := item.playlist.ID
	m.picked[id] = !m.picked[id]
	for i, pl := range m.playlists {
		if pl.ID == id {
			m.playlistList.SetItem(i, playlistItem{playlist: pl, selected: m.picked[id]})
			break
		}
	}
}

// selectedIDs returns picked playlist IDs in list order.
func (m *Model) selectedIDs() []string {
	var ids []string
	for _, pl := range m.playlists {
		if m.picked[pl.ID] {
			ids = append(ids, pl.ID)
		}
	}
	return ids
}

func (m *Model) fetchPlaylists() tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		playlists, err := catalog.UserPlaylists(ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) startSplit(ids []string) tea.Cmd {
	m.runIDs = ids
	m.completed = 0
	m.events = nil
	m.names = make(map[string]string, len(ids))
	m.status = make(map[string]string, len(ids))
	for _, pl := range m.playlists {
		m.names[pl.ID] = pl.Name
	}

	m.progressChan = make(chan tasks.ProgressUpdate, progressBuffer)
	m.doneChan = make(chan splitComplete, 1)

	progressChan, doneChan := m.progressChan, m.doneChan
	engine, ctx := m.engine, m.ctx
	go func() {
		report, err := engine.Process(ctx, ids, progressChan)
		close(progressChan)
		doneChan <- splitComplete{report, err}
	}()

	return tea.Batch(m.spinner.Tick, m.bar.SetPercent(0), waitForProgress(progressChan, doneChan))
}

// waitForProgress reads the next update; once the channel closes it yields the run's result.
func waitForProgress(progressChan <-chan tasks.ProgressUpdate, doneChan <-chan splitComplete) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			res := <-doneChan
			return splitCompleteMsg(res.report, res.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	if m.playlistList.Items() == nil {
		return fmt.Sprintf("%s Loading playlists...", m.spinner.View())
	}
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	ids := m.selectedIDs()
	title := styles.title.Render(fmt.Sprintf("Split %d playlist(s) by genre?", len(ids)))

	var b strings.Builder
	for _, pl := range m.playlists {
		if m.picked[pl.ID] {
			fmt.Fprintf(&b, "  • %s (%d tracks)\n", pl.Name, pl.TrackCount)
		}
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderSplit() string {
	title := styles.title.Render(fmt.Sprintf("Splitting %d playlist(s)", len(m.runIDs)))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s %d/%d playlists\n\n", title, m.spinner.View(), m.completed, len(m.runIDs))
	fmt.Fprintf(&b, "%s\n\n", m.bar.View())

	for _, id := range m.runIDs {
		name := m.names[id]
		if name == "" {
			name = id
		}
		status := m.status[id]
		if status == "" {
			status = styles.help.Render("waiting")
		}
		fmt.Fprintf(&b, "  %s: %s\n", name, status)
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		for _, event := range m.events {
			b.WriteString(styles.help.Render(event) + "\n")
		}
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.quit}
	if m.playlists != nil {
		helpKeys = []key.Binding{m.keys.restart, m.keys.quit}
	}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.report == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Split failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	var title string
	switch {
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("✗ Split failed: %v", m.err))
	case m.report.Failed() > 0:
		title = styles.warn.Render(fmt.Sprintf("! Split finished with %d failed playlist(s)", m.report.Failed()))
	default:
		title = styles.ok.Render("✓ Split Complete!")
	}

	body, err := formatter.ReportToText(m.report)
	if err != nil {
		body = []byte(styles.err.Render(err.Error()))
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, body, helpView)
}
