package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/loupe/internal/navigation"
	"github.com/five82/loupe/internal/pagecache"
	"github.com/five82/loupe/internal/photos"
	"github.com/five82/loupe/internal/prefs"
	"github.com/five82/loupe/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewListing View = iota
	ViewDetail
)

// Layout is the listing presentation.
type Layout int

const (
	LayoutList Layout = iota
	LayoutGrid
)

// filterKind names the field the filter prompt edits.
type filterKind int

const (
	filterNone filterKind = iota
	filterTag
	filterCamera
	filterLens
)

// detailState holds the photo shown in the detail view.
type detailState struct {
	id       string
	photo    photos.Photo
	hasPhoto bool
	loading  bool
	notFound bool
	err      error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Client     photos.Fetcher
	Store      *state.Store
	Cache      *pagecache.Cache
	Queue      *navigation.Queue
	BaseParams photos.Params // home listing params
	Admin      bool
	OpenID     string
	PollTick   time.Duration
	ThemeName  string
	Prefs      prefs.Prefs
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    photos.Fetcher
	store     *state.Store
	cache     *pagecache.Cache
	queue     *navigation.Queue
	nav       *navigation.Controller
	events    chan tea.Msg
	unsub     func()
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	admin     bool
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	layout      Layout
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Listing state
	baseParams  photos.Params
	feed        *pagecache.Feed
	filter      filterKind
	filterInput textinput.Model
	prompt      filterKind // field being edited, filterNone when closed
	selected    int

	// Detail state
	detail         detailState
	detailViewport viewport.Model

	// Data state
	snapshot state.Snapshot
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	events := make(chan tea.Msg, 16)
	queue := opts.Queue
	unsub := queue.Subscribe(func(navigation.State) {
		select {
		case events <- navChangedMsg{}:
		default:
		}
	})
	nav := navigation.NewController(queue, func(ctx context.Context, id string) error {
		select {
		case events <- openPhotoMsg{id: id}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	input := textinput.New()
	input.CharLimit = 120

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		cache:       opts.Cache,
		queue:       queue,
		nav:         nav,
		events:      events,
		unsub:       unsub,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		admin:       opts.Admin,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewListing,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		baseParams:  opts.BaseParams,
		feed:        pagecache.NewFeed(opts.Cache, opts.BaseParams),
		filterInput: input,
	}

	if id := strings.TrimSpace(opts.OpenID); id != "" {
		m.currentView = ViewDetail
		m.detail = detailState{id: id, loading: true}
		m.nav.Attach()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.spinner.Tick,
		waitForEvent(m.events),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.feed.NeedsInitialLoad() {
		cmds = append(cmds, loadPageCmd(m.ctx, m.feed))
	}
	if m.currentView == ViewDetail {
		cmds = append(cmds, loadPhotoCmd(m.ctx, m.client, m.detail.id))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(msg.Width, m.bodyHeight())
		}
		m.ready = true
		m.detailViewport.Width = msg.Width
		m.detailViewport.Height = m.bodyHeight()
		m.updateDetailViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case photoLoadedMsg:
		m.handlePhotoLoaded(msg)
		return m, nil

	case openPhotoMsg:
		cmd := m.openPhoto(msg.id)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case navChangedMsg:
		// The queue grew or was replaced; the next render picks it up.
		return m, waitForEvent(m.events)

	case navErrMsg:
		if m.store != nil && !errors.Is(msg.err, context.Canceled) {
			m.store.Notify("Navigation failed", msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	switch m.currentView {
	case ViewDetail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderListing())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	// The filter prompt owns the keyboard while it is open.
	if m.prompt != filterNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case msg.String() == "?":
		m.showHelp = true
		return m, nil

	case msg.String() == "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateDetailViewport()
		return m, nil
	}

	switch m.currentView {
	case ViewDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListingKey(msg)
	}
}

// Close detaches the model from the navigation queue.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// bodyHeight is the height left between header and footer.
func (m Model) bodyHeight() int {
	h := m.height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, m.prefs)
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
