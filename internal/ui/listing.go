package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/loupe/internal/navigation"
	"github.com/five82/loupe/internal/photos"
)

// sortOption is one entry of the sort cycle. The zero value leaves the
// order to the server.
type sortOption struct {
	orderBy string
	order   string
}

var sortCycle = []sortOption{
	{},
	{"takenAt", "desc"},
	{"takenAt", "asc"},
	{"createdAt", "desc"},
	{"createdAt", "asc"},
}

func (s sortOption) label() string {
	if s.orderBy == "" {
		return "default order"
	}
	return s.orderBy + " " + ternary(s.order == "asc", "↑", "↓")
}

// handleListingKey processes keyboard input for the listing view.
func (m Model) handleListingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.feed.Items()
	count := len(items)
	cols := m.gridColumns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-cols, count)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(cols, count)
	case key.Matches(msg, m.keys.Left):
		if m.layout == LayoutGrid {
			m.moveSelection(-1, count)
		}
	case key.Matches(msg, m.keys.Right):
		if m.layout == LayoutGrid {
			m.moveSelection(1, count)
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(count-1, 0)

	case key.Matches(msg, m.keys.Open):
		if count == 0 {
			return m, nil
		}
		m.syncNavigation()
		return m, m.openPhoto(items[m.selected].ID)

	case key.Matches(msg, m.keys.LoadMore):
		if m.feed.HasMore() && !m.feed.Loading() {
			return m, loadPageCmd(m.ctx, m.feed)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleGrid):
		if m.layout == LayoutGrid {
			m.layout = LayoutList
		} else {
			m.layout = LayoutGrid
		}
		m.syncNavigation()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		return m, m.cycleSort()

	case key.Matches(msg, m.keys.FilterTag):
		return m, m.openPrompt(filterTag)
	case key.Matches(msg, m.keys.FilterCam):
		return m, m.openPrompt(filterCamera)
	case key.Matches(msg, m.keys.FilterLens):
		return m, m.openPrompt(filterLens)
	case key.Matches(msg, m.keys.ClearFilter):
		if m.filter == filterNone {
			return m, nil
		}
		return m, m.applyParams(m.baseParams, filterNone)

	default:
		return m, nil
	}

	return m, m.maybeAutoLoad()
}

func (m *Model) moveSelection(delta, count int) {
	if count == 0 {
		m.selected = 0
		return
	}
	m.selected = min(max(m.selected+delta, 0), count-1)
}

func (m *Model) clampSelection() {
	m.moveSelection(0, m.feed.Snapshot().Len())
}

// maybeAutoLoad starts the next page when the selection nears the end of
// what is loaded. A failed load waits for an explicit retry.
func (m Model) maybeAutoLoad() tea.Cmd {
	v := m.feed.Snapshot()
	if !v.HasMore || v.Loading || v.Err != nil {
		return nil
	}
	if len(v.Items)-1-m.selected >= LoadMoreThreshold {
		return nil
	}
	return loadPageCmd(m.ctx, m.feed)
}

// listingType names the listing for navigation contexts.
func (m Model) listingType() navigation.Type {
	switch m.filter {
	case filterTag:
		return navigation.TypeTag
	case filterCamera:
		return navigation.TypeCamera
	case filterLens:
		return navigation.TypeLens
	}
	if m.admin {
		return navigation.TypeAdmin
	}
	if m.layout == LayoutGrid {
		return navigation.TypeGrid
	}
	return navigation.TypeHome
}

func (m Model) listingContext() navigation.Context {
	return navigation.Context{Type: m.listingType(), Params: m.feed.Params()}
}

// syncNavigation hands the listing's current view to the navigation queue.
// It runs whenever the loaded set changes, so prev/next in the detail view
// follow exactly what the listing shows.
func (m Model) syncNavigation() {
	v := m.feed.Snapshot()
	m.queue.SetContext(m.listingContext(), v.Items, v.HasMore, m.cache.Limit())
}

// handlePageLoaded reacts to a finished listing load. Results for an entry
// the feed has since left stay cached for when the user comes back.
func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.key != m.feed.Key() {
		return m, nil
	}
	m.clampSelection()
	if msg.err != nil {
		return m, nil
	}
	if m.currentView == ViewListing {
		m.syncNavigation()
	}
	return m, nil
}

// applyParams points the feed at params and loads the first page if the
// entry is new.
func (m *Model) applyParams(params photos.Params, kind filterKind) tea.Cmd {
	m.filter = kind
	m.selected = 0
	if m.feed.SetParams(params) {
		return loadPageCmd(m.ctx, m.feed)
	}
	m.syncNavigation()
	return nil
}

func (m *Model) cycleSort() tea.Cmd {
	current := m.feed.Params()
	next := sortCycle[0]
	for i, s := range sortCycle {
		if s.orderBy == current.OrderBy && s.order == current.Order {
			next = sortCycle[(i+1)%len(sortCycle)]
			break
		}
	}

	m.baseParams.OrderBy, m.baseParams.Order = next.orderBy, next.order
	m.prefs.OrderBy, m.prefs.Order = next.orderBy, next.order
	m.savePrefs()

	current.OrderBy, current.Order = next.orderBy, next.order
	return m.applyParams(current, m.filter)
}

// openPrompt opens the filter input for kind, prefilled with the active
// value.
func (m *Model) openPrompt(kind filterKind) tea.Cmd {
	m.prompt = kind
	m.filterInput.Prompt = filterLabel(kind) + ": "
	m.filterInput.Placeholder = "empty clears the filter"
	m.filterInput.SetValue(filterValue(m.feed.Params(), kind))
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = filterNone
	m.filterInput.Blur()
}

// handlePromptKey processes keyboard input while the filter prompt is open.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		kind := m.prompt
		value := strings.TrimSpace(m.filterInput.Value())
		m.closePrompt()

		params := m.baseParams
		if value == "" {
			return m, m.applyParams(params, filterNone)
		}
		switch kind {
		case filterTag:
			params.Tag = value
		case filterCamera:
			params.Camera = value
		case filterLens:
			params.Lens = value
		}
		return m, m.applyParams(params, kind)
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func filterLabel(kind filterKind) string {
	switch kind {
	case filterTag:
		return "tag"
	case filterCamera:
		return "camera"
	case filterLens:
		return "lens"
	}
	return ""
}

func filterValue(p photos.Params, kind filterKind) string {
	switch kind {
	case filterTag:
		return p.Tag
	case filterCamera:
		return p.Camera
	case filterLens:
		return p.Lens
	}
	return ""
}

// gridColumns returns the number of grid columns, 1 in list layout.
func (m Model) gridColumns() int {
	if m.layout != LayoutGrid {
		return 1
	}
	return max(m.width/GridCellWidth, 1)
}

// renderListing renders the listing body at exactly bodyHeight lines.
func (m Model) renderListing() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()

	var lines []string
	if m.prompt != filterNone {
		lines = append(lines, styles.SurfaceAlt.Width(m.width).Render(m.filterInput.View()))
		height--
	}

	v := m.feed.Snapshot()
	status := m.listingStatus(v.Len(), v.Loading, v.HasMore, v.Err)
	if status != "" {
		height--
	}

	switch {
	case v.Len() == 0:
		// status carries the empty state
	case m.layout == LayoutGrid:
		lines = append(lines, m.renderGrid(v.Items, height))
	default:
		lines = append(lines, m.renderList(v.Items, height)...)
	}

	body := strings.Join(lines, "\n")
	if status != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, status)
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
}

// listingStatus is the line under the listing: loading, error, or end.
func (m Model) listingStatus(count int, loading, hasMore bool, err error) string {
	styles := m.theme.Styles()
	switch {
	case loading:
		label := ternary(count == 0, "Loading photos...", "Loading more...")
		return m.spinner.View() + " " + styles.MutedText.Render(label)
	case err != nil:
		msg := photos.ErrorMessage(err, "Could not load photos")
		return styles.DangerText.Render(msg) + styles.MutedText.Render("  (m to retry)")
	case count == 0 && !hasMore:
		return styles.MutedText.Render("No photos")
	case !hasMore:
		return styles.FaintText.Render(fmt.Sprintf("End of listing, %s", formatCount(count, false)))
	}
	return ""
}

func (m Model) renderList(items []photos.Photo, height int) []string {
	styles := m.theme.Styles()
	height = max(height, 1)
	start := max(m.selected-height+1, 0)
	end := min(start+height, len(items))

	compact := m.width < LayoutCompactWidth
	titleWidth := max(m.width-14, 10)
	if !compact {
		titleWidth = max(m.width-14-28-24, 16)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p := items[i]
		row := padRight(formatDate(p.TakenAt), 12) + padRight(truncate(p.DisplayTitle(), titleWidth), titleWidth)
		if !compact {
			row += "  " + padRight(truncate(p.Camera, 26), 26)
			row += "  " + truncate(strings.Join(p.Tags, ", "), 22)
		}
		if p.Hidden {
			row = "◌ " + row
		} else {
			row = "  " + row
		}
		if i == m.selected {
			lines = append(lines, styles.Selected.Width(m.width).Render(row))
		} else {
			lines = append(lines, styles.Text.Render(row))
		}
	}
	return lines
}

func (m Model) renderGrid(items []photos.Photo, height int) string {
	styles := m.theme.Styles()
	cols := m.gridColumns()
	visibleRows := max(height/GridCellHeight, 1)
	selRow := m.selected / cols
	startRow := max(selRow-visibleRows+1, 0)

	inner := GridCellWidth - 2
	var rows []string
	for r := startRow; r < startRow+visibleRows; r++ {
		var cells []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(items) {
				break
			}
			p := items[i]
			content := strings.Join([]string{
				styles.Text.Bold(true).Render(truncate(p.DisplayTitle(), inner)),
				styles.MutedText.Render(truncate(formatDate(p.TakenAt), inner)),
				styles.FaintText.Render(truncate(p.Camera, inner)),
			}, "\n")
			cell := styles.Cell
			if i == m.selected {
				cell = styles.SelectedCell
			}
			cells = append(cells, cell.Width(inner).Height(GridCellHeight-2).Render(content))
		}
		if len(cells) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
