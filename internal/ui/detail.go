package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/loupe/internal/navigation"
	"github.com/five82/loupe/internal/photos"
)

// openPhoto shows id in the detail view, replacing whatever was there.
// A copy already loaded by the listing is shown while the fresh one loads.
func (m *Model) openPhoto(id string) tea.Cmd {
	m.currentView = ViewDetail
	m.nav.Attach()
	m.detail = detailState{id: id, loading: true}

	items := m.feed.Items()
	for i, p := range items {
		if p.ID == id {
			m.detail.photo = p
			m.detail.hasPhoto = true
			m.selected = i
			break
		}
	}

	m.detailViewport.GotoTop()
	m.updateDetailViewport()
	return loadPhotoCmd(m.ctx, m.client, id)
}

func (m *Model) closeDetail() {
	m.currentView = ViewListing
	m.nav.Detach()
	m.clampSelection()
}

// handlePhotoLoaded applies a fetch result if it is for the photo on screen.
func (m *Model) handlePhotoLoaded(msg photoLoadedMsg) {
	if msg.id != m.detail.id {
		return
	}
	m.detail.loading = false

	switch {
	case errors.Is(msg.err, photos.ErrNotFound):
		m.detail.notFound = true
		m.detail.hasPhoto = false
	case msg.err != nil:
		m.detail.err = msg.err
		if m.store != nil && !errors.Is(msg.err, context.Canceled) {
			m.store.Notify("Failed to load photo", photos.ErrorMessage(msg.err, "Could not load photo"))
		}
	default:
		m.detail.photo = msg.photo
		m.detail.hasPhoto = true
		m.detail.err = nil
	}
	m.updateDetailViewport()
}

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter prompt only opens from the listing and handleKey routes its
	// keys first, so the focus flag is false here in practice.
	switch d := m.nav.Direction(msg.String(), m.filterInput.Focused()); d {
	case navigation.Prev, navigation.Next:
		return m, stepCmd(m.ctx, m.nav, m.detail.id, d)
	}

	if key.Matches(msg, m.keys.Back) {
		m.closeDetail()
		return m, m.maybeAutoLoad()
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.SetContent(m.detailContent())
}

// renderDetail renders the detail body.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	var body string
	switch {
	case m.detail.hasPhoto:
		body = m.detailViewport.View()
	case m.detail.notFound:
		body = styles.WarningText.Render("Photo not found") + "\n" +
			styles.MutedText.Render(m.detail.id)
	case m.detail.err != nil:
		body = styles.DangerText.Render(photos.ErrorMessage(m.detail.err, "Could not load photo"))
	default:
		body = m.spinner.View() + " " + styles.MutedText.Render("Loading photo...")
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
}

// detailContent builds the scrollable metadata block of the current photo.
func (m Model) detailContent() string {
	if !m.detail.hasPhoto {
		return ""
	}
	p := m.detail.photo
	styles := m.theme.Styles()
	width := max(m.width-2, 20)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.DisplayTitle()))
	b.WriteString("\n")
	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString(styles.Text.Width(width).Render(desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(styles.MutedText.Render(padRight(label, 10)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}
	field("Camera", p.Camera)
	field("Lens", p.Lens)
	field("Exposure", formatExposure(p))
	field("Size", formatDimensions(p.Width, p.Height))
	field("Taken", formatDateTime(p.TakenAt))
	if !p.CreatedAt.IsZero() {
		field("Added", formatDateTime(p.CreatedAt))
	}
	if len(p.Tags) > 0 {
		chips := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			chips = append(chips, styles.Tag.Render(t))
		}
		field("Tags", strings.Join(chips, " "))
	}
	if p.Hidden {
		field("Visibility", styles.WarningText.Render("hidden"))
	}
	field("URL", p.URL)
	field("ID", p.ID)

	if m.detail.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("Showing cached copy: " + photos.ErrorMessage(m.detail.err, "refresh failed")))
	}
	return strings.TrimRight(b.String(), "\n")
}
