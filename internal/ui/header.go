package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top bar: logo, where the user is, connectivity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	left := []string{bg.Render("loupe", styles.Logo)}
	switch m.currentView {
	case ViewDetail:
		left = append(left, m.detailHeaderParts(styles, bg)...)
	default:
		left = append(left, m.listingHeaderParts(styles, bg)...)
	}

	leftText := bg.Join(left, 2)
	right := m.connectivity(styles, bg)
	gap := m.width - lipgloss.Width(leftText) - lipgloss.Width(right) - 2
	content := leftText + bg.Spaces(max(gap, 1)) + right

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(content)
}

func (m Model) listingHeaderParts(styles Styles, bg BgStyle) []string {
	v := m.feed.Snapshot()
	parts := []string{
		bg.Render(m.listingContext().Label(), styles.AccentText.Bold(true)),
		bg.Render(formatCount(v.Len(), v.HasMore), styles.Text),
		bg.Render(sortOption{v.Params.OrderBy, v.Params.Order}.label(), styles.MutedText),
	}
	if v.Loading {
		parts = append(parts, bg.Render(m.spinner.View(), styles.InfoText))
	}
	return parts
}

func (m Model) detailHeaderParts(styles Styles, bg BgStyle) []string {
	id := m.detail.id
	if !m.queue.HasValidContext(id) {
		return []string{bg.Render("single photo", styles.MutedText)}
	}
	snap := m.queue.Snapshot()
	if snap.Context == nil {
		return nil
	}
	pos := m.queue.Position(id)
	parts := []string{
		bg.Render(snap.Context.Label(), styles.AccentText.Bold(true)),
		bg.Render(pos.String(), styles.Text),
	}
	if pos.Loading {
		parts = append(parts, bg.Render(m.spinner.View()+" loading more", styles.InfoText))
	}
	return parts
}

// connectivity renders the poll status.
func (m Model) connectivity(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return bg.Render("OFFLINE", styles.DangerText)
	case snap.LastError != nil:
		return bg.Render("RETRYING", styles.WarningText.Bold(true))
	case snap.LastChecked.IsZero():
		return bg.Render("connecting", styles.MutedText)
	}
	return bg.Render("online", styles.SuccessText)
}

// renderFooter shows the newest notice for a few seconds, otherwise key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var content string
	if n, ok := m.snapshot.LatestNotice(); ok && time.Since(n.At) < NoticeTTL {
		content = bg.Render(n.Title+":", styles.DangerText) + bg.Spaces(1) + bg.Render(n.Message, styles.Text)
	} else {
		content = bg.Render(m.keyHints(), styles.MutedText)
	}
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(content)
}

// keyHints lists the bindings that apply to the current view.
func (m Model) keyHints() string {
	var bindings []key.Binding
	switch {
	case m.prompt != filterNone:
		bindings = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case m.currentView == ViewDetail:
		nk := m.nav.Keys()
		bindings = []key.Binding{nk.Prev, nk.Next, m.keys.Back, m.keys.Help}
	default:
		bindings = m.keys.ShortHelp()
		if m.filter != filterNone {
			bindings = append(bindings, m.keys.ClearFilter)
		}
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s %s", h.Key, strings.ToLower(h.Desc)))
	}
	return strings.Join(hints, "  ")
}
