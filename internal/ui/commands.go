package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/loupe/internal/navigation"
	"github.com/five82/loupe/internal/pagecache"
	"github.com/five82/loupe/internal/photos"
	"github.com/five82/loupe/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// pageLoadedMsg reports a finished listing load for the entry key.
type pageLoadedMsg struct {
	key string
	err error
}

// photoLoadedMsg carries the result of a single photo fetch.
type photoLoadedMsg struct {
	id    string
	photo photos.Photo
	err   error
}

// openPhotoMsg asks the detail view to show id in place of the current photo.
type openPhotoMsg struct {
	id string
}

// navChangedMsg reports a queue mutation.
type navChangedMsg struct{}

type navErrMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForEvent delivers the next message posted from outside the program
// loop. It must be re-armed after every delivery.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func loadPageCmd(ctx context.Context, feed *pagecache.Feed) tea.Cmd {
	return func() tea.Msg {
		key := feed.Key()
		err := feed.LoadMore(ctx)
		return pageLoadedMsg{key: key, err: err}
	}
}

func loadPhotoCmd(ctx context.Context, client photos.Fetcher, id string) tea.Cmd {
	return func() tea.Msg {
		photo, err := client.FetchPhoto(ctx, id)
		return photoLoadedMsg{id: id, photo: photo, err: err}
	}
}

// stepCmd moves from id in direction d. The controller reports the target
// through the event channel; only failures come back here.
func stepCmd(ctx context.Context, nav *navigation.Controller, id string, d navigation.Direction) tea.Cmd {
	return func() tea.Msg {
		if err := nav.Go(ctx, id, d); err != nil {
			return navErrMsg{err: err}
		}
		return nil
	}
}
