package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/loupe/internal/config"
	"github.com/five82/loupe/internal/logtail"
	"github.com/five82/loupe/internal/navigation"
	"github.com/five82/loupe/internal/pagecache"
	"github.com/five82/loupe/internal/photos"
	"github.com/five82/loupe/internal/prefs"
	"github.com/five82/loupe/internal/session"
	"github.com/five82/loupe/internal/state"
	"github.com/five82/loupe/internal/ui"
)

// Options configure the loupe application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/loupe/prefs.toml
	SessionID  string // empty derives one from the terminal
	Admin      bool   // include hidden photos
	OpenID     string // photo to open on start
	PollEvery  int    // seconds; zero uses default
}

// Run boots the loupe TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logFile, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	client, err := photos.NewClient(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("init photo client: %w", err)
	}

	store := &state.Store{}

	if n, err := session.Prune(cfg.SessionDir); err != nil {
		log.Printf("prune sessions: %v", err)
	} else if n > 0 {
		log.Printf("pruned %d stale sessions", n)
	}
	sessions := session.NewStore(cfg.SessionDir, session.ResolveID(opts.SessionID))

	queue := navigation.NewQueue(client, sessions, store)
	cache := pagecache.New(client, cfg.PageSize, store)

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartPoller(ctx, store, client, interval)

	log.Printf("loupe starting: server=%s session=%s", client.BaseURL(), sessions.ID())

	uiOpts := ui.Options{
		Context:    ctx,
		Client:     client,
		Store:      store,
		Cache:      cache,
		Queue:      queue,
		BaseParams: baseParams(cfg, userPrefs, opts.Admin),
		Admin:      opts.Admin,
		OpenID:     strings.TrimSpace(opts.OpenID),
		ThemeName:  userPrefs.Theme,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}

// baseParams is the home listing: sort from prefs, then config. Hidden
// photos only show in admin mode.
func baseParams(cfg config.Config, p prefs.Prefs, admin bool) photos.Params {
	params := photos.Params{OrderBy: cfg.Listing.OrderBy, Order: cfg.Listing.Order}
	if p.OrderBy != "" {
		params.OrderBy = p.OrderBy
	}
	if p.Order != "" {
		params.Order = p.Order
	}
	if !admin {
		params.Hidden = photos.Bool(false)
	}
	return params
}

// openLog routes the standard logger to path so log output never lands on
// the terminal the TUI owns.
func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "loupe")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ShowSession prints the stored navigation state of a session.
func ShowSession(w io.Writer, opts Options) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	rec, ok, err := store.Read()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "session: %s\n", store.ID())
	fmt.Fprintf(w, "file:    %s\n", store.Path())
	if !ok {
		fmt.Fprintln(w, "state:   none")
		return nil
	}
	fmt.Fprintf(w, "saved:   %s\n", rec.SavedAt.Local().Format(time.DateTime))
	if rec.State.Context == nil {
		fmt.Fprintln(w, "context: none")
		return nil
	}
	more := ""
	if rec.State.HasMore {
		more = " (more available)"
	}
	fmt.Fprintf(w, "context: %s\n", rec.State.Context.Label())
	fmt.Fprintf(w, "photos:  %d loaded%s\n", len(rec.State.IDs), more)
	fmt.Fprintf(w, "offset:  %d, page size %d\n", rec.State.Offset, rec.State.Limit)
	return nil
}

// ClearSession removes the stored navigation state of a session.
func ClearSession(opts Options) error {
	store, err := sessionStore(opts)
	if err != nil {
		return err
	}
	return store.Clear()
}

func sessionStore(opts Options) (*session.Store, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return session.NewStore(cfg.SessionDir, session.ResolveID(opts.SessionID)), nil
}

// ShowLogs prints the last lines of the log file, optionally only those
// containing match.
func ShowLogs(w io.Writer, opts Options, lines int, match string) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	entries, err := logtail.Read(cfg.LogFile, lines, match)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.At.IsZero() {
			fmt.Fprintln(w, e.Message)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", e.At.Format(time.DateTime), e.Message)
	}
	return nil
}
