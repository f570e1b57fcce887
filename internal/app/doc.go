// Package app is the composition root of loupe.
//
// # Startup
//
// Run wires the pieces together in this order:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read ~/.config/loupe/config.toml
//	       ├─────> prefs.Load()           Theme and sort order
//	       ├─────> tea.LogToFile()        Route log output away from the TUI
//	       ├─────> photos.NewClient()     HTTP client for the photo server
//	       ├─────> session.Prune()        Drop sessions of closed terminals
//	       ├─────> navigation.NewQueue()  Restore this terminal's queue
//	       ├─────> pagecache.New()        Listing pages keyed by params
//	       ├─────> StartPoller()          Connectivity checks
//	       └─────> ui.Run()               Start TUI (blocks)
//
// The store, the queue and the page cache share one state.Store as their
// notifier, so every failed fetch surfaces in the UI footer.
//
// # Polling
//
// The poller asks the server for a single photo on a fixed cadence (default
// 15 seconds) and records the outcome in the store. Consecutive failures
// double the delay up to 30 seconds; the UI shows the server as offline
// after two of them. Polling never blocks browsing: listing and detail
// fetches go straight to the server regardless of the poll state.
//
// # Errors
//
// Only configuration, log file and client setup errors are fatal. Everything
// after startup is logged and, where the user should know, turned into a
// notice.
//
// # Sessions
//
// ShowSession and ClearSession back the "loupe session" commands. They
// resolve the session id the same way Run does, so running them from the
// terminal that hosts loupe addresses its queue.
package app
