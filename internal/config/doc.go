// Package config loads loupe's TOML configuration file.
//
// # Resolution
//
// Load follows this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/loupe/config.toml
//  3. If the file doesn't exist, use the defaults
//  4. If the file exists but fields are missing or empty, use the defaults
//     for those fields
//
// # Fields
//
//	server_url  = "http://127.0.0.1:3000"          # photo server
//	page_size   = 12                               # photos per listing page
//	session_dir = "~/.cache/loupe/sessions"        # navigation sessions
//	log_file    = "~/.local/state/loupe/loupe.log"
//
//	[listing]
//	order_by = "takenAt"   # passed through to the server
//	order    = "desc"      # "asc" or "desc"
//
// Paths accept a leading tilde and are made absolute. An unknown order value
// is dropped so the server picks its default.
//
// # Errors
//
// Missing files are not an error. Load fails when the home directory cannot
// be resolved, the file cannot be read, or the TOML does not parse.
package config
