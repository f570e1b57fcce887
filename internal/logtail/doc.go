// Package logtail reads the tail of loupe's log file.
//
// The TUI owns the terminal, so everything loupe logs goes to a file
// (see config log_file). Read returns the newest lines of that file,
// optionally filtered by a substring, parsed into Entry values with the
// timestamp split from the message. The `loupe logs` command prints them.
package logtail
