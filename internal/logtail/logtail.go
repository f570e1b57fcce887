package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Prefix is the tag loupe writes before every log line.
const Prefix = "loupe "

const timestampLayout = "2006/01/02 15:04:05"

// Entry is one parsed log line. Lines that do not carry the loupe prefix
// and timestamp keep their text in Message with a zero At.
type Entry struct {
	At      time.Time
	Message string
}

// Notice reports whether the entry records a user-facing notice.
func (e Entry) Notice() bool {
	return strings.HasPrefix(e.Message, "notice: ")
}

// Parse splits a line written by the standard logger with the loupe prefix.
func Parse(line string) Entry {
	rest, ok := strings.CutPrefix(line, Prefix)
	if !ok || len(rest) < len(timestampLayout) {
		return Entry{Message: line}
	}
	at, err := time.ParseInLocation(timestampLayout, rest[:len(timestampLayout)], time.Local)
	if err != nil {
		return Entry{Message: line}
	}
	return Entry{At: at, Message: strings.TrimSpace(rest[len(timestampLayout):])}
}

// Read returns at most maxLines entries from the end of the log at path
// that contain match. An empty match keeps every line. A missing file
// reads as empty.
func Read(path string, maxLines int, match string) ([]Entry, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || (match != "" && !strings.Contains(line, match)) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	start := 0
	if count == maxLines {
		start = idx
	}
	entries := make([]Entry, count)
	for i := range entries {
		entries[i] = Parse(ring[(start+i)%maxLines])
	}
	return entries, nil
}
