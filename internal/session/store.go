// Package session persists the navigation queue of one terminal session to
// disk, so a restarted loupe in the same terminal resumes where it left off.
// Each session has its own JSON file; writes are atomic and serialized across
// processes with a file lock.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/five82/loupe/internal/navigation"
)

const (
	// RecordVersion is written into every session file.
	RecordVersion = 1

	// EnvSessionID overrides the derived session id.
	EnvSessionID = "LOUPE_SESSION"

	// LockTimeout bounds the wait for the directory lock. Past it the
	// operation proceeds unlocked so the UI never hangs on a stuck lock.
	LockTimeout = 100 * time.Millisecond

	ppidPrefix = "ppid-"
)

// Record is the on-disk form of a session.
type Record struct {
	Version int              `json:"version"`
	SavedAt time.Time        `json:"savedAt"`
	State   navigation.State `json:"state"`
}

// Store reads and writes one session file. It implements
// navigation.Persister.
type Store struct {
	dir string
	id  string
}

var _ navigation.Persister = (*Store)(nil)

// NewStore returns the store for session id under dir.
func NewStore(dir, id string) *Store {
	return &Store{dir: dir, id: sanitizeID(id)}
}

// ID returns the session id.
func (s *Store) ID() string { return s.id }

// Dir returns the session directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the session file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.id+".json")
}

// Load reads the stored state. A missing or unreadable file reports ok=false
// without an error; only I/O failures other than absence are returned.
func (s *Store) Load() (navigation.State, bool, error) {
	rec, ok, err := s.Read()
	if err != nil || !ok {
		return navigation.State{}, false, err
	}
	return rec.State, true, nil
}

// Read returns the full record.
func (s *Store) Read() (Record, bool, error) {
	lock, err := acquireLock(s.dir)
	if err != nil {
		return Record{}, false, err
	}
	defer lock.release()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt file: start over.
		return Record{}, false, nil
	}
	if rec.Version != RecordVersion {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Save writes state atomically.
func (s *Store) Save(state navigation.State) error {
	lock, err := acquireLock(s.dir)
	if err != nil {
		return err
	}
	defer lock.release()

	data, err := json.MarshalIndent(Record{
		Version: RecordVersion,
		SavedAt: time.Now().UTC(),
		State:   state,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	path := s.Path()
	tmp := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if runtime.GOOS == "windows" {
		_ = os.Remove(path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (s *Store) Clear() error {
	lock, err := acquireLock(s.dir)
	if err != nil {
		return err
	}
	defer lock.release()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ResolveID picks the session id: the explicit flag value, then
// $LOUPE_SESSION, then one derived from the parent process (the shell), so
// every terminal gets its own queue.
func ResolveID(flag string) string {
	if id := sanitizeID(flag); id != "" {
		return id
	}
	if id := sanitizeID(os.Getenv(EnvSessionID)); id != "" {
		return id
	}
	return ppidPrefix + strconv.Itoa(os.Getppid())
}

// Prune removes files of derived sessions whose terminal process has exited.
// It returns the number of files removed.
func Prune(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("prune sessions: %w", err)
	}

	lock, err := acquireLock(dir)
	if err != nil {
		return 0, err
	}
	defer lock.release()

	removed := 0
	for _, e := range entries {
		pid, ok := derivedPID(e.Name())
		if !ok || isProcessAlive(pid) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// derivedPID extracts the pid from a "ppid-<n>.json" file name.
func derivedPID(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, ppidPrefix)
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, false
	}
	pid, err := strconv.Atoi(rest)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// sanitizeID keeps ids safe to use as file names.
func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}

type dirLock struct {
	fl *flock.Flock
}

// acquireLock takes the directory lock. It returns an empty lock, not an
// error, when the timeout passes first.
func acquireLock(dir string) (*dirLock, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	fl := flock.New(filepath.Join(dir, ".lock"))
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &dirLock{}, nil
		}
		return nil, fmt.Errorf("lock session dir: %w", err)
	}
	if !locked {
		return &dirLock{}, nil
	}
	return &dirLock{fl: fl}, nil
}

func (l *dirLock) release() {
	if l == nil || l.fl == nil {
		return
	}
	_ = l.fl.Unlock()
}
