package navigation

import (
	"fmt"
	"slices"

	"github.com/five82/loupe/internal/photos"
)

// DefaultLimit is the extension page size of a cleared queue.
const DefaultLimit = 12

// Type names the kind of listing a context came from.
type Type string

const (
	TypeHome   Type = "home"
	TypeTag    Type = "tag"
	TypeCamera Type = "camera"
	TypeLens   Type = "lens"
	TypeGrid   Type = "grid"
	TypeAdmin  Type = "admin"
	TypeDirect Type = "direct"
)

// Valid reports whether t is one of the known listing types.
func (t Type) Valid() bool {
	switch t {
	case TypeHome, TypeTag, TypeCamera, TypeLens, TypeGrid, TypeAdmin, TypeDirect:
		return true
	}
	return false
}

// Context identifies the listing whose order the queue follows.
type Context struct {
	Type   Type          `json:"type"`
	Params photos.Params `json:"params"`
}

// Label is a short human description such as "tag: street".
func (c Context) Label() string {
	switch c.Type {
	case TypeTag:
		return fmt.Sprintf("tag: %s", c.Params.Tag)
	case TypeCamera:
		return fmt.Sprintf("camera: %s", c.Params.Camera)
	case TypeLens:
		return fmt.Sprintf("lens: %s", c.Params.Lens)
	}
	return string(c.Type)
}

// State is the persisted part of the navigation queue.
type State struct {
	Context *Context `json:"context"`
	IDs     []string `json:"ids"`
	HasMore bool     `json:"hasMore"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}

// EmptyState is the state with no active context.
func EmptyState() State {
	return State{IDs: []string{}, Limit: DefaultLimit}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Context != nil {
		c := *s.Context
		out.Context = &c
	}
	out.IDs = slices.Clone(s.IDs)
	if out.IDs == nil {
		out.IDs = []string{}
	}
	return out
}

// IndexOf returns the position of id, or -1.
func (s State) IndexOf(id string) int {
	return slices.Index(s.IDs, id)
}

// HasValidContext reports whether a context is active and contains id.
func (s State) HasValidContext(id string) bool {
	return s.Context != nil && s.IndexOf(id) >= 0
}

// HasPrev reports whether id has a predecessor.
func (s State) HasPrev(id string) bool {
	return s.IndexOf(id) > 0
}

// HasNext reports whether id has a successor, loaded or still on the server.
func (s State) HasNext(id string) bool {
	idx := s.IndexOf(id)
	if idx == -1 {
		return false
	}
	if idx < len(s.IDs)-1 {
		return true
	}
	return s.HasMore
}

// PrevID returns the id before id.
func (s State) PrevID(id string) (string, bool) {
	idx := s.IndexOf(id)
	if idx <= 0 {
		return "", false
	}
	return s.IDs[idx-1], true
}

// loadedNext returns the id after id if it is already loaded.
func (s State) loadedNext(id string) (string, bool) {
	idx := s.IndexOf(id)
	if idx == -1 || idx >= len(s.IDs)-1 {
		return "", false
	}
	return s.IDs[idx+1], true
}

// normalize repairs a state read from storage. Well-formed states pass
// through unchanged.
func (s State) normalize() State {
	if s.Context == nil || !s.Context.Type.Valid() {
		return EmptyState()
	}
	s = s.Clone()
	s.IDs = appendUnique(nil, s.IDs)
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.Offset < len(s.IDs) {
		s.Offset = len(s.IDs)
	}
	return s
}

// appendUnique appends the ids not already present in dst.
func appendUnique(dst []string, ids []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(ids))
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	if dst == nil {
		dst = make([]string, 0, len(ids))
	}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

// Position describes where an id sits in the queue, for display.
type Position struct {
	Index   int // -1 when the id is not in the queue
	Loaded  int
	HasMore bool
	Loading bool
}

// String renders the position as "3 / 12", with a "+" when more exist.
func (p Position) String() string {
	if p.Index < 0 {
		return ""
	}
	suffix := ""
	if p.HasMore {
		suffix = "+"
	}
	return fmt.Sprintf("%d / %d%s", p.Index+1, p.Loaded, suffix)
}
