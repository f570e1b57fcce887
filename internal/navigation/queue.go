package navigation

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/five82/loupe/internal/photos"
)

// Persister stores the queue state for the browsing session. Load reports
// ok=false when nothing has been stored yet.
type Persister interface {
	Load() (state State, ok bool, err error)
	Save(state State) error
}

// Notifier receives user-facing error notices. Calls are fire and forget.
type Notifier interface {
	Notify(title, message string)
}

// extension is the in-flight extension fetch; done closes when it finishes.
type extension struct {
	done chan struct{}
}

// Queue is the ordered id sequence of the active browsing context. It answers
// prev/next questions and grows itself a page at a time when asked for the
// next id past the loaded end.
//
// All methods are safe for concurrent use. Mutations are persisted and
// published to subscribers after they are applied.
type Queue struct {
	mu         sync.RWMutex
	state      State
	generation uint64 // bumped by SetContext and ClearContext
	pending    *extension

	fetcher   photos.PageFetcher
	persister Persister
	notifier  Notifier

	commitMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

// NewQueue creates a queue, restoring the last state saved by persister.
// persister and notifier may be nil.
func NewQueue(fetcher photos.PageFetcher, persister Persister, notifier Notifier) *Queue {
	q := &Queue{
		state:     EmptyState(),
		fetcher:   fetcher,
		persister: persister,
		notifier:  notifier,
		subs:      make(map[int]func(State)),
	}
	if persister != nil {
		restored, ok, err := persister.Load()
		switch {
		case err != nil:
			log.Printf("restore navigation state: %v", err)
		case ok:
			q.state = restored.normalize()
		}
	}
	return q
}

// SetContext replaces the whole state with the listing's current view:
// the ids of items in order, its hasMore flag and its page size.
//
// Listings call this every time their loaded set changes; a queue that is
// not kept in sync silently drifts from what the user sees.
func (q *Queue) SetContext(c Context, items []photos.Photo, hasMore bool, limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	next := State{
		Context: &c,
		IDs:     appendUnique(nil, photos.IDs(items)),
		HasMore: hasMore,
		Offset:  len(items),
		Limit:   limit,
	}

	q.mu.Lock()
	q.state = next
	q.generation++
	q.mu.Unlock()

	q.commit()
}

// ClearContext drops the active context.
func (q *Queue) ClearContext() {
	q.mu.Lock()
	q.state = EmptyState()
	q.generation++
	q.mu.Unlock()

	q.commit()
}

// Snapshot returns a copy of the current state.
func (q *Queue) Snapshot() State {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.Clone()
}

// Loading reports whether an extension fetch is in flight.
func (q *Queue) Loading() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pending != nil
}

// HasValidContext reports whether a context is active and contains id.
func (q *Queue) HasValidContext(id string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.HasValidContext(id)
}

// IndexOf returns the position of id, or -1.
func (q *Queue) IndexOf(id string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.IndexOf(id)
}

// HasPrev reports whether id has a predecessor.
func (q *Queue) HasPrev(id string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.HasPrev(id)
}

// HasNext reports whether id has a successor, loaded or not.
func (q *Queue) HasNext(id string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.HasNext(id)
}

// PrevID returns the id before id.
func (q *Queue) PrevID(id string) (string, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.PrevID(id)
}

// Position reports where id sits in the queue.
func (q *Queue) Position(id string) Position {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return Position{
		Index:   q.state.IndexOf(id),
		Loaded:  len(q.state.IDs),
		HasMore: q.state.HasMore,
		Loading: q.pending != nil,
	}
}

// NextID returns the id after id. When id is the last loaded one and the
// server has more, it blocks on an extension fetch first. It returns false
// when id is unknown, at the end of the data, or when the fetch failed or
// produced nothing.
func (q *Queue) NextID(ctx context.Context, id string) (string, bool) {
	q.mu.RLock()
	if q.state.IndexOf(id) == -1 {
		q.mu.RUnlock()
		return "", false
	}
	if next, ok := q.state.loadedNext(id); ok {
		q.mu.RUnlock()
		return next, true
	}
	hasMore := q.state.HasMore
	q.mu.RUnlock()

	if !hasMore {
		return "", false
	}
	q.LoadMore(ctx)

	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state.loadedNext(id)
}

// LoadMore fetches the next page of the active context and appends its ids.
// At most one fetch runs at a time: a caller arriving while one is in flight
// waits for it instead of issuing another. It does nothing without a context
// or once the server has no more items.
//
// Failures are reported to the notifier and leave the state as it was, so
// calling again retries. A result that arrives after the context was
// replaced is dropped.
func (q *Queue) LoadMore(ctx context.Context) {
	q.mu.Lock()
	if p := q.pending; p != nil {
		q.mu.Unlock()
		select {
		case <-p.done:
		case <-ctx.Done():
		}
		return
	}
	if q.state.Context == nil || !q.state.HasMore {
		q.mu.Unlock()
		return
	}
	p := &extension{done: make(chan struct{})}
	q.pending = p
	gen := q.generation
	query := photos.PageQuery{
		Params: q.state.Context.Params,
		Limit:  q.state.Limit,
		Offset: q.state.Offset,
	}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.pending = nil
		q.mu.Unlock()
		close(p.done)
	}()

	items, err := q.fetcher.FetchPhotos(ctx, query)
	if err != nil {
		log.Printf("extend navigation queue at offset %d: %v", query.Offset, err)
		if !errors.Is(err, context.Canceled) && q.notifier != nil {
			q.notifier.Notify("Failed to load", photos.ErrorMessage(err, "Could not load more photos"))
		}
		return
	}

	q.mu.Lock()
	if q.generation != gen {
		q.mu.Unlock()
		log.Printf("navigation context changed during extension; dropping %d photos", len(items))
		return
	}
	q.state.IDs = appendUnique(q.state.IDs, photos.IDs(items))
	q.state.Offset += len(items)
	if len(items) < query.Limit {
		q.state.HasMore = false
	}
	q.mu.Unlock()

	q.commit()
}

// Subscribe registers fn to be called with a copy of the state after every
// mutation. fn runs on the mutating goroutine and must not block. The
// returned function removes the subscription.
func (q *Queue) Subscribe(fn func(State)) (unsubscribe func()) {
	q.subsMu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	q.subsMu.Unlock()

	return func() {
		q.subsMu.Lock()
		delete(q.subs, id)
		q.subsMu.Unlock()
	}
}

// commit persists and publishes the current state. commitMu orders commits
// so the last save always carries the newest state.
func (q *Queue) commit() {
	q.commitMu.Lock()
	defer q.commitMu.Unlock()

	snap := q.Snapshot()
	if q.persister != nil {
		if err := q.persister.Save(snap); err != nil {
			log.Printf("persist navigation state: %v", err)
		}
	}

	q.subsMu.Lock()
	subs := make([]func(State), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	q.subsMu.Unlock()

	for _, fn := range subs {
		fn(snap.Clone())
	}
}
