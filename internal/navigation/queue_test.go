package navigation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/loupe/internal/photos"
)

// fakeFetcher serves photos "p0".."p<total-1>" and records every request.
// When gate is set, each fetch blocks until it is closed.
type fakeFetcher struct {
	mu      sync.Mutex
	total   int
	calls   []photos.PageQuery
	err     error
	gate    chan struct{}
	started chan struct{}
	extra   []photos.Photo // prepended to the next page, once
}

func (f *fakeFetcher) FetchPhotos(ctx context.Context, q photos.PageQuery) ([]photos.Photo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate, started, err, total := f.gate, f.started, f.err, f.total
	extra := f.extra
	f.extra = nil
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := append([]photos.Photo(nil), extra...)
	for i := q.Offset; i < total && len(out) < q.Limit; i++ {
		out = append(out, photos.Photo{ID: fmt.Sprintf("p%d", i)})
	}
	return out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() photos.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *recordingNotifier) Notify(title, _ string) {
	n.mu.Lock()
	n.titles = append(n.titles, title)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

type memPersister struct {
	mu    sync.Mutex
	state *State
	saves int
}

func (p *memPersister) Load() (State, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return State{}, false, nil
	}
	return p.state.Clone(), true, nil
}

func (p *memPersister) Save(s State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := s.Clone()
	p.state = &c
	p.saves++
	return nil
}

func photoRange(from, to int) []photos.Photo {
	out := make([]photos.Photo, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, photos.Photo{ID: fmt.Sprintf("p%d", i)})
	}
	return out
}

func tagContext(tag string) Context {
	return Context{Type: TypeTag, Params: photos.Params{Tag: tag}}
}

func TestNewQueueStartsEmpty(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	s := q.Snapshot()
	if s.Context != nil || len(s.IDs) != 0 || s.HasMore || s.Offset != 0 || s.Limit != DefaultLimit {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if q.HasValidContext("p0") {
		t.Fatal("empty queue should have no valid context")
	}
}

func TestSetContextDeduplicates(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	items := []photos.Photo{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}}
	q.SetContext(tagContext("x"), items, true, 0)

	s := q.Snapshot()
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(s.IDs, want) {
		t.Fatalf("ids = %v, want %v", s.IDs, want)
	}
	if s.Offset != 4 {
		t.Fatalf("offset = %d, want 4 (server rows)", s.Offset)
	}
	if s.Limit != DefaultLimit {
		t.Fatalf("limit = %d, want %d", s.Limit, DefaultLimit)
	}
}

func TestPrevNextSymmetry(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 5), false, 12)

	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("p%d", i)
		next, ok := q.NextID(context.Background(), id)
		if !ok {
			t.Fatalf("NextID(%s) missing", id)
		}
		prev, ok := q.PrevID(next)
		if !ok || prev != id {
			t.Fatalf("PrevID(NextID(%s)) = %q, %v", id, prev, ok)
		}
	}

	if q.HasPrev("p0") {
		t.Fatal("first id should have no prev")
	}
	if _, ok := q.PrevID("p0"); ok {
		t.Fatal("PrevID of first id should be absent")
	}
	if q.HasNext("p4") {
		t.Fatal("last id without more should have no next")
	}
	if _, ok := q.NextID(context.Background(), "missing"); ok {
		t.Fatal("NextID of unknown id should be absent")
	}
	if q.IndexOf("missing") != -1 {
		t.Fatal("IndexOf unknown should be -1")
	}
}

func TestNextIDExtendsAtBoundary(t *testing.T) {
	f := &fakeFetcher{total: 17}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)

	if !q.HasNext("p11") {
		t.Fatal("last loaded id should report a next while more exist")
	}
	next, ok := q.NextID(context.Background(), "p11")
	if !ok || next != "p12" {
		t.Fatalf("NextID(p11) = %q, %v; want p12", next, ok)
	}
	if f.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", f.callCount())
	}
	got := f.lastCall()
	if got.Offset != 12 || got.Limit != 12 || got.Params.Tag != "x" {
		t.Fatalf("query = %+v", got)
	}

	s := q.Snapshot()
	if len(s.IDs) != 17 || s.Offset != 17 || s.HasMore {
		t.Fatalf("state after extension = %d ids, offset %d, hasMore %v", len(s.IDs), s.Offset, s.HasMore)
	}
}

func TestNextIDAtEndOfData(t *testing.T) {
	f := &fakeFetcher{total: 3}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 3), false, 12)

	if _, ok := q.NextID(context.Background(), "p2"); ok {
		t.Fatal("expected no next at end of data")
	}
	if f.callCount() != 0 {
		t.Fatalf("end of data should not fetch, got %d calls", f.callCount())
	}
}

func TestLoadMoreExactMultiple(t *testing.T) {
	f := &fakeFetcher{total: 24}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)

	q.LoadMore(context.Background())
	if s := q.Snapshot(); !s.HasMore || len(s.IDs) != 24 {
		t.Fatalf("full page should keep hasMore: %+v", s)
	}
	if _, ok := q.NextID(context.Background(), "p23"); ok {
		t.Fatal("empty page should produce no next")
	}
	s := q.Snapshot()
	if s.HasMore {
		t.Fatal("empty page should clear hasMore")
	}
	if f.callCount() != 2 {
		t.Fatalf("calls = %d, want 2", f.callCount())
	}

	q.LoadMore(context.Background())
	if f.callCount() != 2 {
		t.Fatal("hasMore=false must not fetch again")
	}
}

func TestLoadMoreWithoutContextIsNoop(t *testing.T) {
	f := &fakeFetcher{total: 10}
	q := NewQueue(f, nil, nil)
	q.LoadMore(context.Background())
	if f.callCount() != 0 {
		t.Fatalf("calls = %d, want 0", f.callCount())
	}
}

func TestLoadMoreSkipsDuplicates(t *testing.T) {
	f := &fakeFetcher{total: 30, extra: []photos.Photo{{ID: "p3"}}}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)

	q.LoadMore(context.Background())
	s := q.Snapshot()
	seen := map[string]bool{}
	for _, id := range s.IDs {
		if seen[id] {
			t.Fatalf("duplicate id %s in %v", id, s.IDs)
		}
		seen[id] = true
	}
	if len(s.IDs) != 23 {
		t.Fatalf("ids = %d, want 23", len(s.IDs))
	}
	if s.Offset != 24 {
		t.Fatalf("offset = %d, want 24 (rows returned, duplicates included)", s.Offset)
	}
	if !s.HasMore {
		t.Fatal("a full page with a duplicate must keep hasMore")
	}
}

func TestLoadMoreFailureLeavesState(t *testing.T) {
	f := &fakeFetcher{total: 30, err: errors.New("boom")}
	n := &recordingNotifier{}
	q := NewQueue(f, nil, n)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)
	before := q.Snapshot()

	if _, ok := q.NextID(context.Background(), "p11"); ok {
		t.Fatal("failed extension should produce no next")
	}
	if got := q.Snapshot(); !reflect.DeepEqual(got, before) {
		t.Fatalf("state changed on failure: %+v", got)
	}
	if n.count() != 1 {
		t.Fatalf("notices = %d, want 1", n.count())
	}
	if q.Loading() {
		t.Fatal("loading should be released after failure")
	}

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	if next, ok := q.NextID(context.Background(), "p11"); !ok || next != "p12" {
		t.Fatalf("retry NextID = %q, %v", next, ok)
	}
}

func TestLoadMoreSingleFlight(t *testing.T) {
	f := &fakeFetcher{total: 20, gate: make(chan struct{}), started: make(chan struct{}, 4)}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = q.NextID(context.Background(), "p11")
		}(i)
	}

	<-f.started
	if !q.Loading() {
		t.Fatal("expected loading while fetch is blocked")
	}
	// Give the other callers time to find the pending fetch.
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	if f.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", f.callCount())
	}
	for i, got := range results {
		if got != "p12" {
			t.Fatalf("caller %d got %q, want p12", i, got)
		}
	}
	if q.Loading() {
		t.Fatal("loading should be false after fetch")
	}
}

func TestContextSwitchDropsStaleExtension(t *testing.T) {
	f := &fakeFetcher{total: 30, gate: make(chan struct{}), started: make(chan struct{}, 1)}
	q := NewQueue(f, nil, nil)
	q.SetContext(tagContext("a"), photoRange(0, 12), true, 12)

	done := make(chan struct{})
	go func() {
		q.LoadMore(context.Background())
		close(done)
	}()
	<-f.started

	q.SetContext(tagContext("b"), []photos.Photo{{ID: "b0"}}, false, 12)
	close(f.gate)
	<-done

	s := q.Snapshot()
	if s.Context.Params.Tag != "b" || !reflect.DeepEqual(s.IDs, []string{"b0"}) || s.Offset != 1 {
		t.Fatalf("stale extension leaked into new context: %+v", s)
	}
}

func TestClearContext(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 3), true, 5)
	q.ClearContext()

	s := q.Snapshot()
	if !reflect.DeepEqual(s, EmptyState()) {
		t.Fatalf("cleared state = %+v", s)
	}
	if q.HasValidContext("p0") {
		t.Fatal("cleared queue should have no valid context")
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	p := &memPersister{}
	f := &fakeFetcher{total: 30}
	q := NewQueue(f, p, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)
	q.LoadMore(context.Background())

	want := q.Snapshot()
	if p.saves != 2 {
		t.Fatalf("saves = %d, want 2", p.saves)
	}

	reloaded := NewQueue(f, p, nil)
	if got := reloaded.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("reloaded = %+v, want %+v", got, want)
	}
	if reloaded.Loading() {
		t.Fatal("reloaded queue must not be loading")
	}
}

func TestRestoreRepairsStoredState(t *testing.T) {
	stored := State{
		Context: &Context{Type: TypeTag, Params: photos.Params{Tag: "x"}},
		IDs:     []string{"a", "a", "b"},
		Offset:  1,
		Limit:   0,
	}
	p := &memPersister{state: &stored}
	s := NewQueue(&fakeFetcher{}, p, nil).Snapshot()
	if !reflect.DeepEqual(s.IDs, []string{"a", "b"}) || s.Offset != 2 || s.Limit != DefaultLimit {
		t.Fatalf("restored = %+v", s)
	}

	bad := State{Context: &Context{Type: "bogus"}, IDs: []string{"a"}}
	p = &memPersister{state: &bad}
	if s := NewQueue(&fakeFetcher{}, p, nil).Snapshot(); s.Context != nil {
		t.Fatalf("unknown context type should be dropped: %+v", s)
	}
}

func TestSubscribe(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	var got []int
	unsubscribe := q.Subscribe(func(s State) { got = append(got, len(s.IDs)) })

	q.SetContext(tagContext("x"), photoRange(0, 3), false, 12)
	q.ClearContext()
	unsubscribe()
	q.SetContext(tagContext("x"), photoRange(0, 2), false, 12)

	if !reflect.DeepEqual(got, []int{3, 0}) {
		t.Fatalf("notifications = %v", got)
	}
}

func TestPosition(t *testing.T) {
	q := NewQueue(&fakeFetcher{}, nil, nil)
	q.SetContext(tagContext("x"), photoRange(0, 12), true, 12)

	tests := []struct {
		id   string
		want string
	}{
		{"p0", "1 / 12+"},
		{"p11", "12 / 12+"},
		{"nope", ""},
	}
	for _, tt := range tests {
		if got := q.Position(tt.id).String(); got != tt.want {
			t.Errorf("Position(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestContextLabel(t *testing.T) {
	tests := []struct {
		ctx  Context
		want string
	}{
		{Context{Type: TypeHome}, "home"},
		{Context{Type: TypeTag, Params: photos.Params{Tag: "street"}}, "tag: street"},
		{Context{Type: TypeCamera, Params: photos.Params{Camera: "X100V"}}, "camera: X100V"},
		{Context{Type: TypeLens, Params: photos.Params{Lens: "35mm"}}, "lens: 35mm"},
	}
	for _, tt := range tests {
		if got := tt.ctx.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
