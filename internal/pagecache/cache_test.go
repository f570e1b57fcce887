package pagecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/five82/loupe/internal/photos"
)

// fakeFetcher serves a fixed number of photos per fingerprint and records
// every request. When gate is set, each fetch blocks until it is closed.
type fakeFetcher struct {
	mu      sync.Mutex
	total   map[string]int
	calls   []photos.PageQuery
	err     error
	gate    chan struct{}
	started chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{total: make(map[string]int)}
}

func (f *fakeFetcher) FetchPhotos(ctx context.Context, q photos.PageQuery) ([]photos.Photo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate, started, err := f.gate, f.started, f.err
	total, ok := f.total[q.Params.Fingerprint()]
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
	if !ok {
		total = 100
	}
	var out []photos.Photo
	for i := q.Offset; i < total && len(out) < q.Limit; i++ {
		out = append(out, photos.Photo{ID: fmt.Sprintf("%s-%d", q.Params.Tag, i)})
	}
	return out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, title+": "+message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

func TestGet_LazilyCreatesEmptyPage(t *testing.T) {
	c := New(newFakeFetcher(), 12, nil)
	if c.Has("{}") {
		t.Fatalf("Has before Get = true, want false")
	}
	p := c.Get("{}")
	if p.Len() != 0 || !p.HasMore() {
		t.Fatalf("new page = (%d items, hasMore %v), want (0, true)", p.Len(), p.HasMore())
	}
	if c.Get("{}") != p {
		t.Fatalf("Get returned a different page for the same key")
	}
}

func TestLoadMore_AppendsPagesUntilShortPage(t *testing.T) {
	f := newFakeFetcher()
	params := photos.Params{Tag: "street"}
	f.total[params.Fingerprint()] = 30
	c := New(f, 12, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.LoadMore(ctx, params); err != nil {
			t.Fatalf("LoadMore returned error: %v", err)
		}
	}

	page := c.Get(params.Fingerprint())
	if page.Len() != 30 {
		t.Fatalf("Len = %d, want 30", page.Len())
	}
	if page.HasMore() {
		t.Fatalf("HasMore = true after short page, want false")
	}
	if f.callCount() != 3 {
		t.Fatalf("fetch calls = %d, want 3 (12+12+6, then no-ops)", f.callCount())
	}
	wantOffsets := []int{0, 12, 24}
	for i, q := range f.calls {
		if q.Offset != wantOffsets[i] || q.Limit != 12 {
			t.Fatalf("call %d = offset %d limit %d, want offset %d limit 12", i, q.Offset, q.Limit, wantOffsets[i])
		}
	}
	items := page.Items()
	for i, item := range items {
		if want := fmt.Sprintf("street-%d", i); item.ID != want {
			t.Fatalf("items[%d] = %q, want %q", i, item.ID, want)
		}
	}
}

func TestLoadMore_ExactMultipleNeedsOneEmptyPage(t *testing.T) {
	f := newFakeFetcher()
	params := photos.Params{Tag: "a"}
	f.total[params.Fingerprint()] = 12
	c := New(f, 12, nil)

	_ = c.LoadMore(context.Background(), params)
	if !c.Get(params.Fingerprint()).HasMore() {
		t.Fatalf("HasMore = false after a full page, want true")
	}
	_ = c.LoadMore(context.Background(), params)
	if c.Get(params.Fingerprint()).HasMore() {
		t.Fatalf("HasMore = true after an empty page, want false")
	}
}

func TestLoadMore_FailureLeavesStateAndNotifies(t *testing.T) {
	f := newFakeFetcher()
	n := &recordingNotifier{}
	c := New(f, 12, n)
	params := photos.Params{}
	ctx := context.Background()

	if err := c.LoadMore(ctx, params); err != nil {
		t.Fatalf("LoadMore returned error: %v", err)
	}

	f.mu.Lock()
	f.err = errors.New("connection refused")
	f.mu.Unlock()

	if err := c.LoadMore(ctx, params); err == nil {
		t.Fatalf("LoadMore returned nil error, want failure")
	}
	page := c.Get(params.Fingerprint())
	if page.Len() != 12 || !page.HasMore() {
		t.Fatalf("page after failure = (%d, %v), want (12, true)", page.Len(), page.HasMore())
	}
	if c.Loading(params.Fingerprint()) {
		t.Fatalf("Loading = true after failure, want released")
	}
	if n.count() != 1 {
		t.Fatalf("notices = %d, want 1", n.count())
	}

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	if err := c.LoadMore(ctx, params); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if page.Len() != 24 {
		t.Fatalf("Len after retry = %d, want 24", page.Len())
	}
}

func TestLoadMore_SingleFlight(t *testing.T) {
	f := newFakeFetcher()
	f.gate = make(chan struct{})
	f.started = make(chan struct{}, 4)
	params := photos.Params{Tag: "x"}
	f.total[params.Fingerprint()] = 5
	c := New(f, 12, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.LoadMore(context.Background(), params)
	}()
	<-f.started
	if !c.Loading(params.Fingerprint()) {
		t.Fatalf("Loading = false during fetch, want true")
	}
	go func() {
		defer wg.Done()
		_ = c.LoadMore(context.Background(), params)
	}()
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	if f.callCount() != 1 {
		t.Fatalf("fetch calls = %d, want 1", f.callCount())
	}
	if got := c.Get(params.Fingerprint()).Len(); got != 5 {
		t.Fatalf("Len = %d, want 5", got)
	}
}

func TestFeed_SwitchRetainsEntries(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, 12, nil)
	ctx := context.Background()

	home := photos.Params{OrderBy: "takenAt", Order: "desc"}
	feed := NewFeed(c, home)
	if !feed.NeedsInitialLoad() {
		t.Fatalf("NeedsInitialLoad = false for fresh feed")
	}
	_ = feed.LoadMore(ctx)
	_ = feed.LoadMore(ctx)
	if len(feed.Items()) != 24 {
		t.Fatalf("home items = %d, want 24", len(feed.Items()))
	}

	tagged := photos.Params{Tag: "night", OrderBy: "takenAt", Order: "desc"}
	if !feed.SetParams(tagged) {
		t.Fatalf("SetParams to empty entry should ask for initial load")
	}
	if feed.SetParams(tagged) {
		t.Fatalf("SetParams to the same params should not ask for a load")
	}
	_ = feed.LoadMore(ctx)
	if len(feed.Items()) != 12 {
		t.Fatalf("tag items = %d, want 12", len(feed.Items()))
	}

	if feed.SetParams(home) {
		t.Fatalf("SetParams back to a loaded entry should not ask for a load")
	}
	if len(feed.Items()) != 24 {
		t.Fatalf("home items after switching back = %d, want 24", len(feed.Items()))
	}
	if f.callCount() != 3 {
		t.Fatalf("fetch calls = %d, want 3 (no refetch on return)", f.callCount())
	}
}

func TestFeed_ResultLandsInOriginalEntry(t *testing.T) {
	f := newFakeFetcher()
	f.gate = make(chan struct{})
	f.started = make(chan struct{}, 1)
	c := New(f, 12, nil)

	a := photos.Params{Tag: "a"}
	b := photos.Params{Tag: "b"}
	feed := NewFeed(c, a)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = feed.LoadMore(context.Background())
	}()
	<-f.started
	feed.SetParams(b)
	close(f.gate)
	<-done

	if got := c.Get(a.Fingerprint()).Len(); got != 12 {
		t.Fatalf("entry a = %d items, want 12", got)
	}
	if got := c.Get(b.Fingerprint()).Len(); got != 0 {
		t.Fatalf("entry b = %d items, want 0", got)
	}
	if feed.Key() != b.Fingerprint() {
		t.Fatalf("feed key = %s, want %s", feed.Key(), b.Fingerprint())
	}
}

func TestFeed_ErrIsPerFeedAndClearedOnSwitch(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("boom")
	c := New(f, 12, nil)
	feed := NewFeed(c, photos.Params{})
	other := NewFeed(c, photos.Params{})

	if err := feed.LoadMore(context.Background()); err == nil {
		t.Fatalf("LoadMore returned nil error")
	}
	snap := feed.Snapshot()
	if snap.Err == nil || snap.Loading {
		t.Fatalf("snapshot = %+v, want error and not loading", snap)
	}
	if other.Err() != nil {
		t.Fatalf("other feed Err = %v, want nil", other.Err())
	}
	feed.SetParams(photos.Params{Tag: "t"})
	if feed.Err() != nil {
		t.Fatalf("Err after switch = %v, want nil", feed.Err())
	}
}

func TestNew_DefaultLimit(t *testing.T) {
	if got := New(newFakeFetcher(), 0, nil).Limit(); got != DefaultLimit {
		t.Fatalf("Limit = %d, want %d", got, DefaultLimit)
	}
}
