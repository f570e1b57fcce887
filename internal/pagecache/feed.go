package pagecache

import (
	"context"
	"sync"

	"github.com/five82/loupe/internal/photos"
)

// View is a consistent read of a Feed for rendering.
type View struct {
	Key     string
	Params  photos.Params
	Items   []photos.Photo
	HasMore bool
	Loading bool
	Err     error
}

// Len returns the number of loaded items.
func (v View) Len() int { return len(v.Items) }

// Feed is one listing's window onto the cache. It follows a single
// fingerprint at a time; switching params points it at another cache entry
// and leaves every other entry, and its progress, in place.
//
// The last load error is per feed, so it never outlives the view that saw it.
type Feed struct {
	cache *Cache

	mu     sync.RWMutex
	params photos.Params
	key    string
	err    error
}

// NewFeed creates a feed over cache starting at params.
func NewFeed(cache *Cache, params photos.Params) *Feed {
	params = params.Normalize()
	key := params.Fingerprint()
	cache.Get(key)
	return &Feed{cache: cache, params: params, key: key}
}

// Params returns the current params.
func (f *Feed) Params() photos.Params {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.params
}

// Key returns the current fingerprint.
func (f *Feed) Key() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.key
}

// Items returns a copy of the current entry's items.
func (f *Feed) Items() []photos.Photo {
	return f.cache.Get(f.Key()).Items()
}

// HasMore reports whether the current entry can grow.
func (f *Feed) HasMore() bool {
	return f.cache.Get(f.Key()).HasMore()
}

// Loading reports whether the current entry is being fetched.
func (f *Feed) Loading() bool {
	return f.cache.Loading(f.Key())
}

// Err returns the error of the last failed load for the current entry.
func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Snapshot returns the feed state in one read.
func (f *Feed) Snapshot() View {
	f.mu.RLock()
	params, key, err := f.params, f.key, f.err
	f.mu.RUnlock()
	page := f.cache.Get(key)
	return View{
		Key:     key,
		Params:  params,
		Items:   page.Items(),
		HasMore: page.HasMore(),
		Loading: f.cache.Loading(key),
		Err:     err,
	}
}

// LoadMore loads the next page of the current entry. The result lands in the
// entry that was current when the call started, even if the feed has been
// switched since.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.RLock()
	params, key := f.params, f.key
	f.mu.RUnlock()

	err := f.cache.LoadMore(ctx, params)

	f.mu.Lock()
	if f.key == key {
		f.err = err
	}
	f.mu.Unlock()
	return err
}

// SetParams points the feed at the entry for params. It reports whether the
// caller should start the first load: true when the feed switched to an
// entry that has no items yet and can still grow.
func (f *Feed) SetParams(params photos.Params) (needsLoad bool) {
	params = params.Normalize()
	key := params.Fingerprint()

	f.mu.Lock()
	if key == f.key {
		f.mu.Unlock()
		return false
	}
	f.params = params
	f.key = key
	f.err = nil
	f.mu.Unlock()

	return f.NeedsInitialLoad()
}

// NeedsInitialLoad reports whether the current entry is empty, can grow, and
// is not already loading.
func (f *Feed) NeedsInitialLoad() bool {
	key := f.Key()
	page := f.cache.Get(key)
	return page.Len() == 0 && page.HasMore() && !f.cache.Loading(key)
}
