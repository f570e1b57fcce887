// Package pagecache keeps one append-only, infinitely scrolling page state per
// listing fingerprint, for the whole session.
package pagecache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/five82/loupe/internal/photos"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 12

// Notifier receives user-facing error notices. Calls are fire and forget.
type Notifier interface {
	Notify(title, message string)
}

// Page is the loaded prefix of one listing. Items only ever grow by whole
// pages, in server order, and HasMore only ever goes from true to false.
// Loading and error state are deliberately not kept here.
type Page struct {
	mu      sync.RWMutex
	items   []photos.Photo
	hasMore bool
}

func newPage() *Page {
	return &Page{hasMore: true}
}

// Items returns a copy of the loaded items.
func (p *Page) Items() []photos.Photo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.items) == 0 {
		return nil
	}
	out := make([]photos.Photo, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of loaded items.
func (p *Page) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// HasMore reports whether the server may have items past the loaded prefix.
func (p *Page) HasMore() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasMore
}

func (p *Page) appendPage(items []photos.Photo, limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, items...)
	if len(items) < limit {
		p.hasMore = false
	}
}

// Cache maps fingerprints to pages. Entries are never evicted.
type Cache struct {
	mu       sync.RWMutex
	pages    map[string]*Page
	inflight map[string]struct{}

	group    singleflight.Group
	fetcher  photos.PageFetcher
	limit    int
	notifier Notifier
}

// New creates a Cache fetching limit items per page. notifier may be nil.
func New(fetcher photos.PageFetcher, limit int, notifier Notifier) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{
		pages:    make(map[string]*Page),
		inflight: make(map[string]struct{}),
		fetcher:  fetcher,
		limit:    limit,
		notifier: notifier,
	}
}

// Limit returns the page size.
func (c *Cache) Limit() int { return c.limit }

// Get returns the page for key, creating an empty one if it doesn't exist.
func (c *Cache) Get(key string) *Page {
	c.mu.RLock()
	if p, ok := c.pages[key]; ok {
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pages[key]; ok {
		return p
	}
	p := newPage()
	c.pages[key] = p
	return p
}

// Has returns true if a page exists for key.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pages[key]
	return ok
}

// Loading reports whether a fetch for key is in flight.
func (c *Cache) Loading(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.inflight[key]
	return ok
}

// LoadMore fetches the next page for params and appends it to that
// fingerprint's page. Concurrent calls for the same fingerprint share a single
// request. It does nothing once the page has no more items.
//
// Failures leave the page untouched, are reported to the notifier once per
// request, and are returned so a view can show them; the next call retries.
func (c *Cache) LoadMore(ctx context.Context, params photos.Params) error {
	key := params.Fingerprint()
	page := c.Get(key)
	if !page.HasMore() {
		return nil
	}
	_, err, _ := c.group.Do(key, func() (any, error) {
		c.setInflight(key, true)
		defer c.setInflight(key, false)
		return nil, c.fetchNext(ctx, key, params, page)
	})
	return err
}

func (c *Cache) fetchNext(ctx context.Context, key string, params photos.Params, page *Page) error {
	if !page.HasMore() {
		return nil
	}
	query := photos.PageQuery{Params: params, Limit: c.limit, Offset: page.Len()}
	items, err := c.fetcher.FetchPhotos(ctx, query)
	if err != nil {
		log.Printf("load photos %s offset %d: %v", key, query.Offset, err)
		if !errors.Is(err, context.Canceled) && c.notifier != nil {
			c.notifier.Notify("An error occurred", photos.ErrorMessage(err, "Failed to get photos"))
		}
		return fmt.Errorf("load photos: %w", err)
	}
	page.appendPage(items, c.limit)
	return nil
}

func (c *Cache) setInflight(key string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.inflight[key] = struct{}{}
	} else {
		delete(c.inflight, key)
	}
}
