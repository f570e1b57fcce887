package navigation

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/key"
)

// Direction is the outcome of a navigation key press.
type Direction int

const (
	None Direction = iota
	Prev
	Next
)

// NavigateFunc shows the photo with the given id, replacing the current one.
type NavigateFunc func(ctx context.Context, id string) error

// Keys holds the bindings that step through the queue.
type Keys struct {
	Prev key.Binding
	Next key.Binding
}

// DefaultKeys binds left/up to previous and right/down/space to next.
func DefaultKeys() Keys {
	return Keys{
		Prev: key.NewBinding(
			key.WithKeys("left", "up"),
			key.WithHelp("←/↑", "Previous photo"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "down", " "),
			key.WithHelp("→/↓/space", "Next photo"),
		),
	}
}

// Controller drives prev/next for the detail view that shows one photo of
// the queue at a time.
type Controller struct {
	queue    *Queue
	navigate NavigateFunc
	keys     Keys

	mu       sync.Mutex
	attached bool
}

// NewController creates a detached controller.
func NewController(queue *Queue, navigate NavigateFunc) *Controller {
	return &Controller{queue: queue, navigate: navigate, keys: DefaultKeys()}
}

// Keys returns the active bindings.
func (c *Controller) Keys() Keys { return c.keys }

// Attach enables the key bindings. Attaching twice is harmless.
func (c *Controller) Attach() {
	c.mu.Lock()
	c.attached = true
	c.mu.Unlock()
}

// Detach disables the key bindings. Detaching twice is harmless.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.attached = false
	c.mu.Unlock()
}

// Attached reports whether the bindings are active.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// CanGoPrev reports whether id sits in the active context with a predecessor.
func (c *Controller) CanGoPrev(id string) bool {
	return c.queue.HasValidContext(id) && c.queue.HasPrev(id)
}

// CanGoNext reports whether id sits in the active context with a successor,
// loaded or not.
func (c *Controller) CanGoNext(id string) bool {
	return c.queue.HasValidContext(id) && c.queue.HasNext(id)
}

// GoPrev navigates to the photo before id.
func (c *Controller) GoPrev(ctx context.Context, id string) error {
	if !c.CanGoPrev(id) {
		return nil
	}
	prev, ok := c.queue.PrevID(id)
	if !ok {
		return nil
	}
	return c.navigate(ctx, prev)
}

// GoNext navigates to the photo after id, extending the queue when id is the
// last loaded one.
func (c *Controller) GoNext(ctx context.Context, id string) error {
	if !c.CanGoNext(id) {
		return nil
	}
	next, ok := c.queue.NextID(ctx, id)
	if !ok {
		return nil
	}
	return c.navigate(ctx, next)
}

// Go steps from id in direction d.
func (c *Controller) Go(ctx context.Context, id string, d Direction) error {
	switch d {
	case Prev:
		return c.GoPrev(ctx, id)
	case Next:
		return c.GoNext(ctx, id)
	}
	return nil
}

// Direction maps a key press to a navigation step. Presses are ignored while
// detached or while a text input has focus.
func (c *Controller) Direction(k string, inputFocused bool) Direction {
	if inputFocused || !c.Attached() {
		return None
	}
	switch {
	case key.Matches(keyName(k), c.keys.Prev):
		return Prev
	case key.Matches(keyName(k), c.keys.Next):
		return Next
	}
	return None
}

type keyName string

func (k keyName) String() string { return string(k) }
