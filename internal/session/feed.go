package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when dismissing an unknown notification.
var ErrNotificationNotFound = errors.New("notification not found")

// DefaultFeedSize is how many notifications a Feed keeps when no size is given.
const DefaultFeedSize = 50

// Feed keeps the most recent notifications in memory so the operator API can
// show them. Older entries are dropped once the feed is full.
type Feed struct {
	mu    sync.Mutex
	size  int
	items []Notification
}

// NewFeed instantiates an empty Feed holding at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		size:  size,
		items: make([]Notification, 0, size),
	}
}

// Notify appends n, evicting the oldest entry when full.
func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.size {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Latest returns the newest notification, if any.
func (f *Feed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return Notification{}, false
	}
	return f.items[len(f.items)-1], true
}

// All returns the notifications newest first.
func (f *Feed) All() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	return out
}

// Dismiss removes a notification by ID.
// Returns ErrNotificationNotFound if it is not in the feed.
func (f *Feed) Dismiss(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}
