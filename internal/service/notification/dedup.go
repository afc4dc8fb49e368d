package notification

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Deduplicator remembers recently sent notification keys for a fixed window. It is
// process-local: two instances of the service do not see each other's keys.
type Deduplicator struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

// NewDeduplicator keeps at most size keys, each for window.
func NewDeduplicator(size int, window time.Duration) *Deduplicator {
	if size <= 0 {
		size = 1024
	}
	return &Deduplicator{
		cache: expirable.NewLRU[string, struct{}](size, nil, window),
	}
}

// Seen reports whether key was recorded inside the window, recording it when it was not.
func (d *Deduplicator) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.cache.Get(key); ok {
		return true
	}
	d.cache.Add(key, struct{}{})
	return false
}

// Forget drops key so the next notification with it is sent.
func (d *Deduplicator) Forget(key string) {
	d.cache.Remove(key)
}

// Len is the number of keys currently remembered.
func (d *Deduplicator) Len() int {
	return d.cache.Len()
}
