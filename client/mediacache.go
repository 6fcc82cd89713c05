package client

import (
	"context"
	"sync"
	"time"

	"github.com/postdeck/postdeck/utils"
)

type mediaEntry struct {
	data    []byte
	err     error
	done    bool
	waiters []func([]byte, error)
}

// MediaCache holds downloaded media bytes keyed by filename. Population is
// asynchronous: readers either get the cached bytes immediately or register a
// callback fired when the fetch completes. Concurrent requests for the same
// key share one download.
type MediaCache struct {
	api *APIClient

	mu      sync.Mutex
	entries map[string]*mediaEntry
}

// NewMediaCache creates an empty cache backed by the given API client.
func NewMediaCache(api *APIClient) *MediaCache {
	return &MediaCache{api: api, entries: map[string]*mediaEntry{}}
}

// Get returns cached bytes when the entry is populated and error-free.
func (c *MediaCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.done || e.err != nil {
		return nil, false
	}
	return e.data, true
}

// Fetch delivers the bytes for key to callback, downloading from the
// presigned URL on first request. The callback may run synchronously (cache
// hit) or later on the downloading goroutine.
func (c *MediaCache) Fetch(key, presignedURL string, callback func([]byte, error)) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if e.done {
			data, err := e.data, e.err
			c.mu.Unlock()
			callback(data, err)
			return
		}
		e.waiters = append(e.waiters, callback)
		c.mu.Unlock()
		return
	}

	e := &mediaEntry{waiters: []func([]byte, error){callback}}
	c.entries[key] = e
	c.mu.Unlock()

	go c.download(key, presignedURL, e)
}

// Invalidate drops an entry, forcing the next Fetch to re-download.
func (c *MediaCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear empties the cache, e.g. on logout.
func (c *MediaCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*mediaEntry{}
}

func (c *MediaCache) download(key, presignedURL string, e *mediaEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := c.api.DownloadFile(ctx, presignedURL)
	if err != nil {
		utils.Sugar.Errorf("failed to download media %s: %v", key, err)
	}

	c.mu.Lock()
	e.data = data
	e.err = err
	e.done = true
	waiters := e.waiters
	e.waiters = nil
	if err != nil {
		// Failed entries are evicted so a retry is possible
		delete(c.entries, key)
	}
	c.mu.Unlock()

	for _, fn := range waiters {
		fn(data, err)
	}
}
