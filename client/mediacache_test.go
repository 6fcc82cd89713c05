package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaCacheFetchDownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	cache := NewMediaCache(NewAPIClient(srv.URL, nil))

	var wg sync.WaitGroup
	results := make([][]byte, 3)
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		cache.Fetch("photo.png", srv.URL+"/photo.png", func(data []byte, err error) {
			defer wg.Done()
			require.NoError(t, err)
			results[i] = data
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, data := range results {
		assert.Equal(t, []byte("image-bytes"), data)
	}

	data, ok := cache.Get("photo.png")
	assert.True(t, ok)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestMediaCacheHitIsSynchronous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	cache := NewMediaCache(NewAPIClient(srv.URL, nil))

	done := make(chan struct{})
	cache.Fetch("photo.png", srv.URL+"/photo.png", func([]byte, error) { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial fetch did not complete")
	}

	var called bool
	cache.Fetch("photo.png", srv.URL+"/photo.png", func(data []byte, err error) {
		called = true
		assert.NoError(t, err)
		assert.Equal(t, []byte("image-bytes"), data)
	})
	assert.True(t, called, "cache hit must call back synchronously")
}

func TestMediaCacheEvictsFailedDownloads(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	cache := NewMediaCache(NewAPIClient(srv.URL, nil))

	done := make(chan error, 1)
	cache.Fetch("photo.png", srv.URL+"/photo.png", func(_ []byte, err error) { done <- err })
	require.Error(t, <-done)

	_, ok := cache.Get("photo.png")
	assert.False(t, ok)

	// The failed entry was evicted, so a retry can succeed.
	fail.Store(false)
	cache.Fetch("photo.png", srv.URL+"/photo.png", func(data []byte, err error) {
		done <- err
	})
	require.NoError(t, <-done)
}

func TestMediaCacheInvalidateForcesRedownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	cache := NewMediaCache(NewAPIClient(srv.URL, nil))

	done := make(chan struct{}, 1)
	cache.Fetch("photo.png", srv.URL+"/photo.png", func([]byte, error) { done <- struct{}{} })
	<-done

	cache.Invalidate("photo.png")
	_, ok := cache.Get("photo.png")
	assert.False(t, ok)

	cache.Fetch("photo.png", srv.URL+"/photo.png", func([]byte, error) { done <- struct{}{} })
	<-done
	assert.Equal(t, int32(2), hits.Load())
}
