package client

import (
	"context"
	"time"

	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/utils"
)

// DefaultPollInterval is how often the sync loop refreshes the post list.
const DefaultPollInterval = 30 * time.Second

// SyncLoop keeps an in-memory master list of posts in step with the server.
// It fetches once on Start and then polls on a fixed interval. Every merge
// runs on the dispatcher, and a generation counter discards responses that
// arrive after the loop owning them was stopped.
type SyncLoop struct {
	api      *APIClient
	disp     *Dispatcher
	notifier *Notifier
	interval time.Duration

	// All fields below are owned by the dispatcher goroutine.
	posts      []models.PostDto
	generation int
	running    bool
	cancel     context.CancelFunc

	subscribers []func([]models.PostDto)
}

// NewSyncLoop creates a loop polling at the given interval (DefaultPollInterval when zero).
func NewSyncLoop(api *APIClient, disp *Dispatcher, notifier *Notifier, interval time.Duration) *SyncLoop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SyncLoop{api: api, disp: disp, notifier: notifier, interval: interval}
}

// Subscribe registers fn to receive the merged snapshot after every change.
// Callbacks run on the dispatcher goroutine.
func (l *SyncLoop) Subscribe(fn func([]models.PostDto)) {
	l.disp.Invoke(func() {
		l.subscribers = append(l.subscribers, fn)
	})
}

// Snapshot returns a copy of the current master list.
func (l *SyncLoop) Snapshot() []models.PostDto {
	var out []models.PostDto
	l.disp.InvokeWait(func() {
		out = append(out, l.posts...)
	})
	return out
}

// Start fetches immediately and begins polling. Starting a running loop only
// triggers a refresh.
func (l *SyncLoop) Start() {
	l.disp.Invoke(func() {
		if l.running {
			utils.Sugar.Warn("sync loop already running, refreshing data only")
			l.fetchLocked()
			return
		}
		l.running = true
		gen := l.generation

		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel

		l.fetchLocked()
		go l.poll(ctx, gen)
		utils.Sugar.Infof("started post polling every %s", l.interval)
	})
}

// Stop cancels polling and clears the master list. In-flight fetches apply
// against the old generation and are discarded.
func (l *SyncLoop) Stop() {
	l.disp.InvokeWait(func() {
		if !l.running {
			return
		}
		l.running = false
		l.generation++
		if l.cancel != nil {
			l.cancel()
			l.cancel = nil
		}
		l.posts = nil
		utils.Sugar.Info("stopped post polling")
	})
}

// Refresh triggers an immediate fetch outside the polling cadence.
func (l *SyncLoop) Refresh() {
	l.disp.Invoke(func() {
		if l.running {
			l.fetchLocked()
		}
	})
}

func (l *SyncLoop) poll(ctx context.Context, gen int) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.disp.Invoke(func() {
				if l.generation == gen && l.running {
					l.fetchLocked()
				}
			})
		}
	}
}

// fetchLocked launches the HTTP call off the dispatcher and funnels the
// result back through it. Must be called on the dispatcher goroutine.
func (l *SyncLoop) fetchLocked() {
	gen := l.generation
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		serverPosts, err := l.api.ListPosts(ctx)
		if err != nil {
			utils.Sugar.Errorf("failed to fetch posts: %v", err)
			if l.notifier != nil {
				l.notifier.Error("Failed to fetch posts. Please try again.")
			}
			return
		}

		l.disp.Invoke(func() {
			if l.generation != gen {
				return // session was reset while this fetch was in flight
			}
			l.merge(serverPosts)
		})
	}()
}

// merge reconciles a server snapshot into the master list by uuid:
// entries missing from the server are removed, new entries are inserted at
// the front, and existing entries are replaced only when the server copy's
// updatedAt is strictly after the local one. Equal timestamps keep the local
// copy, which makes re-delivered and out-of-order snapshots harmless.
func (l *SyncLoop) merge(serverPosts []models.PostDto) {
	onServer := make(map[string]struct{}, len(serverPosts))
	for _, sp := range serverPosts {
		onServer[sp.UUID] = struct{}{}
	}

	kept := l.posts[:0]
	for _, local := range l.posts {
		if _, ok := onServer[local.UUID]; ok {
			kept = append(kept, local)
		}
	}
	l.posts = kept

	index := make(map[string]int, len(l.posts))
	for i, local := range l.posts {
		index[local.UUID] = i
	}

	for _, serverPost := range serverPosts {
		if i, ok := index[serverPost.UUID]; ok {
			if serverPost.UpdatedAt.After(l.posts[i].UpdatedAt) {
				l.posts[i] = serverPost
			}
		} else {
			l.posts = append([]models.PostDto{serverPost}, l.posts...)
			for uuid, idx := range index {
				index[uuid] = idx + 1
			}
			index[serverPost.UUID] = 0
		}
	}

	l.publish()
}

func (l *SyncLoop) publish() {
	snapshot := append([]models.PostDto(nil), l.posts...)
	for _, fn := range l.subscribers {
		fn(snapshot)
	}
}
