// Package views caches rendered room views and invalidates them after
// room mutations.
package views

import (
	"context"
	"strconv"
	"sync"
)

// ListPath is the room list view.
const ListPath = "/rooms"

// DetailPath is the detail view of one room.
func DetailPath(id int64) string {
	return ListPath + "/" + strconv.FormatInt(id, 10)
}

// Invalidator drops cached renderings of the given view paths.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// Nop is used when no view cache is configured.
type Nop struct{}

func (Nop) Invalidate(context.Context, ...string) error { return nil }

// Recorder keeps every invalidated path in order.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *Recorder) Invalidate(_ context.Context, paths ...string) error {
	r.mu.Lock()
	r.paths = append(r.paths, paths...)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.paths = nil
	r.mu.Unlock()
}
