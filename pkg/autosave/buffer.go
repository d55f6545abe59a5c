// Package autosave batches field edits on the client and flushes them as
// one partial update after a quiet period, with at most one request in
// flight per buffer.
package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const DefaultQuietPeriod = 1500 * time.Millisecond

var ErrClosed = errors.New("autosave: buffer closed")

// Edits maps patch field names to their JSON values.
type Edits map[string]json.RawMessage

// Flusher sends one batch of edits.
type Flusher interface {
	Flush(ctx context.Context, edits Edits) error
}

// FlusherFunc adapts a function to Flusher.
type FlusherFunc func(ctx context.Context, edits Edits) error

func (f FlusherFunc) Flush(ctx context.Context, edits Edits) error { return f(ctx, edits) }

type Options struct {
	// QuietPeriod is how long edits must stop before a flush starts.
	QuietPeriod time.Duration

	// OnError receives every failed flush. The edits stay pending.
	OnError func(err error)

	// OnSaved receives the edits of every successful flush.
	OnSaved func(saved Edits)
}

type Buffer struct {
	flusher Flusher
	opts    Options

	// sem holds the single in-flight token.
	sem chan struct{}

	mu      sync.Mutex
	pending Edits
	queued  bool
	closed  bool
	timer   *time.Timer
}

func NewBuffer(flusher Flusher, opts Options) *Buffer {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	return &Buffer{
		flusher: flusher,
		opts:    opts,
		sem:     make(chan struct{}, 1),
		pending: Edits{},
	}
}

// Set records a field edit, replacing any pending edit of the same field,
// and restarts the quiet period.
func (b *Buffer) Set(field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("autosave: encode %s: %w", field, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.pending[field] = raw
	if b.timer == nil {
		b.timer = time.AfterFunc(b.opts.QuietPeriod, b.fire)
	} else {
		b.timer.Reset(b.opts.QuietPeriod)
	}
	return nil
}

// Pending returns a copy of the unsaved edits.
func (b *Buffer) Pending() Edits {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(Edits, len(b.pending))
	for k, v := range b.pending {
		out[k] = v
	}
	return out
}

// Flush sends pending edits now, waiting for an in-flight flush first.
func (b *Buffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.run(ctx, true)
}

// Close stops the timer and flushes what is pending. Later Set calls fail.
func (b *Buffer) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return b.Flush(ctx)
}

// fire runs when the quiet period ends. If a flush is in flight the new
// one is queued behind it instead of running concurrently.
func (b *Buffer) fire() {
	b.mu.Lock()
	select {
	case b.sem <- struct{}{}:
		b.mu.Unlock()
	default:
		b.queued = true
		b.mu.Unlock()
		return
	}
	_ = b.run(context.Background(), false)
}

// run is entered holding the in-flight token and releases it on return.
// It keeps flushing while flushes were queued behind the current one.
func (b *Buffer) run(ctx context.Context, forced bool) error {
	var firstErr error
	for {
		b.mu.Lock()
		b.queued = false
		edits := b.pending
		b.pending = Edits{}
		b.mu.Unlock()

		if len(edits) > 0 {
			if err := b.send(ctx, edits); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		b.mu.Lock()
		if !b.queued || len(b.pending) == 0 {
			b.queued = false
			<-b.sem
			b.mu.Unlock()
			if forced {
				return firstErr
			}
			return nil
		}
		b.mu.Unlock()
	}
}

func (b *Buffer) send(ctx context.Context, edits Edits) error {
	err := b.flusher.Flush(ctx, edits)
	if err == nil {
		if b.opts.OnSaved != nil {
			b.opts.OnSaved(edits)
		}
		return nil
	}

	// Edits made while the request was in flight are newer and win.
	b.mu.Lock()
	for k, v := range edits {
		if _, newer := b.pending[k]; !newer {
			b.pending[k] = v
		}
	}
	b.mu.Unlock()

	if b.opts.OnError != nil {
		b.opts.OnError(err)
	}
	return err
}
