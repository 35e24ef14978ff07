// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package syncer pushes edited line items to the server after the user stops
// typing. Only the last list within a quiet window is sent, and only the
// result of the latest push may touch the status.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
)

// 🚦 Status is the sync indicator of one basket screen
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// 📦 Batch is one push: the full list as it stood when the window closed
type Batch struct {
	Seq   uint64
	ID    uuid.UUID
	Items basket.Items
}

// Pusher sends a batch to the server
type Pusher interface {
	Push(ctx context.Context, batch Batch) error
}

// PushFunc adapts a function to Pusher
type PushFunc func(ctx context.Context, batch Batch) error

func (f PushFunc) Push(ctx context.Context, batch Batch) error {
	return f(ctx, batch)
}

// ⚙️ Options tunes the engine timers
type Options struct {
	// Debounce is the quiet window after the last change
	Debounce time.Duration
	// ResetAfter is how long success is shown before going back to idle
	ResetAfter time.Duration
	// Timeout bounds a single push, zero means no bound
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.ResetAfter <= 0 {
		o.ResetAfter = 500 * time.Millisecond
	}
	return o
}

// 🔄 Engine debounces list changes into pushes
type Engine struct {
	pusher Pusher
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	reset   *time.Timer
	gen     uint64 // bumped on every change, stale timers compare against it
	seq     uint64 // last issued push
	pending basket.Items
	armed   bool
	status  Status
	lastErr error
	subs    []chan Status
	closed  bool
}

// New creates an engine. ctx carries the logger and bounds every push.
func New(ctx context.Context, pusher Pusher, opts Options) *Engine {
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		pusher: pusher,
		opts:   opts.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ✏️ Notify reports a new list. Any pending push is cancelled and the quiet
// window restarts. An empty list cancels without scheduling.
func (e *Engine) Notify(items basket.Items) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.disarm()
	if len(items) == 0 {
		return
	}

	e.pending = items
	e.armed = true
	gen := e.gen
	e.timer = time.AfterFunc(e.opts.Debounce, func() { e.fire(gen) })
}

// Cancel drops a pending push without sending it
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarm()
}

// 🚀 Flush sends a pending push now and waits for it. It returns nil when
// nothing was pending.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || !e.armed {
		e.mu.Unlock()
		return nil
	}
	items := e.pending
	e.disarm()
	seq := e.begin()
	e.mu.Unlock()

	return e.push(ctx, seq, items)
}

func (e *Engine) disarm() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
	e.armed = false
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen {
		e.mu.Unlock()
		return
	}
	items := e.pending
	e.pending = nil
	e.armed = false
	e.timer = nil
	seq := e.begin()
	e.mu.Unlock()

	_ = e.push(e.ctx, seq, items)
}

// begin issues a sequence number and moves to loading. Caller holds mu.
func (e *Engine) begin() uint64 {
	e.seq++
	e.wg.Add(1)
	if e.reset != nil {
		e.reset.Stop()
		e.reset = nil
	}
	e.setStatus(StatusLoading)
	return e.seq
}

func (e *Engine) push(ctx context.Context, seq uint64, items basket.Items) error {
	defer e.wg.Done()

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	batch := Batch{Seq: seq, ID: uuid.New(), Items: items}
	logger := zerolog.Ctx(e.ctx).With().Uint64("seq", seq).Str("batch", batch.ID.String()).Logger()
	logger.Debug().Int("items", len(items)).Msg("pushing line items")

	err := e.pusher.Push(ctx, batch)
	if err != nil {
		err = errors.Errorf("pushing batch %d: %w", seq, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return err
	}
	if seq != e.seq {
		logger.Debug().Uint64("latest", e.seq).Msg("discarding stale push result")
		return err
	}

	if err != nil {
		logger.Warn().Err(err).Msg("sync failed")
		e.lastErr = err
		e.setStatus(StatusError)
		return err
	}

	e.lastErr = nil
	e.setStatus(StatusSuccess)
	e.reset = time.AfterFunc(e.opts.ResetAfter, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.closed && e.seq == seq && e.status == StatusSuccess {
			e.setStatus(StatusIdle)
		}
	})
	return nil
}

// setStatus records and broadcasts a status. Caller holds mu.
func (e *Engine) setStatus(s Status) {
	if e.status == s {
		return
	}
	e.status = s
	for _, ch := range e.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Status returns the current sync status
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Err returns the error of the latest push, nil unless the status is error
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Pending reports whether a push is waiting for its quiet window
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

// 📡 Subscribe returns a channel of status changes. Slow readers miss
// updates rather than block the engine. The channel is closed by Close.
func (e *Engine) Subscribe(buffer int) <-chan Status {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Status, buffer)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subs = append(e.subs, ch)
	return ch
}

// Close stops all timers, cancels in-flight pushes and waits for them
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.disarm()
	if e.reset != nil {
		e.reset.Stop()
		e.reset = nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()

	e.mu.Lock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
	e.mu.Unlock()
}
