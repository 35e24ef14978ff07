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

// Package commit runs the two terminal basket actions: reporting a request to
// the warehouse and moving its stock to the area.
package commit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
)

var (
	ErrInFlight   = errors.Base("commit already in flight")
	ErrBlocked    = errors.Base("commit blocked")
	ErrRetryLimit = errors.Base("retry limit reached")
	ErrCompleted  = errors.Base("movement already completed")
)

// BlockedError is returned when the gate refuses the move
type BlockedError struct {
	Reason Reason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("commit blocked: %s", e.Reason)
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// Action names a terminal action
type Action int

const (
	ActionSubmit Action = iota
	ActionMove
)

func (a Action) String() string {
	if a == ActionSubmit {
		return "submit"
	}
	return "move"
}

// AttemptError wraps a failed action with its attempt count
type AttemptError struct {
	Action  Action
	Attempt int
	Max     int
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s attempt %d of %d: %v", e.Action, e.Attempt, e.Max, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Committer is the remote side of the two actions
type Committer interface {
	SendToWarehouse(ctx context.Context, areaID string) error
	MakeMovement(ctx context.Context, areaID string, items basket.Items) error
}

// Session is cleared after a completed movement
type Session interface {
	ClearPending(ctx context.Context) error
}

// 📏 Policy bounds manual retries. There is never an automatic retry.
type Policy struct {
	// MaxAttempts is the number of consecutive failures allowed per action,
	// zero means unbounded
	MaxAttempts int
}

// 🎬 Orchestrator runs one request's terminal actions
type Orchestrator struct {
	committer Committer
	session   Session
	areaID    string
	policy    Policy

	inFlight atomic.Bool

	mu       sync.Mutex
	failures map[Action]int
	done     bool
}

func New(committer Committer, session Session, areaID string, policy Policy) *Orchestrator {
	return &Orchestrator{
		committer: committer,
		session:   session,
		areaID:    areaID,
		policy:    policy,
		failures:  make(map[Action]int),
	}
}

// InFlight reports whether an action is running
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Done reports whether the movement completed
func (o *Orchestrator) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Attempts returns the consecutive failures of an action
func (o *Orchestrator) Attempts(a Action) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failures[a]
}

// ResetAttempts clears the failure counts, e.g. after a reload
func (o *Orchestrator) ResetAttempts() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = make(map[Action]int)
}

// 📨 Submit reports the request to the warehouse
func (o *Orchestrator) Submit(ctx context.Context) error {
	return o.run(ctx, ActionSubmit, func(ctx context.Context) error {
		return o.committer.SendToWarehouse(ctx, o.areaID)
	})
}

// 🚚 Move commits the stock movement with the given snapshot. d must be the
// gate decision for that same snapshot.
func (o *Orchestrator) Move(ctx context.Context, items basket.Items, d Decision) error {
	if !d.Enabled {
		return &BlockedError{Reason: d.Reason}
	}

	err := o.run(ctx, ActionMove, func(ctx context.Context) error {
		if err := o.committer.MakeMovement(ctx, o.areaID, items); err != nil {
			return err
		}
		// done flips before the in-flight guard is released
		o.mu.Lock()
		o.done = true
		o.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if err := o.session.ClearPending(ctx); err != nil {
		return errors.Errorf("clearing session after movement: %w", err)
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, a Action, fn func(context.Context) error) error {
	logger := zerolog.Ctx(ctx).With().Stringer("action", a).Str("area", o.areaID).Logger()

	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return ErrCompleted
	}
	failures := o.failures[a]
	o.mu.Unlock()

	if o.policy.MaxAttempts > 0 && failures >= o.policy.MaxAttempts {
		return errors.Errorf("%s after %d failures: %w", a, failures, ErrRetryLimit)
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer o.inFlight.Store(false)

	logger.Debug().Int("previous_failures", failures).Msg("running commit action")

	if err := fn(ctx); err != nil {
		o.mu.Lock()
		o.failures[a]++
		attempt := o.failures[a]
		o.mu.Unlock()

		logger.Warn().Err(err).Int("attempt", attempt).Msg("commit action failed")
		return &AttemptError{Action: a, Attempt: attempt, Max: o.policy.MaxAttempts, Err: err}
	}

	o.mu.Lock()
	o.failures[a] = 0
	o.mu.Unlock()

	logger.Info().Msg("commit action succeeded")
	return nil
}
