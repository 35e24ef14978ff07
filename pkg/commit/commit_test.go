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

package commit

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/gesto/pkg/basket"
)

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) SendToWarehouse(ctx context.Context, areaID string) error {
	return m.Called(ctx, areaID).Error(0)
}

func (m *mockCommitter) MakeMovement(ctx context.Context, areaID string, items basket.Items) error {
	return m.Called(ctx, areaID, items).Error(0)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) ClearPending(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		in   GateInput
		want Decision
	}{
		{"clear", GateInput{}, Decision{Enabled: true}},
		{"excess", GateInput{AnyExcess: true}, Decision{Reason: ReasonStockInsufficient}},
		{"sync_failed", GateInput{SyncFailed: true}, Decision{Reason: ReasonNoConnection}},
		{"offline", GateInput{Offline: true}, Decision{Reason: ReasonNoConnection}},
		{"connection_before_stock", GateInput{Offline: true, AnyExcess: true}, Decision{Reason: ReasonNoConnection}},
		{"awaiting_approval", GateInput{RequireReported: true}, Decision{Reason: ReasonAwaitingApproval}},
		{"approved", GateInput{RequireReported: true, Reported: true}, Decision{Enabled: true}},
		{"stock_before_approval", GateInput{RequireReported: true, AnyExcess: true}, Decision{Reason: ReasonStockInsufficient}},
		{"in_flight", GateInput{InFlight: true}, Decision{Reason: ReasonInFlight}},
		{"done", GateInput{Done: true, InFlight: true}, Decision{Reason: ReasonCompleted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.in))
		})
	}
}

func TestGateFollowsExcess(t *testing.T) {
	items := basket.Items{{ID: "1", Stock: basket.StockOf("10"), Quantity: ""}}

	d := Evaluate(GateInput{AnyExcess: basket.AnyExcess(items)})
	assert.True(t, d.Enabled, "empty quantity should leave the action enabled")

	items = basket.Apply(items, "1", "15")
	d = Evaluate(GateInput{AnyExcess: basket.AnyExcess(items)})
	assert.False(t, d.Enabled)
	assert.Equal(t, "stock insufficient", d.Reason.String())
}

func TestMove(t *testing.T) {
	items := basket.Items{{ID: "1", Stock: basket.StockOf("10"), Quantity: "2"}}

	t.Run("success_clears_session_once", func(t *testing.T) {
		ctx := setupTestLogger(t)
		c := &mockCommitter{}
		s := &mockSession{}
		c.On("MakeMovement", mock.Anything, "area-1", items).Return(nil).Once()
		s.On("ClearPending", mock.Anything).Return(nil).Once()

		o := New(c, s, "area-1", Policy{MaxAttempts: 3})
		require.NoError(t, o.Move(ctx, items, Decision{Enabled: true}))
		assert.True(t, o.Done())

		err := o.Move(ctx, items, Decision{Enabled: true})
		assert.ErrorIs(t, err, ErrCompleted, "a second move must be refused")
		assert.False(t, Evaluate(GateInput{Done: o.Done()}).Enabled)

		c.AssertExpectations(t)
		s.AssertExpectations(t)
	})

	t.Run("blocked_by_gate", func(t *testing.T) {
		ctx := setupTestLogger(t)
		c := &mockCommitter{}
		o := New(c, &mockSession{}, "area-1", Policy{})

		err := o.Move(ctx, items, Decision{Reason: ReasonStockInsufficient})
		assert.ErrorIs(t, err, ErrBlocked)

		var blocked *BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, ReasonStockInsufficient, blocked.Reason)
		c.AssertNotCalled(t, "MakeMovement", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failure_leaves_state_and_counts", func(t *testing.T) {
		ctx := setupTestLogger(t)
		c := &mockCommitter{}
		s := &mockSession{}
		c.On("MakeMovement", mock.Anything, "area-1", items).Return(assert.AnError).Times(2)

		o := New(c, s, "area-1", Policy{MaxAttempts: 2})

		err := o.Move(ctx, items, Decision{Enabled: true})
		var attempt *AttemptError
		require.ErrorAs(t, err, &attempt)
		assert.Equal(t, 1, attempt.Attempt)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, o.Done())

		err = o.Move(ctx, items, Decision{Enabled: true})
		require.ErrorAs(t, err, &attempt)
		assert.Equal(t, 2, attempt.Attempt)

		err = o.Move(ctx, items, Decision{Enabled: true})
		assert.ErrorIs(t, err, ErrRetryLimit, "third press should hit the retry limit")
		assert.Equal(t, 2, o.Attempts(ActionMove))

		o.ResetAttempts()
		assert.Equal(t, 0, o.Attempts(ActionMove))

		c.AssertExpectations(t)
		s.AssertNotCalled(t, "ClearPending", mock.Anything)
	})
}

func TestSubmit(t *testing.T) {
	ctx := setupTestLogger(t)
	c := &mockCommitter{}
	c.On("SendToWarehouse", mock.Anything, "area-9").Return(assert.AnError).Once()
	c.On("SendToWarehouse", mock.Anything, "area-9").Return(nil).Once()

	o := New(c, &mockSession{}, "area-9", Policy{MaxAttempts: 3})

	assert.Error(t, o.Submit(ctx))
	assert.Equal(t, 1, o.Attempts(ActionSubmit))
	assert.NoError(t, o.Submit(ctx))
	assert.Equal(t, 0, o.Attempts(ActionSubmit), "success resets the failure count")
	c.AssertExpectations(t)
}

func TestNonReentrant(t *testing.T) {
	ctx := setupTestLogger(t)
	release := make(chan struct{})
	started := make(chan struct{})

	c := &mockCommitter{}
	c.On("SendToWarehouse", mock.Anything, "a").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()

	o := New(c, &mockSession{}, "a", Policy{})

	done := make(chan error)
	go func() { done <- o.Submit(ctx) }()

	<-started
	assert.True(t, o.InFlight())
	assert.ErrorIs(t, o.Submit(ctx), ErrInFlight, "a second press while in flight is refused")
	assert.ErrorIs(t, o.Move(ctx, nil, Decision{Enabled: true}), ErrInFlight)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, o.InFlight())
	c.AssertExpectations(t)
}
