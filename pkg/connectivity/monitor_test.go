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

package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// scripted returns probe results in order, then repeats the last one
type scripted struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (s *scripted) Health(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]
}

type notices struct {
	mu  sync.Mutex
	got []Notice
}

func (n *notices) Alert(_ context.Context, x Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, x)
}

func (n *notices) count(kind Notice) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, x := range n.got {
		if x == kind {
			c++
		}
	}
	return c
}

var errDown = errors.New("connection refused")

func TestAlertOncePerOutage(t *testing.T) {
	tests := []struct {
		name      string
		results   []error
		wantLost  int
		wantState State
	}{
		{
			name:      "steady_online",
			results:   []error{nil, nil, nil},
			wantLost:  0,
			wantState: State{Online: true},
		},
		{
			name:      "two_failures_one_alert",
			results:   []error{errDown, errDown},
			wantLost:  1,
			wantState: State{Online: false, Alerted: true},
		},
		{
			name:      "fail_succeed_fail_two_alerts",
			results:   []error{errDown, nil, errDown},
			wantLost:  2,
			wantState: State{Online: false, Alerted: true},
		},
		{
			name:      "recovery_clears_alerted",
			results:   []error{errDown, errDown, nil},
			wantLost:  1,
			wantState: State{Online: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestLogger(t)
			n := &notices{}
			m := New(&scripted{results: tt.results}, n, Options{Interval: time.Second})

			for range tt.results {
				m.Check(ctx)
			}

			got := m.State()
			assert.Equal(t, tt.wantLost, n.count(NoticeLost), "lost notices")
			assert.Equal(t, tt.wantState.Online, got.Online, "online")
			assert.Equal(t, tt.wantState.Alerted, got.Alerted, "alerted")
			assert.False(t, got.Checking, "no probe should be in flight")
		})
	}
}

func TestRestoredNotice(t *testing.T) {
	ctx := setupTestLogger(t)
	n := &notices{}
	m := New(&scripted{results: []error{errDown, nil, nil}}, n, Options{NotifyRestored: true})

	m.Check(ctx)
	m.Check(ctx)
	m.Check(ctx)

	assert.Equal(t, 1, n.count(NoticeLost))
	assert.Equal(t, 1, n.count(NoticeRestored), "restored fires only when leaving an alerted outage")
}

func TestInitialState(t *testing.T) {
	m := New(&scripted{results: []error{nil}}, nil, Options{})
	s := m.State()
	assert.True(t, s.Online, "the server is assumed reachable until a probe fails")
	assert.Equal(t, IndicatorOnline, s.Indicator())
}

func TestIndicator(t *testing.T) {
	assert.Equal(t, IndicatorOnline, State{Online: true}.Indicator())
	assert.Equal(t, IndicatorOnline, State{Online: true, Checking: true}.Indicator())
	assert.Equal(t, IndicatorOffline, State{Alerted: true}.Indicator())
	assert.Equal(t, IndicatorRetrying, State{Alerted: true, Checking: true}.Indicator())
}

func TestCheckingWhileProbing(t *testing.T) {
	ctx := setupTestLogger(t)
	release := make(chan struct{})
	started := make(chan struct{})

	var first atomic.Bool
	first.Store(true)
	p := ProbeFunc(func(ctx context.Context) error {
		if first.Swap(false) {
			return errDown
		}
		close(started)
		<-release
		return errDown
	})

	m := New(p, nil, Options{Interval: time.Second})
	m.Check(ctx)

	done := make(chan State)
	go func() { done <- m.Check(ctx) }()

	<-started
	assert.Equal(t, IndicatorRetrying, m.State().Indicator(), "an alerted re-probe shows retrying")
	close(release)

	s := <-done
	assert.Equal(t, IndicatorOffline, s.Indicator())
}

func TestProbeTimeout(t *testing.T) {
	ctx := setupTestLogger(t)
	p := ProbeFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	m := New(p, nil, Options{Interval: time.Second, Timeout: 20 * time.Millisecond})
	s := m.Check(ctx)
	assert.False(t, s.Online)
	assert.ErrorIs(t, s.LastErr, context.DeadlineExceeded)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(setupTestLogger(t))
	probe := &scripted{results: []error{nil}}
	m := New(probe, nil, Options{Interval: 10 * time.Millisecond})

	done := make(chan error)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool {
		probe.mu.Lock()
		defer probe.mu.Unlock()
		return probe.calls >= 2
	}, time.Second, 5*time.Millisecond, "monitor should keep probing")

	cancel()
	assert.NoError(t, <-done)
}
