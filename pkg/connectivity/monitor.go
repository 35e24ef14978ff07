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

// Package connectivity polls the server health endpoint and tells the user
// once per outage that the server is unreachable.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Prober performs one liveness request
type Prober interface {
	Health(ctx context.Context) error
}

// ProbeFunc adapts a function to Prober
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Health(ctx context.Context) error { return f(ctx) }

// 📣 Notice is a user-facing connectivity message
type Notice int

const (
	NoticeLost Notice = iota
	NoticeRestored
)

func (n Notice) String() string {
	if n == NoticeLost {
		return "connection lost"
	}
	return "connection restored"
}

// Alerter shows a notice to the user
type Alerter interface {
	Alert(ctx context.Context, n Notice)
}

// AlertFunc adapts a function to Alerter
type AlertFunc func(ctx context.Context, n Notice)

func (f AlertFunc) Alert(ctx context.Context, n Notice) { f(ctx, n) }

// Indicator is the server badge derived from State
type Indicator int

const (
	IndicatorOnline Indicator = iota
	IndicatorOffline
	IndicatorRetrying
)

func (i Indicator) String() string {
	switch i {
	case IndicatorOnline:
		return "online"
	case IndicatorOffline:
		return "offline"
	default:
		return "retrying"
	}
}

// 📶 State is the monitor's view of the server
type State struct {
	Online bool
	// Alerted is set once the user was told about the current outage
	Alerted bool
	// Checking is set while a probe is in flight
	Checking bool
	// LastErr is the error of the latest failed probe
	LastErr error
	// LastCheck is when the latest probe finished
	LastCheck time.Time
}

// Indicator returns retrying while an alerted outage is being re-probed
func (s State) Indicator() Indicator {
	switch {
	case s.Alerted && s.Checking:
		return IndicatorRetrying
	case s.Online:
		return IndicatorOnline
	default:
		return IndicatorOffline
	}
}

// ⚙️ Options tunes the monitor
type Options struct {
	// Interval between probes
	Interval time.Duration
	// Timeout bounds a single probe
	Timeout time.Duration
	// NotifyRestored also alerts when an alerted outage ends
	NotifyRestored bool
}

// 🩺 Monitor owns the connectivity state
type Monitor struct {
	prober  Prober
	alerter Alerter
	opts    Options

	mu    sync.Mutex
	state State
}

func New(prober Prober, alerter Alerter, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Timeout <= 0 || opts.Timeout > opts.Interval {
		opts.Timeout = opts.Interval
	}
	if alerter == nil {
		alerter = AlertFunc(func(context.Context, Notice) {})
	}
	return &Monitor{
		prober:  prober,
		alerter: alerter,
		opts:    opts,
		state:   State{Online: true},
	}
}

// State returns a snapshot of the current state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Check runs one probe and applies the result. A failed probe only flips the
// state; it is never returned as an error.
func (m *Monitor) Check(ctx context.Context) State {
	logger := zerolog.Ctx(ctx)

	m.mu.Lock()
	m.state.Checking = true
	m.mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	err := m.prober.Health(pctx)
	cancel()

	var notice *Notice

	m.mu.Lock()
	m.state.Checking = false
	m.state.LastCheck = time.Now()
	m.state.LastErr = err
	if err != nil {
		m.state.Online = false
		if !m.state.Alerted {
			m.state.Alerted = true
			n := NoticeLost
			notice = &n
		}
	} else {
		if m.state.Alerted && m.opts.NotifyRestored {
			n := NoticeRestored
			notice = &n
		}
		m.state.Online = true
		m.state.Alerted = false
	}
	snapshot := m.state
	m.mu.Unlock()

	if err != nil {
		logger.Debug().Err(err).Bool("alerted", snapshot.Alerted).Msg("health probe failed")
	}
	if notice != nil {
		logger.Info().Stringer("notice", *notice).Msg("connectivity changed")
		m.alerter.Alert(ctx, *notice)
	}

	return snapshot
}

// 🔁 Run probes on every interval until ctx is done. The first probe runs one
// interval after start; the initial state is online.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
