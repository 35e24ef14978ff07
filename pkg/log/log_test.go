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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/connectivity"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "connection_lost",
			op: func(t *testing.T, logger *Logger) {
				logger.Alert(context.Background(), connectivity.NoticeLost)
			},
			wantLogs: []string{
				"🔌 connection lost • the server is not reachable",
			},
		},
		{
			name: "connection_restored",
			op: func(t *testing.T, logger *Logger) {
				logger.Alert(context.Background(), connectivity.NoticeRestored)
			},
			wantLogs: []string{
				"🔌 connection restored",
			},
		},
		{
			name: "commit_failed",
			op: func(t *testing.T, logger *Logger) {
				logger.CommitFailed("move", 2, 3, errors.New("status 500"))
				logger.CommitFailed("submit", 1, 0, errors.New("timeout"))
			},
			wantLogs: []string{
				"❌ move failed: status 500 • attempt 2/3",
				"❌ submit failed: timeout • attempt 1",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("area %s", "Cocina")
				logger.Successf("moved %d items", 3)
			},
			wantLogs: []string{
				"ℹ️  area Cocina",
				"✅ moved 3 items",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("checkout Cocina")
			},
			wantLogs: []string{
				"gesto • checkout Cocina",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.New(zerolog.TestWriter{T: t}))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestAlertCount(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	var alerter connectivity.Alerter = logger
	alerter.Alert(context.Background(), connectivity.NoticeLost)
	alerter.Alert(context.Background(), connectivity.NoticeRestored)

	assert.Equal(t, 2, logger.Alerts())
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
