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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/gesto/pkg/connectivity"
)

// 🎯 Logger writes user-facing lines to the console and mirrors them to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	alerts  int
}

// 🏭 New creates a logger printing to console and recording to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📣 Alert shows a connectivity notice. It implements connectivity.Alerter.
func (l *Logger) Alert(ctx context.Context, n connectivity.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.alerts++
	switch n {
	case connectivity.NoticeLost:
		fmt.Fprintf(l.console, "🔌 %s %s\n",
			color.New(color.Bold, color.FgRed).Sprint("connection lost"),
			color.New(color.Faint).Sprint("• the server is not reachable"))
		l.zlog.Warn().Stringer("notice", n).Msg("connectivity alert")
	default:
		fmt.Fprintf(l.console, "🔌 %s\n", color.New(color.FgGreen).Sprint("connection restored"))
		l.zlog.Info().Stringer("notice", n).Msg("connectivity alert")
	}
}

// Alerts returns how many connectivity notices were shown
func (l *Logger) Alerts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alerts
}

// 🚨 CommitFailed shows a failed terminal action with its attempt count
func (l *Logger) CommitFailed(action string, attempt, max int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := fmt.Sprintf("attempt %d", attempt)
	if max > 0 {
		count = fmt.Sprintf("attempt %d/%d", attempt, max)
	}
	fmt.Fprintf(l.console, "❌ %s %s\n",
		color.New(color.FgRed).Sprintf("%s failed: %v", action, err),
		color.New(color.Faint).Sprint("• "+count))
	l.zlog.Error().Err(err).Str("action", action).Int("attempt", attempt).Msg("commit failed")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("gesto")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// line prints one prefixed, colored message and records it at level
func (l *Logger) line(prefix string, attr color.Attribute, level zerolog.Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", prefix, color.New(attr).Sprint(msg))
	l.zlog.WithLevel(level).Msg(msg)
}

func (l *Logger) Success(msg string) { l.line("✅", color.FgGreen, zerolog.InfoLevel, msg) }
func (l *Logger) Warning(msg string) { l.line("⚠️ ", color.FgYellow, zerolog.WarnLevel, msg) }
func (l *Logger) Error(msg string)   { l.line("❌", color.FgRed, zerolog.ErrorLevel, msg) }
func (l *Logger) Info(msg string)    { l.line("ℹ️ ", color.FgCyan, zerolog.InfoLevel, msg) }

func (l *Logger) Infof(format string, args ...any)    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warningf(format string, args ...any) { l.Warning(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)   { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }
