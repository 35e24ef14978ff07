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

package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/commit"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/status"
)

const shellHelp = `commands:
  ls                    show the list
  set <id> [qty]        set a quantity, no qty clears it
  mark <id>...          mark or unmark items
  unmark                clear every mark
  find [query]          filter by name, * ? [ ] match as a glob
  reload                drop unsynced edits and load the list again
  submit                report the request to the warehouse
  move                  move the stock, closes the request
  status                show server, sync and move state
  quit                  leave`

// 🐚 shell is the line-oriented basket screen
type shell struct {
	o         *opts.RootOpts
	b         *operation.Basket
	out       io.Writer
	in        *bufio.Scanner
	yes       bool
	moveLabel string

	lines <-chan string
}

func (s *shell) run(ctx context.Context) error {
	lines := make(chan string)
	s.lines = lines
	go func() {
		defer close(lines)
		for s.in.Scan() {
			select {
			case lines <- s.in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.render()
	fmt.Fprintln(s.out, color.HiBlackString(`type "help" for commands`))

	for {
		fmt.Fprint(s.out, "gesto> ")
		line, ok := s.read(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		if done := s.exec(ctx, line); done {
			return nil
		}
	}
}

func (s *shell) read(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

func (s *shell) ask(ctx context.Context, question string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", question)
	line, ok := s.read(ctx)
	if !ok {
		return false
	}
	return isYes(line)
}

// exec runs one command line and reports whether the screen is done
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "ls", "list", "l":
		s.render()
	case "set", "s":
		s.set(args)
	case "mark", "m":
		for _, id := range args {
			s.b.Toggle(basket.ID(id))
		}
		s.render()
	case "unmark":
		s.b.ClearMarks()
		s.render()
	case "find", "f", "/":
		s.b.Filter(strings.Join(args, " "))
		s.render()
	case "reload", "r":
		return s.reload(ctx)
	case "submit":
		s.submit(ctx)
	case "move":
		return s.move(ctx)
	case "status":
		s.statusLine(s.b.View())
	case "help", "h", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit", "q":
		return true
	default:
		s.o.Console.Warningf("unknown command %q, type help", fields[0])
	}
	return false
}

func (s *shell) set(args []string) {
	if len(args) == 0 || len(args) > 2 {
		s.o.Console.Warning("usage: set <id> [qty]")
		return
	}
	id := basket.ID(args[0])
	raw := ""
	if len(args) == 2 {
		raw = args[1]
	}

	if s.b.Items().Find(id) < 0 {
		s.o.Console.Warningf("no item %s", id)
		return
	}
	if !s.b.Edit(id, raw) {
		// rejected input leaves the quantity as it was
		return
	}

	v := s.b.View()
	for i, it := range v.Items {
		if it.ID == id {
			fmt.Fprintln(s.out, s.row(i+1, it, v))
		}
	}
	if v.Compliance.State(id) == basket.StateExcess {
		s.o.Console.Warning("quantity is above stock")
	}
}

func (s *shell) reload(ctx context.Context) bool {
	err := s.b.Reload(ctx)
	if errors.Is(err, operation.ErrSessionReset) {
		s.o.Console.Warning(`the area is no longer available, pick one with "gesto requests"`)
		return true
	}
	if err != nil {
		s.o.Console.Warning("reload failed: " + err.Error())
		return false
	}
	s.render()
	return false
}

func (s *shell) submit(ctx context.Context) {
	err := s.b.Submit(ctx)
	if err == nil {
		s.o.Console.Success("request reported")
		s.statusLine(s.b.View())
		return
	}
	s.commitError(err)
}

func (s *shell) move(ctx context.Context) bool {
	v := s.b.View()
	if !v.Gate.Enabled {
		s.o.Console.Warningf("%s is blocked: %s", s.moveLabel, v.Gate.Reason)
		return false
	}

	if !s.yes {
		q := fmt.Sprintf("%s %d items to %s?", s.moveLabel, positiveCount(s.b.Items()), v.Area.AreaName)
		if !s.ask(ctx, q) {
			s.o.Console.Info("nothing moved")
			return false
		}
	}

	err := s.b.Move(ctx)
	if err == nil {
		s.o.Console.Success("movement completed, the request is closed")
		return true
	}
	if errors.Is(err, commit.ErrCompleted) {
		return true
	}
	s.commitError(err)
	return false
}

func (s *shell) commitError(err error) {
	var (
		attempt *commit.AttemptError
		blocked *commit.BlockedError
	)
	switch {
	case errors.As(err, &attempt):
		s.o.Console.CommitFailed(attempt.Action.String(), attempt.Attempt, attempt.Max, attempt.Err)
		if attempt.Max > 0 && attempt.Attempt >= attempt.Max {
			s.o.Console.Warning(`retry limit reached, "reload" to try again`)
		}
	case errors.As(err, &blocked):
		s.o.Console.Warningf("%s is blocked: %s", s.moveLabel, blocked.Reason)
	case errors.Is(err, commit.ErrRetryLimit):
		s.o.Console.Warning(`retry limit reached, "reload" to try again`)
	case errors.Is(err, commit.ErrInFlight):
		s.o.Console.Info("already sending, wait for the result")
	case errors.Is(err, operation.ErrUnsupported):
		s.o.Console.Warningf(`this screen has no submit, use "move" to %s`, s.moveLabel)
	default:
		s.o.Console.Error(err.Error())
	}
}

func (s *shell) render() {
	v := s.b.View()
	s.o.Console.Header(fmt.Sprintf("%s • %s", v.Area.AreaName, v.Workflow))

	if v.LoadErr != nil {
		s.o.Console.Warning("could not load the list: " + v.LoadErr.Error())
	}
	if v.Query != "" {
		fmt.Fprintln(s.out, color.HiBlackString("filter %q: %d of %d", v.Query, len(v.Items), v.Total))
	}
	for i, it := range v.Items {
		fmt.Fprintln(s.out, s.row(i+1, it, v))
	}
	fmt.Fprintln(s.out)
	s.statusLine(v)
}

func (s *shell) row(n int, it basket.LineItem, v operation.BasketView) string {
	marked := false
	for _, id := range v.Marked {
		if id == it.ID {
			marked = true
			break
		}
	}
	line := status.FormatLineItem(n, it, v.Compliance.State(it.ID), marked)
	return line + color.HiBlackString("  [%s]", it.ID)
}

func (s *shell) statusLine(v operation.BasketView) {
	parts := []string{status.FormatServer(v.Connection.Indicator())}
	if badge := status.FormatSync(v.Sync); badge != "" {
		parts = append(parts, badge)
	}
	if v.Workflow == operation.WorkflowReported {
		if v.Reported {
			parts = append(parts, color.GreenString("reported"))
		} else {
			parts = append(parts, color.HiBlackString("not reported"))
		}
	}
	if v.MoveAttempts > 0 {
		parts = append(parts, color.RedString("%d failed", v.MoveAttempts))
	}
	parts = append(parts, status.FormatGate(v.Gate, s.moveLabel))
	fmt.Fprintln(s.out, strings.Join(parts, "  "))
}

func positiveCount(items basket.Items) int {
	n := 0
	for _, it := range items {
		if q, ok := it.Quantity.Decimal(); ok && q.IsPositive() {
			n++
		}
	}
	return n
}
