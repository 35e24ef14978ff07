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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of work bound to a context
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	fn   Task
}

// 🏃 Runner runs background tasks for exactly as long as a foreground task
// runs. When the foreground returns, every background task is cancelled and
// awaited.
type Runner struct {
	tasks []namedTask
}

// 🏗️ NewRunner creates an empty runner
func NewRunner() *Runner {
	return &Runner{}
}

// Background adds a task that runs until the foreground task is done
func (r *Runner) Background(name string, t Task) {
	r.tasks = append(r.tasks, namedTask{name: name, fn: t})
}

// 🏃 Run starts the background tasks, runs fg and waits for all of them. A
// failing background task cancels fg.
func (r *Runner) Run(ctx context.Context, fg Task) error {
	logger := zerolog.Ctx(ctx)

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	for _, t := range r.tasks {
		t := t
		g.Go(func() error {
			logger.Debug().Str("task", t.name).Msg("starting background task")
			err := t.fn(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.Errorf("%s: %w", t.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		return fg(gctx)
	})

	return g.Wait()
}
