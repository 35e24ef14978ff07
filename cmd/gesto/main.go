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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/walteh/gesto/cmd/gesto/commands"
	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/log"
)

func main() {
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = zerolog.DefaultContextLogger.WithContext(ctx)

	o := &opts.RootOpts{}
	rootCmd := newRootCmd(o)
	rootCmd.AddCommand(
		commands.NewRequestsCmd(o),
		commands.NewSelectCmd(o),
		commands.NewBasketCmd(o),
		commands.NewCheckoutCmd(o),
		commands.NewAssignCmd(o),
		commands.NewHistoryCmd(o),
		commands.NewUndoCmd(o),
		commands.NewSettingsCmd(o),
		commands.NewHealthCmd(o),
		newVersionCmd(),
	)

	err := rootCmd.ExecuteContext(ctx)
	if cerr := o.Close(); cerr != nil {
		zerolog.Ctx(ctx).Warn().Err(cerr).Msg("closing session store")
	}
	if err != nil {
		console := o.Console
		if console == nil {
			console = log.New(os.Stderr, *zerolog.Ctx(ctx))
		}
		console.Error(err.Error())
		os.Exit(1)
	}
}
