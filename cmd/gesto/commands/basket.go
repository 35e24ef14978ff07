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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/config"
	"github.com/walteh/gesto/pkg/connectivity"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/status"
)

func NewBasketCmd(o *opts.RootOpts) *cobra.Command {
	return newBasketCmd(o, basketScreen{
		use:       "basket",
		short:     "Fill and report the selected area's request",
		moveLabel: "move to area",
		base:      operation.ReportedOptions(),
		long: `Basket opens the request of the selected area. Quantities are synced as
you type; "submit" reports the request to the warehouse and "move" moves the
stock once the request is reported and every quantity is within stock.`,
	})
}

func NewCheckoutCmd(o *opts.RootOpts) *cobra.Command {
	return newBasketCmd(o, basketScreen{
		use:       "checkout",
		short:     "Dispatch the selected area's request from the warehouse",
		moveLabel: "dispatch",
		base:      operation.DispatchOptions(),
		long: `Checkout opens the warehouse side of the selected area's request. Adjust
the quantities to what is actually dispatched; "move" is enabled while every
quantity is within stock and the server is reachable.`,
	})
}

type basketScreen struct {
	use, short, long string
	moveLabel        string
	base             operation.BasketOptions
}

func newBasketCmd(o *opts.RootOpts, screen basketScreen) *cobra.Command {
	var (
		yes     bool
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   screen.use,
		Short: screen.short,
		Long:  screen.long + "\n\nType \"help\" at the prompt for the list of commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			bo := screen.base
			bo.UserID = o.Config.UserID
			bo.Sync = o.Config.SyncOptions()
			bo.Commit = o.Config.CommitPolicy()

			monitor := connectivity.New(o.API, o.Console, o.Config.MonitorOptions())
			b := operation.NewBasket(o.API, o.Session, monitor, bo)
			defer b.Close()

			if err := b.Load(ctx); err != nil {
				if errors.Is(err, operation.ErrSessionReset) {
					o.Console.Warning(`no area to work on, pick one with "gesto requests" and "gesto select"`)
					return nil
				}
				return err
			}

			statuses, err := b.Subscribe(8)
			if err != nil {
				return err
			}

			r := operation.NewRunner()
			r.Background("monitor", monitor.Run)
			r.Background("sync-status", func(ctx context.Context) error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case s, ok := <-statuses:
						if !ok {
							return nil
						}
						if badge := status.FormatSync(s); badge != "" {
							fmt.Fprintln(out, badge)
						}
					}
				}
			})
			if loc := o.Config.Location(); loc != "" && !noWatch {
				r.Background("config-watch", func(ctx context.Context) error {
					return config.Watch(ctx, loc, 0, func(ctx context.Context, cfg *config.Config) {
						o.SetConfiguredServerURL(cfg.ServerURL)
						o.Console.Infof("config reloaded, server %s", o.ServerURL(ctx))
					})
				})
			}

			sh := &shell{
				o:         o,
				b:         b,
				out:       out,
				in:        bufio.NewScanner(cmd.InOrStdin()),
				yes:       yes,
				moveLabel: screen.moveLabel,
			}
			return r.Run(ctx, sh.run)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask before moving stock")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file when it changes")
	return cmd
}
