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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/connectivity"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/status"
)

func NewHealthCmd(o *opts.RootOpts) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Long: `Health probes the server once. With --watch it keeps probing on the
configured interval and prints the indicator whenever it changes, alerting once
per outage, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			mopts := o.Config.MonitorOptions()

			if !watch {
				m := connectivity.New(o.API, nil, mopts)
				st := m.Check(ctx)
				fmt.Fprintf(out, "%s %s\n", status.FormatServer(st.Indicator()), o.ServerURL(ctx))
				if !st.Online {
					return st.LastErr
				}
				return nil
			}

			m := connectivity.New(o.API, o.Console, mopts)
			r := operation.NewRunner()
			r.Background("monitor", m.Run)

			return r.Run(ctx, func(ctx context.Context) error {
				tick := time.NewTicker(mopts.Interval / 5)
				defer tick.Stop()

				var last connectivity.Indicator = -1
				for {
					if ind := m.State().Indicator(); ind != last {
						fmt.Fprintln(out, status.FormatServer(ind))
						last = ind
					}
					select {
					case <-ctx.Done():
						return nil
					case <-tick.C:
					}
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep probing until interrupted")
	return cmd
}
