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
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/status"
)

func NewRequestsCmd(o *opts.RootOpts) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"ls"},
		Short:   "List the active requests",
		Long: `Requests lists the active requests of every area. Areas flagged with ● have
pending requests. Use "gesto select" to work on one of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			reqs, err := operation.NewRequests(o.API, o.Session).List(ctx)
			if err != nil {
				o.Console.Warning("could not load requests: " + err.Error())
			}
			if len(reqs) == 0 {
				o.Console.Info("no active requests")
				return nil
			}

			if plain {
				for i, r := range reqs {
					fmt.Fprintln(out, status.FormatRequest(i+1, r))
				}
				return nil
			}

			rows := make([][]string, 0, len(reqs))
			for i, r := range reqs {
				flag := ""
				if r.HasRequests {
					flag = "●"
				}
				created := ""
				if !r.CreatedAt.IsZero() {
					created = r.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1), string(r.ID), r.AreaName, r.EmployeeName,
					strconv.Itoa(r.ProductCount), created, flag,
				})
			}
			return renderTable(out, []string{"#", "id", "area", "employee", "products", "created", ""}, rows)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print one line per request instead of a table")
	return cmd
}

func NewSelectCmd(o *opts.RootOpts) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "select [request-id]",
		Short: "Select the area of an active request",
		Long: `Select stores the area of a request as the current one. The basket, checkout
and assign commands work on the selected area.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := operation.NewRequests(o.API, o.Session)

			var (
				req remote.ActiveRequest
				err error
			)
			switch {
			case index > 0:
				reqs, lerr := r.List(ctx)
				if lerr != nil {
					return lerr
				}
				if index > len(reqs) {
					return errors.Errorf("no request #%d, there are %d", index, len(reqs))
				}
				req = reqs[index-1]
				err = r.Select(ctx, req)
			case len(args) == 1:
				req, err = r.SelectID(ctx, args[0])
			default:
				return errors.New("give a request id or --index")
			}
			if err != nil {
				return err
			}

			o.Console.Successf("selected %s (area %s)", req.AreaName, req.Area())
			return nil
		},
	}

	cmd.Flags().IntVarP(&index, "index", "n", 0, "select by position in the request list")
	return cmd
}
