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
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/status"
)

type historyFlags struct {
	from   string
	to     string
	area   string
	search string
}

func (f *historyFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.area, "area", "", "only movements of this area id")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "filter by item name or quantity")
}

func (f *historyFlags) filter() (remote.MovementFilter, error) {
	var mf remote.MovementFilter
	for _, d := range []struct {
		raw string
		dst *time.Time
	}{{f.from, &mf.From}, {f.to, &mf.To}} {
		if d.raw == "" {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, d.raw, time.Local)
		if err != nil {
			return mf, errors.Errorf("parsing date %q: %w", d.raw, err)
		}
		*d.dst = t
	}
	mf.AreaID = f.area
	return mf, nil
}

func printMovements(cmd *cobra.Command, ms []remote.Movement) {
	out := cmd.OutOrStdout()
	for _, m := range ms {
		fmt.Fprintf(out, "%-6s %s\n", m.ID, status.FormatMovement(m))
	}
}

func NewHistoryCmd(o *opts.RootOpts) *cobra.Command {
	var f historyFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List inventory movements",
		Long: `History lists the inventory movements of a date range, newest data from the
server. ↓ marks movements into an area, ↑ movements out of it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mf, err := f.filter()
			if err != nil {
				return err
			}

			h := operation.NewHistory(o.API, operation.HistoryOptions{})
			if _, err := h.Load(ctx, mf); err != nil {
				return err
			}

			ms := h.Search(f.search)
			if len(ms) == 0 {
				o.Console.Info("no movements")
				return nil
			}
			printMovements(cmd, ms)
			return nil
		},
	}

	f.add(cmd)
	return cmd
}

func NewUndoCmd(o *opts.RootOpts) *cobra.Command {
	var (
		f   historyFlags
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "undo <movement-id>",
		Short: "Undo an inventory movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := basket.ID(args[0])
			mf, err := f.filter()
			if err != nil {
				return err
			}

			h := operation.NewHistory(o.API, operation.HistoryOptions{})
			if _, err := h.Load(ctx, mf); err != nil {
				return err
			}
			m, ok := h.Find(id)
			if !ok {
				return errors.Errorf("movement %s is not in the selected range", id)
			}

			if !yes {
				fmt.Fprintln(cmd.OutOrStdout(), status.FormatMovement(m))
				in := bufio.NewScanner(cmd.InOrStdin())
				if !confirm(in, cmd.OutOrStdout(), "undo this movement?") {
					o.Console.Info("nothing changed")
					return nil
				}
			}

			ms, err := h.Undo(ctx, id)
			if err != nil {
				return err
			}
			o.Console.Successf("movement %s undone", id)
			printMovements(cmd, ms)
			return nil
		},
	}

	f.add(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
