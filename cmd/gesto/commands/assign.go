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
	"github.com/spf13/cobra"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/remote"
)

func NewAssignCmd(o *opts.RootOpts) *cobra.Command {
	var (
		toggle []string
		find   string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Choose which catalog items the selected area can request",
		Long: `Assign lists the catalog with the items already assigned to the selected
area first. --toggle flips items on or off; --save stores the selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := operation.NewAssign(o.API, o.Session)

			if err := a.Load(ctx); err != nil {
				return err
			}

			known := make(map[basket.ID]bool)
			for _, c := range a.Filter("") {
				known[c.ID] = true
			}
			for _, id := range toggle {
				if !known[basket.ID(id)] {
					o.Console.Warningf("no catalog item %s", id)
					continue
				}
				a.Toggle(basket.ID(id))
			}

			items := a.Filter(find)
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				rows = append(rows, assignRow(c, a.Selected(c.ID)))
			}
			if err := renderTable(cmd.OutOrStdout(), []string{"", "id", "item", "content"}, rows); err != nil {
				return err
			}

			if !save {
				if len(toggle) > 0 {
					o.Console.Warning("selection not saved, pass --save")
				}
				return nil
			}
			if err := a.Submit(ctx); err != nil {
				return err
			}
			o.Console.Successf("items assigned to %s", a.Area().AreaName)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&toggle, "toggle", "t", nil, "item ids to switch on or off")
	cmd.Flags().StringVarP(&find, "find", "f", "", "only show items matching this name")
	cmd.Flags().BoolVar(&save, "save", false, "store the selection")
	return cmd
}

func assignRow(c remote.CatalogItem, on bool) []string {
	box := "[ ]"
	if on {
		box = "[x]"
	}
	content := ""
	if c.NetContent != "" {
		content = string(c.NetContent) + " " + c.NetContentUnitLabel
	}
	return []string{box, string(c.ID), c.Name, content}
}
