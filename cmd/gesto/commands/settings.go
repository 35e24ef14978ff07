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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/operation"
	"github.com/walteh/gesto/pkg/session"
)

func NewSettingsCmd(o *opts.RootOpts) *cobra.Command {
	var (
		server        string
		notifications bool
		wifi          string
		test          bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored settings",
		Long: `Settings shows the values kept in the session store. Pass any flag to
change them. An empty --server falls back to the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := operation.NewSettings(o.Store)

			st, err := s.Load(ctx)
			if err != nil {
				return err
			}

			changed := false
			if f := cmd.Flags().Lookup("server-url"); f.Changed {
				st.ServerURL = server
				changed = true
			}
			if f := cmd.Flags().Lookup("notifications"); f.Changed {
				st.NotificationsEnabled = notifications
				changed = true
			}
			if f := cmd.Flags().Lookup("wifi-target"); f.Changed {
				st.WifiTarget = wifi
				changed = true
			}
			if changed {
				if err := s.Save(ctx, st); err != nil {
					return err
				}
				o.Console.Success("settings saved")
			}

			effective := o.ServerURL(ctx)
			rows := [][]string{
				{session.KeyServerURL, st.ServerURL, effective},
				{session.KeyNotifications, strconv.FormatBool(st.NotificationsEnabled), strconv.FormatBool(st.NotificationsEnabled)},
				{session.KeyWifiTarget, st.WifiTarget, st.EffectiveWifiTarget()},
			}
			if err := renderTable(cmd.OutOrStdout(), []string{"key", "stored", "effective"}, rows); err != nil {
				return err
			}

			if test {
				if err := s.Test(ctx, o.API); err != nil {
					return err
				}
				o.Console.Successf("server %s is reachable", effective)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server-url", "", "server url to store, empty to clear")
	cmd.Flags().BoolVar(&notifications, "notifications", false, "enable notifications")
	cmd.Flags().StringVar(&wifi, "wifi-target", "", "wifi network name of the warehouse")
	cmd.Flags().BoolVar(&test, "test", false, "probe the effective server")
	return cmd
}
