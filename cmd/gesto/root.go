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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/cmd/gesto/opts"
	"github.com/walteh/gesto/pkg/config"
	"github.com/walteh/gesto/pkg/log"
	"github.com/walteh/gesto/pkg/remote/gestoapi"
	"github.com/walteh/gesto/pkg/session"
)

var (
	// Flags
	configFile     string
	serverURL      string
	sessionBackend string
	debug          bool
)

const defaultConfigFile = "gesto.yaml"

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gesto",
		Short: "Warehouse request client for the gesto API",
		Long: `gesto lets warehouse staff work through the active requests of each area:
adjust dispatch quantities against stock, report requests, move stock to the
area, assign catalog items to areas and browse the movement history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			ctx := zerolog.DefaultContextLogger.WithContext(cmd.Context())
			cmd.SetContext(ctx)
			return newRootOpts(ctx, cmd, o)
		},
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "config file path (yaml, json or hcl)")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "server url, overrides the config file")
	cmd.PersistentFlags().StringVar(&sessionBackend, "session-backend", "", "session store backend: file, sqlite or memory")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// newRootOpts fills o with the config, the session store and the api client
func newRootOpts(ctx context.Context, cmd *cobra.Command, o *opts.RootOpts) error {
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if sessionBackend != "" {
		cfg.Session.Backend = sessionBackend
		cfg.Session.Path = ""
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	store, err := session.Open(ctx, cfg.SessionBackend(), cfg.Session.Path)
	if err != nil {
		return errors.Errorf("opening session store: %w", err)
	}

	o.Config = cfg
	o.Store = store
	o.Session = session.New(store)
	o.Console = log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx))
	o.SetConfiguredServerURL(cfg.ServerURL)

	client, err := gestoapi.New(gestoapi.Options{
		BaseURL:     o.ServerURL,
		Timeout:     cfg.RequestTimeout.Duration,
		Credentials: cfg.APICredentials(),
	})
	if err != nil {
		return errors.Errorf("creating api client: %w", err)
	}
	o.API = client

	zerolog.Ctx(ctx).Debug().Stringer("config", cfg).Msg("ready")
	return nil
}

// loadConfig reads the config file. The default file may be absent.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		zerolog.Ctx(ctx).Debug().Str("path", configFile).Msg("no config file, using defaults")
		return config.Default(), nil
	}
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
}
