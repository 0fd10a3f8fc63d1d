/*
Copyright 2025 The QueryComplete Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/observeql/querycomplete/catalog"
	"github.com/observeql/querycomplete/config"
	"github.com/observeql/querycomplete/resolver"
	"github.com/observeql/querycomplete/session"
	"github.com/observeql/querycomplete/term"
)

// Options collects everything the root command needs to run.
type Options struct {
	ConfigPath string
	Grammar    string
	Query      string
	Cursor     int
	Offline    bool

	cfg config.Config
	out io.Writer
}

func NewOptions() *Options {
	return &Options{Cursor: -1}
}

type RootCmd struct {
	*cobra.Command
	options *Options
}

func addFlags(cmd *cobra.Command, options *Options) {
	cmd.Flags().StringVarP(&options.ConfigPath, "config", "c", options.ConfigPath, "path to a YAML config file")
	cmd.Flags().StringVarP(&options.Grammar, "grammar", "g", options.Grammar, "query language to complete: metrics or logs (overrides config)")
	cmd.Flags().StringVarP(&options.Query, "query", "q", "", "if specified, prints suggestions for this query once and exits")
	cmd.Flags().IntVar(&options.Cursor, "cursor", options.Cursor, "cursor offset for --query; defaults to end of query")
	cmd.Flags().BoolVar(&options.Offline, "offline", options.Offline, "complete against a built-in sample catalog, no backend needed")
}

// NewCmdQueryComplete provides the root cobra command.
func NewCmdQueryComplete() *RootCmd {
	o := NewOptions()
	cmd := &cobra.Command{
		Use: "querycomplete [options]",
		Example: `
querycomplete --offline                          # interactive mode against the sample catalog
querycomplete -c ~/.querycomplete.yaml           # interactive mode against a real backend
querycomplete -g logs                            # complete logs-search queries
querycomplete -q "avg:system.cpu.user{"          # print suggestions for a query and exit
`,
		SilenceUsage: true,

		RunE: func(c *cobra.Command, args []string) error {
			if err := o.Complete(c, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(c.Context())
		},
	}
	addFlags(cmd, o)
	return &RootCmd{Command: cmd, options: o}
}

// Complete folds the config file and flag overrides together.
func (o *Options) Complete(cmd *cobra.Command, args []string) error {
	o.out = cmd.OutOrStdout()

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.Grammar != "" {
		cfg.Grammar = o.Grammar
	}
	o.cfg = cfg
	return nil
}

// Validate ensures the flag combination makes sense.
func (o *Options) Validate() error {
	switch o.cfg.Grammar {
	case "metrics", "logs":
	default:
		return errors.Newf("unknown grammar %q (want metrics or logs)", o.cfg.Grammar)
	}
	if o.Query == "" && o.Cursor >= 0 {
		return errors.New("--cursor only makes sense together with --query")
	}
	return nil
}

func (o *Options) Run(ctx context.Context) error {
	cat, err := o.toCatalog()
	if err != nil {
		return err
	}
	res := resolver.New(cat, resolver.Config{
		TTL:          o.cfg.CacheTTL.Std(),
		Ceiling:      o.cfg.FetchCeiling,
		FetchTimeout: o.cfg.FetchTimeout.Std(),
	})
	defer res.Stop()

	newSession := func(g session.Grammar) *session.Session {
		return session.New(res, g, session.WithDebounce(o.cfg.Debounce.Std()))
	}
	grammar := session.Grammar(o.cfg.Grammar)

	if o.Query != "" {
		return o.runOnce(ctx, newSession(grammar))
	}

	repl := &term.REPL{
		Resolver:   res,
		Out:        o.out,
		NewSession: newSession,
	}
	return repl.Run(grammar)
}

// runOnce prints one suggestion pass for --query and exits.
func (o *Options) runOnce(ctx context.Context, sess *session.Session) error {
	cursor := o.Cursor
	if cursor < 0 {
		cursor = utf8.RuneCountInString(o.Query)
	}
	snap := sess.Suggest(ctx, o.Query, cursor)
	if snap.Error != "" {
		return errors.Newf("%s", snap.Error)
	}
	out, err := prettyjson.Marshal(snap.Groups)
	if err != nil {
		return err
	}
	if _, err := o.out.Write(append(out, '\n')); err != nil {
		return err
	}
	return nil
}

func (o *Options) toCatalog() (catalog.Catalog, error) {
	if o.Offline {
		return catalog.SampleFixture(), nil
	}
	apiKey, appKey, err := o.cfg.Credentials()
	if err != nil {
		return nil, err
	}
	return catalog.NewClient(o.cfg.Address, apiKey, appKey), nil
}
