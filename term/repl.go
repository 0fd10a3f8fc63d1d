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

// Package term hosts interactive completion in a terminal prompt.
package term

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"

	"github.com/observeql/querycomplete/autocomplete/logsearch"
	"github.com/observeql/querycomplete/resolver"
	"github.com/observeql/querycomplete/session"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// REPL is the interactive prompt loop. Queries entered at the prompt
// are validated and echoed; dot-commands inspect and tune the
// completion machinery.
type REPL struct {
	Resolver *resolver.Resolver
	Out      io.Writer

	// NewSession builds a session for a grammar, so .grammar can
	// switch mid-run.
	NewSession func(session.Grammar) *session.Session

	sess *session.Session
	quit bool
}

// Run blocks on the prompt until an exit string arrives.
func (r *REPL) Run(grammar session.Grammar) error {
	r.sess = r.NewSession(grammar)
	fmt.Fprintf(r.Out, "completing %s queries. %s lists commands.\n", cyan(string(grammar)), yellow(".help"))

	p := prompt.New(
		r.execute,
		r.complete,
		prompt.OptionTitle("querycomplete: context-aware query completion"),
		prompt.OptionPrefix(">>> "),
		prompt.OptionCompletionWordSeparator(queryTokenSeparators),
		prompt.OptionPrefixTextColor(prompt.Cyan),
		prompt.OptionInputTextColor(prompt.Yellow),
		prompt.OptionMaxSuggestion(12),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return r.quit || (breakline && isExit(in))
		}),
	)
	p.Run()
	return nil
}

// complete reads r.sess on every keystroke so .grammar switches take
// effect immediately.
func (r *REPL) complete(d prompt.Document) []prompt.Suggest {
	return NewCompleter(r.sess).Complete(d)
}

// execute handles one entered line.
func (r *REPL) execute(input string) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return
	case isExit(trimmed):
		fmt.Fprintln(r.Out, "bye.")
		r.quit = true
	case strings.HasPrefix(trimmed, "."):
		r.command(trimmed)
	default:
		r.query(trimmed)
	}
}

func (r *REPL) command(input string) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ".help":
		fmt.Fprintf(r.Out, `  .grammar metrics|logs   switch query language
  .context <query>        show how the cursor at end-of-line classifies
  .clearcache             drop every cached candidate set
  .ttl <duration>         change the candidate cache TTL (e.g. 10s)
  .retry-auth             retry after an authentication failure
  quit                    leave
`)
	case ".grammar":
		if len(fields) != 2 || (fields[1] != "metrics" && fields[1] != "logs") {
			fmt.Fprintf(r.Out, "%s\n", red("usage: .grammar metrics|logs"))
			return
		}
		r.sess = r.NewSession(session.Grammar(fields[1]))
		fmt.Fprintf(r.Out, "now completing %s queries\n", cyan(fields[1]))
	case ".context":
		q := strings.TrimSpace(strings.TrimPrefix(input, ".context"))
		qc := r.sess.Context(q, len([]rune(q)))
		out, err := prettyjson.Marshal(qc)
		if err != nil {
			fmt.Fprintf(r.Out, "%s\n", red(err.Error()))
			return
		}
		fmt.Fprintf(r.Out, "%s\n", out)
	case ".clearcache":
		r.Resolver.Clear()
		fmt.Fprintln(r.Out, "cache cleared")
	case ".ttl":
		if len(fields) != 2 {
			fmt.Fprintf(r.Out, "%s\n", red("usage: .ttl <duration>"))
			return
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil || d <= 0 {
			fmt.Fprintf(r.Out, "%s\n", red("bad duration "+fields[1]))
			return
		}
		r.Resolver.SetTTL(d)
		fmt.Fprintf(r.Out, "cache TTL is now %v\n", d)
	case ".retry-auth":
		r.Resolver.RetryAuth()
		fmt.Fprintln(r.Out, "auth breaker reset")
	default:
		fmt.Fprintf(r.Out, "%s\n", red(fmt.Sprintf("no known command %q (hint: try %q)", fields[0], ".help")))
	}
}

func (r *REPL) query(q string) {
	if r.sess.Grammar() == session.GrammarLogs {
		// syntax warnings are non-blocking; the query still runs
		for _, issue := range logsearch.Validate(q) {
			fmt.Fprintf(r.Out, "%s %s\n", yellow("!"), issue)
		}
	}
	if r.Resolver.AuthTripped() {
		fmt.Fprintf(r.Out, "%s %s\n", red("✗"), "authentication failed; fix your keys and run .retry-auth")
		return
	}
	fmt.Fprintf(r.Out, "%s %s\n", cyan("query:"), yellow(q))
}
