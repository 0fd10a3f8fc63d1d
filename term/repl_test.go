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

package term

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/observeql/querycomplete/catalog"
	"github.com/observeql/querycomplete/resolver"
	"github.com/observeql/querycomplete/session"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	res := resolver.New(catalog.SampleFixture(), resolver.Config{})
	t.Cleanup(res.Stop)

	out := &bytes.Buffer{}
	r := &REPL{
		Resolver: res,
		Out:      out,
		NewSession: func(g session.Grammar) *session.Session {
			return session.New(res, g)
		},
	}
	r.sess = r.NewSession(session.GrammarMetrics)
	return r, out
}

func TestExecuteExit(t *testing.T) {
	r, out := newTestREPL(t)
	r.execute("quit")
	if !r.quit {
		t.Fatal("quit not set")
	}
	if !strings.Contains(out.String(), "bye") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCommandGrammarSwitch(t *testing.T) {
	r, out := newTestREPL(t)

	r.execute(".grammar logs")
	if r.sess.Grammar() != session.GrammarLogs {
		t.Fatalf("grammar = %v, want logs", r.sess.Grammar())
	}

	out.Reset()
	r.execute(".grammar traces")
	if !strings.Contains(out.String(), "usage:") {
		t.Errorf("output = %q, want usage hint", out.String())
	}
	if r.sess.Grammar() != session.GrammarLogs {
		t.Error("bad grammar argument must not switch the session")
	}
}

func TestCommandTTL(t *testing.T) {
	r, out := newTestREPL(t)

	r.execute(".ttl 10s")
	if got := r.Resolver.TTL(); got != 10*time.Second {
		t.Fatalf("ttl = %v, want 10s", got)
	}

	out.Reset()
	r.execute(".ttl soon")
	if !strings.Contains(out.String(), "bad duration") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCommandContext(t *testing.T) {
	r, out := newTestREPL(t)
	r.execute(".context avg:system.cpu.user{")
	if !strings.Contains(out.String(), "filter-tag-key") {
		t.Errorf("output = %q, want the classified context type", out.String())
	}
}

func TestCommandUnknown(t *testing.T) {
	r, out := newTestREPL(t)
	r.execute(".bogus")
	if !strings.Contains(out.String(), "no known command") {
		t.Errorf("output = %q", out.String())
	}
}

func TestQueryValidationForLogs(t *testing.T) {
	r, out := newTestREPL(t)
	r.execute(".grammar logs")
	out.Reset()

	// warnings are non-blocking: both the warning and the query run
	r.execute(`service:web AND "unterminated`)
	got := out.String()
	if !strings.Contains(got, "!") {
		t.Errorf("output = %q, want a syntax warning", got)
	}
	if !strings.Contains(got, "query:") {
		t.Errorf("output = %q, want the query to still run", got)
	}

	out.Reset()
	r.execute("service:web AND error")
	got = out.String()
	if strings.Contains(got, "!") && !strings.Contains(got, "query:") {
		t.Errorf("output = %q, want no warning for a valid query", got)
	}
	if !strings.Contains(got, "query:") {
		t.Errorf("output = %q, want the echoed query", got)
	}
}
