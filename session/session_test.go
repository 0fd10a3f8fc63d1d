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

package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/observeql/querycomplete/autocomplete"
	"github.com/observeql/querycomplete/autocomplete/suggest"
	"github.com/observeql/querycomplete/catalog"
	"github.com/observeql/querycomplete/session"
)

// fakeSource is a scripted CandidateSource. It records every resolve's
// current token so specs can see which round actually landed.
type fakeSource struct {
	mu           sync.Mutex
	candidates   suggest.Candidates
	resolveErr   error
	resolveDelay time.Duration
	completeResp catalog.CompleteResponse
	completeErr  error

	resolves       atomic.Int32
	canceled       atomic.Int32
	resolvedTokens []string
}

func (f *fakeSource) Resolve(ctx context.Context, qc autocomplete.QueryContext) (suggest.Candidates, error) {
	f.resolves.Add(1)
	f.mu.Lock()
	delay, c, err := f.resolveDelay, f.candidates, f.resolveErr
	f.resolvedTokens = append(f.resolvedTokens, qc.CurrentToken)
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			f.canceled.Add(1)
			return suggest.Candidates{}, ctx.Err()
		}
	}
	return c, err
}

func (f *fakeSource) Complete(ctx context.Context, req catalog.CompleteRequest) (catalog.CompleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completeResp, f.completeErr
}

var _ = Describe("A completion session", func() {
	var (
		source *fakeSource
		sess   *session.Session
	)

	newSession := func(g session.Grammar) *session.Session {
		return session.New(source, g, session.WithDebounce(10*time.Millisecond))
	}

	BeforeEach(func() {
		source = &fakeSource{
			candidates: suggest.Candidates{
				Metrics: []string{"system.cpu.user", "system.cpu.idle", "system.mem.used"},
			},
			completeErr: errors.New("no server-side completion"),
		}
		sess = newSession(session.GrammarMetrics)
	})

	It("starts idle and closed", func() {
		snap := sess.Snapshot()
		Expect(snap.State).To(Equal(session.StateIdle))
		Expect(snap.IsOpen).To(BeFalse())
	})

	It("debounces before fetching", func() {
		slow := session.New(source, session.GrammarMetrics,
			session.WithDebounce(100*time.Millisecond))
		slow.TextChanged("sys", 3)
		Expect(slow.Snapshot().State).To(Equal(session.StatePendingDebounce))
		Expect(source.resolves.Load()).To(BeZero())
		Eventually(func() session.State { return slow.Snapshot().State }).
			Should(Equal(session.StateOpen))
	})

	It("coalesces rapid edits into one fetch for the final text", func() {
		sess.TextChanged("s", 1)
		sess.TextChanged("sy", 2)
		sess.TextChanged("sys", 3)
		Eventually(func() session.State { return sess.Snapshot().State }).
			Should(Equal(session.StateOpen))
		Expect(source.resolves.Load()).To(Equal(int32(1)))
		source.mu.Lock()
		tokens := append([]string(nil), source.resolvedTokens...)
		source.mu.Unlock()
		Expect(tokens).To(Equal([]string{"sys"}))
	})

	It("discards a stale round when a newer edit arrives mid-fetch", func() {
		source.mu.Lock()
		source.resolveDelay = 60 * time.Millisecond
		source.mu.Unlock()

		sess.TextChanged("sys", 3)
		time.Sleep(25 * time.Millisecond) // past debounce, inside the slow fetch
		source.mu.Lock()
		source.resolveDelay = 0
		source.mu.Unlock()
		sess.TextChanged("mem", 3)

		Eventually(func() session.State { return sess.Snapshot().State }).
			Should(Equal(session.StateOpen))
		Consistently(func() string { return sess.Snapshot().Query }).
			Should(Equal("mem"))
	})

	It("lets a superseded fetch run to completion so it can warm the cache", func() {
		source.mu.Lock()
		source.resolveDelay = 60 * time.Millisecond
		source.mu.Unlock()

		sess.TextChanged("sys", 3)
		time.Sleep(25 * time.Millisecond) // past debounce, inside the slow fetch
		source.mu.Lock()
		source.resolveDelay = 0
		source.mu.Unlock()
		sess.TextChanged("mem", 3)

		Eventually(func() int32 { return source.resolves.Load() }).
			Should(Equal(int32(2)))
		Consistently(func() int32 { return source.canceled.Load() }).
			Should(BeZero(), "a keystroke must not cancel an already-launched fetch")
	})

	It("cancels the in-flight fetch on dismiss", func() {
		source.mu.Lock()
		source.resolveDelay = 500 * time.Millisecond
		source.mu.Unlock()

		sess.TextChanged("sys", 3)
		Eventually(func() session.State { return sess.Snapshot().State }).
			Should(Equal(session.StateLoading))
		sess.Dismiss()

		Eventually(func() int32 { return source.canceled.Load() }).
			Should(Equal(int32(1)))
	})

	Context("with the dropdown open", func() {
		BeforeEach(func() {
			sess.TextChanged("sys", 3)
			Eventually(func() bool { return sess.Snapshot().IsOpen }).Should(BeTrue())
		})

		It("keeps the selection in range and wraps at both ends", func() {
			n := len(sess.Snapshot().Items)
			Expect(n).To(Equal(3))

			sess.MoveUp()
			Expect(sess.Snapshot().SelectedIndex).To(Equal(n - 1))
			sess.MoveDown()
			Expect(sess.Snapshot().SelectedIndex).To(BeZero())
			for i := 0; i < n; i++ {
				sess.MoveDown()
			}
			Expect(sess.Snapshot().SelectedIndex).To(BeZero())
		})

		It("hovers directly onto an item, setting both indices", func() {
			sess.Hover(2)
			snap := sess.Snapshot()
			Expect(snap.SelectedIndex).To(Equal(2))
			Expect(snap.HoveredIndex).To(Equal(2))

			sess.Hover(99)
			Expect(sess.Snapshot().SelectedIndex).To(Equal(2))
		})

		It("clears the hovered index when the keyboard takes over", func() {
			Expect(sess.Snapshot().HoveredIndex).To(Equal(-1))
			sess.Hover(1)
			Expect(sess.Snapshot().HoveredIndex).To(Equal(1))
			sess.MoveDown()
			Expect(sess.Snapshot().HoveredIndex).To(Equal(-1))
			Expect(sess.Snapshot().SelectedIndex).To(Equal(2))
		})

		It("commits the selection with the local grammar when the server declines", func() {
			text, offset := sess.Commit(context.Background())
			Expect(text).To(HavePrefix("avg:"))
			Expect(text).To(HaveSuffix("{*}"))
			Expect(offset).To(Equal(len(text)))

			snap := sess.Snapshot()
			Expect(snap.State).To(Equal(session.StateIdle))
			Expect(snap.IsOpen).To(BeFalse())
		})

		It("prefers the server-side rewrite when one is offered", func() {
			source.mu.Lock()
			source.completeErr = nil
			source.completeResp = catalog.CompleteResponse{
				NewQuery:        "avg:system.cpu.user{host:web-01}",
				NewCursorOffset: 31,
			}
			source.mu.Unlock()

			text, offset := sess.Commit(context.Background())
			Expect(text).To(Equal("avg:system.cpu.user{host:web-01}"))
			Expect(offset).To(Equal(31))
		})

		It("dismisses back to idle without touching the text", func() {
			sess.Dismiss()
			snap := sess.Snapshot()
			Expect(snap.State).To(Equal(session.StateIdle))
			Expect(snap.IsOpen).To(BeFalse())
			Expect(snap.Query).To(Equal("sys"))
		})

		It("treats blur like dismiss", func() {
			sess.Blur()
			Expect(sess.Snapshot().State).To(Equal(session.StateIdle))
		})
	})

	It("goes idle, not open, when nothing matches", func() {
		source.mu.Lock()
		source.candidates = suggest.Candidates{}
		source.mu.Unlock()

		sess.TextChanged("zzz", 3)
		Eventually(func() session.State { return sess.Snapshot().State }).
			Should(Equal(session.StateIdle))
		Expect(sess.Snapshot().IsOpen).To(BeFalse())
	})

	It("surfaces a friendly error when the fetch fails outright", func() {
		source.mu.Lock()
		source.candidates = suggest.Candidates{}
		source.resolveErr = errors.Wrap(catalog.ErrTimeout, "GET /api/v1/metrics")
		source.mu.Unlock()

		sess.TextChanged("sys", 3)
		Eventually(func() session.State { return sess.Snapshot().State }).
			Should(Equal(session.StateError))
		Expect(sess.Snapshot().Error).To(ContainSubstring("timed out"))
	})

	It("opens with an error banner on a partial fetch failure that left suggestions", func() {
		source.mu.Lock()
		source.resolveErr = errors.Wrap(catalog.ErrTimeout, "GET /api/v1/tags/values")
		source.mu.Unlock()

		sess.TextChanged("sys", 3)
		Eventually(func() bool { return sess.Snapshot().IsOpen }).Should(BeTrue())

		snap := sess.Snapshot()
		Expect(snap.Error).To(ContainSubstring("timed out"))
		Expect(snap.Items).NotTo(BeEmpty())

		// the dropdown stays navigable despite the banner
		sess.MoveDown()
		Expect(sess.Snapshot().SelectedIndex).To(Equal(1))
	})

	Describe("with the logs grammar", func() {
		BeforeEach(func() {
			sess = newSession(session.GrammarLogs)
		})

		It("reports validation issues as the user types", func() {
			sess.TextChanged(`service:web AND "unterminated`, 29)
			snap := sess.Snapshot()
			Expect(snap.ValidationIssues).NotTo(BeEmpty())

			sess.TextChanged(`service:web AND "done"`, 22)
			Expect(sess.Snapshot().ValidationIssues).To(BeEmpty())
		})
	})
})
