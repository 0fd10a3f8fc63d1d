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

// Package session drives the autocomplete lifecycle for one input line:
// debounced reloads on edits, stale-round discards, dropdown navigation,
// and commit. A Session owns no rendering; hosts read Snapshots and draw
// however they like.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/observeql/querycomplete/autocomplete"
	"github.com/observeql/querycomplete/autocomplete/logsearch"
	"github.com/observeql/querycomplete/autocomplete/metricql"
	"github.com/observeql/querycomplete/autocomplete/suggest"
	"github.com/observeql/querycomplete/catalog"
	"github.com/observeql/querycomplete/debug"
)

// DefaultDebounce is how long typing must pause before a reload fires.
const DefaultDebounce = 400 * time.Millisecond

// Grammar selects which query language the session completes.
type Grammar string

const (
	GrammarMetrics Grammar = "metrics"
	GrammarLogs    Grammar = "logs"
)

// State is the session lifecycle phase.
type State string

const (
	StateIdle            State = "idle"
	StatePendingDebounce State = "pending-debounce"
	StateLoading         State = "loading"
	StateOpen            State = "open"
	StateError           State = "error"
)

// CandidateSource is the resolver surface the session depends on.
type CandidateSource interface {
	Resolve(ctx context.Context, qc autocomplete.QueryContext) (suggest.Candidates, error)
	Complete(ctx context.Context, req catalog.CompleteRequest) (catalog.CompleteResponse, error)
}

// Snapshot is an immutable view of the dropdown for rendering.
// HoveredIndex is -1 unless the pointer is over an item; Error may be
// set while IsOpen is true, which renders as a dismissible banner
// inside the still-navigable dropdown.
type Snapshot struct {
	State            State
	IsOpen           bool
	Items            []autocomplete.CompletionItem
	Groups           []autocomplete.SuggestionGroup
	SelectedIndex    int
	HoveredIndex     int
	Error            string
	Query            string
	CursorOffset     int
	ValidationIssues []string
}

// Session is safe for concurrent use; the debounce timer fires on its
// own goroutine.
type Session struct {
	source   CandidateSource
	grammar  Grammar
	debounce time.Duration
	onChange func(Snapshot)

	mu       sync.Mutex
	state    State
	text     string
	offset   int
	qc       autocomplete.QueryContext
	items    []autocomplete.CompletionItem
	groups   []autocomplete.SuggestionGroup
	selected int
	hovered  int // -1 unless a pointer hover set it
	errMsg   string
	issues   []string
	round    uint64
	timer    *time.Timer
	cancel   context.CancelFunc
}

// Option mutates a Session at construction.
type Option func(*Session)

// WithDebounce overrides the typing pause before reloads.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithOnChange registers a callback invoked, unlocked, after every
// state transition.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Session) { s.onChange = fn }
}

func New(source CandidateSource, grammar Grammar, opts ...Option) *Session {
	s := &Session{
		source:   source,
		grammar:  grammar,
		debounce: DefaultDebounce,
		state:    StateIdle,
		hovered:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TextChanged records an edit: the pending timer is stopped and a fresh
// reload is scheduled after the debounce pause. A round already fetching
// is left to finish — its result is discarded by round id at apply time,
// but the fetch itself still warms the resolver cache.
func (s *Session) TextChanged(text string, offset int) {
	s.mu.Lock()
	s.supersedeLocked()
	s.text, s.offset = text, offset
	s.state = StatePendingDebounce
	s.hovered = -1
	if s.grammar == GrammarLogs {
		s.issues = logsearch.Validate(text)
	} else {
		s.issues = nil
	}
	s.round++
	round := s.round
	s.timer = time.AfterFunc(s.debounce, func() { s.load(round) })
	s.mu.Unlock()
	s.notify()
}

// load runs after the debounce pause on the timer goroutine.
func (s *Session) load(round uint64) {
	s.mu.Lock()
	if round != s.round {
		s.mu.Unlock()
		return
	}
	s.state = StateLoading
	s.qc = s.parse(s.text, s.offset)
	qc := s.qc
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	s.notify()

	candidates, err := s.source.Resolve(ctx, qc)
	cancel()

	s.mu.Lock()
	if round != s.round {
		// a newer edit superseded this round
		s.mu.Unlock()
		return
	}
	res := suggest.Generate(qc, candidates)
	s.items, s.groups = res.Items, res.Groups
	s.selected = 0
	s.hovered = -1
	switch {
	case err != nil && len(res.Items) == 0:
		s.state = StateError
		s.errMsg = friendlyError(err)
		debug.Debugf("load round %d failed: %v", round, err)
	case len(res.Items) == 0:
		s.state = StateIdle
		s.errMsg = ""
	default:
		// a partial fetch failure opens the dropdown anyway, with the
		// failure carried as a dismissible banner next to the items
		s.state = StateOpen
		s.errMsg = ""
		if err != nil {
			s.errMsg = friendlyError(err)
			debug.Debugf("load round %d degraded: %v", round, err)
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) parse(text string, offset int) autocomplete.QueryContext {
	if s.grammar == GrammarLogs {
		return logsearch.ParseContext(text, offset)
	}
	return metricql.ParseContext(text, offset)
}

// Suggest is the synchronous path for hosts that pace their own
// keystrokes (an embedded prompt widget, a one-shot CLI call). It runs
// parse, resolve, and generate immediately without touching the
// session's own state machine.
func (s *Session) Suggest(ctx context.Context, text string, offset int) Snapshot {
	qc := s.parse(text, offset)
	candidates, err := s.source.Resolve(ctx, qc)
	res := suggest.Generate(qc, candidates)

	snap := Snapshot{
		Items:        res.Items,
		Groups:       res.Groups,
		Query:        text,
		CursorOffset: offset,
	}
	if s.grammar == GrammarLogs {
		snap.ValidationIssues = logsearch.Validate(text)
	}
	snap.HoveredIndex = -1
	switch {
	case err != nil && len(res.Items) == 0:
		snap.State = StateError
		snap.Error = friendlyError(err)
	case len(res.Items) == 0:
		snap.State = StateIdle
	default:
		snap.State = StateOpen
		snap.IsOpen = true
		if err != nil {
			snap.Error = friendlyError(err)
		}
	}
	return snap
}

// Context exposes the classifier for inspection tooling.
func (s *Session) Context(text string, offset int) autocomplete.QueryContext {
	return s.parse(text, offset)
}

// Grammar reports which query language the session completes.
func (s *Session) Grammar() Grammar {
	return s.grammar
}

// MoveDown advances the selection, wrapping to the top.
func (s *Session) MoveDown() {
	s.moveBy(1)
}

// MoveUp retreats the selection, wrapping to the bottom.
func (s *Session) MoveUp() {
	s.moveBy(-1)
}

func (s *Session) moveBy(delta int) {
	s.mu.Lock()
	if s.state == StateOpen && len(s.items) > 0 {
		n := len(s.items)
		s.selected = (s.selected + delta + n) % n
		s.hovered = -1
	}
	s.mu.Unlock()
	s.notify()
}

// Hover marks an item as hovered and selects it, as from a mouse move.
func (s *Session) Hover(index int) {
	s.mu.Lock()
	if s.state == StateOpen && index >= 0 && index < len(s.items) {
		s.selected = index
		s.hovered = index
	}
	s.mu.Unlock()
	s.notify()
}

// Commit applies the selected item and closes the dropdown. The
// backend's completion endpoint is tried first; on any failure the
// grammar's local replacement applies. Returns the new line and cursor.
func (s *Session) Commit(ctx context.Context) (string, int) {
	s.mu.Lock()
	if s.state != StateOpen || len(s.items) == 0 {
		text, offset := s.text, s.offset
		s.mu.Unlock()
		return text, offset
	}
	item := s.items[s.selected]
	text, offset, qc := s.text, s.offset, s.qc
	s.mu.Unlock()

	newText, newOffset := s.applyCompletion(ctx, text, offset, item, qc)

	s.mu.Lock()
	s.abandonLocked()
	s.text, s.offset = newText, newOffset
	s.state = StateIdle
	s.items, s.groups = nil, nil
	s.selected = 0
	s.hovered = -1
	s.errMsg = ""
	if s.grammar == GrammarLogs {
		s.issues = logsearch.Validate(newText)
	}
	s.mu.Unlock()
	s.notify()
	return newText, newOffset
}

func (s *Session) applyCompletion(ctx context.Context, text string, offset int, item autocomplete.CompletionItem, qc autocomplete.QueryContext) (string, int) {
	resp, err := s.source.Complete(ctx, catalog.CompleteRequest{
		Query:        text,
		CursorOffset: offset,
		Selection:    item.InsertText,
		Grammar:      string(s.grammar),
	})
	if err == nil && resp.NewQuery != "" {
		return resp.NewQuery, resp.NewCursorOffset
	}
	if err != nil {
		debug.Debugf("server-side completion fell back to local: %v", err)
	}
	if s.grammar == GrammarLogs {
		return logsearch.Replace(text, offset, item, qc)
	}
	return metricql.Replace(text, offset, item, qc)
}

// Dismiss closes the dropdown without applying anything.
func (s *Session) Dismiss() {
	s.reset()
}

// Blur is a focus loss; identical to Dismiss.
func (s *Session) Blur() {
	s.reset()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.abandonLocked()
	s.state = StateIdle
	s.items, s.groups = nil, nil
	s.selected = 0
	s.hovered = -1
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// supersedeLocked invalidates the current round and stops its timer.
// An in-flight fetch is left alone: its result will be discarded by
// round id, but letting it finish warms the resolver cache for the
// next round. Callers hold mu.
func (s *Session) supersedeLocked() {
	s.round++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// abandonLocked additionally cancels the in-flight fetch; used when the
// session is done with the line (commit, dismiss, blur). Callers hold
// mu.
func (s *Session) abandonLocked() {
	s.supersedeLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Snapshot returns the current dropdown view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]autocomplete.CompletionItem, len(s.items))
	copy(items, s.items)
	issues := make([]string, len(s.issues))
	copy(issues, s.issues)
	return Snapshot{
		State:            s.state,
		IsOpen:           s.state == StateOpen && len(items) > 0,
		Items:            items,
		Groups:           s.groups,
		SelectedIndex:    s.selected,
		HoveredIndex:     s.hovered,
		Error:            s.errMsg,
		Query:            s.text,
		CursorOffset:     s.offset,
		ValidationIssues: issues,
	}
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.onChange(snap)
}

// friendlyError folds backend failures into a one-line banner message.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnauthorized):
		return "authentication failed; check your API and application keys"
	case errors.Is(err, catalog.ErrTimeout):
		return "suggestion fetch timed out"
	case errors.Is(err, catalog.ErrNotFound):
		return "no catalog data for this query"
	default:
		return "suggestions unavailable: " + err.Error()
	}
}
