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
	"context"
	"time"
	"unicode/utf8"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-runewidth"

	"github.com/observeql/querycomplete/session"
)

const (
	// spaces can't individually demarcate lexical units in either
	// query grammar.
	queryTokenSeparators = " {}(),:"

	// widest a dropdown description gets before truncation.
	maxDetailWidth = 42
)

// Completer bridges a session onto go-prompt's completion callback.
// go-prompt paces keystrokes itself, so this uses the session's
// synchronous path.
type Completer struct {
	session *session.Session
	timeout time.Duration
}

func NewCompleter(s *session.Session) *Completer {
	return &Completer{session: s, timeout: 3 * time.Second}
}

func (c *Completer) Complete(d prompt.Document) []prompt.Suggest {
	if d.TextBeforeCursor() == "" {
		return []prompt.Suggest{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	offset := utf8.RuneCountInString(d.TextBeforeCursor())
	snap := c.session.Suggest(ctx, d.Text, offset)

	suggests := make([]prompt.Suggest, len(snap.Items))
	for i, item := range snap.Items {
		suggests[i] = prompt.Suggest{
			Text:        item.InsertText,
			Description: runewidth.Truncate(item.Detail, maxDetailWidth, "…"),
		}
	}
	return suggests
}
