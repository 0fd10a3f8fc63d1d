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

package metricql

import (
	"strings"

	"github.com/observeql/querycomplete/autocomplete"
)

// DefaultAggregator wraps a freshly selected metric; picking a metric
// re-anchors the whole expression.
const DefaultAggregator = "avg"

// Replace applies the committed item to the text and returns the new
// text along with the new cursor offset (runes). The context must be the
// one that produced the item.
func Replace(text string, offset int, item autocomplete.CompletionItem, qc autocomplete.QueryContext) (string, int) {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	lineStart := 0
	for i := 0; i < offset; i++ {
		if runes[i] == '\n' {
			lineStart = i + 1
		}
	}
	lineEnd := len(runes)
	for i := offset; i < len(runes); i++ {
		if runes[i] == '\n' {
			lineEnd = i
			break
		}
	}

	switch qc.Type {
	case autocomplete.MetricNameContext:
		// replace the entire line with a default aggregation over the
		// chosen metric
		newLine := DefaultAggregator + ":" + item.InsertText + "{*}"
		return splice(runes, lineStart, lineEnd, newLine), lineStart + len([]rune(newLine))

	case autocomplete.AggregatorContext:
		start, end := wordRun(runes, offset, identChars)
		out := splice(runes, start, end, item.InsertText)
		cursor := start + len([]rune(item.InsertText))
		if next := runeAt([]rune(out), cursor); next == ':' {
			return out, cursor
		}
		out = splice([]rune(out), cursor, cursor, ":")
		return out, cursor + 1

	case autocomplete.GroupingTagContext, autocomplete.FilterTagKeyContext:
		return replaceInList(runes, offset, item, qc)

	case autocomplete.FilterTagValueContext:
		// only the text after the key's colon; the value charset never
		// crosses the colon
		start, end := wordRun(runes, offset, valueChars+"*")
		out := splice(runes, start, end, item.InsertText)
		return out, start + len([]rune(item.InsertText))

	default:
		start, end := wordRun(runes, offset, valueChars)
		out := splice(runes, start, end, item.InsertText)
		return out, start + len([]rune(item.InsertText))
	}
}

// replaceInList handles comma-separated key lists ("{a,b}" and by
// clauses). When the current token actually filtered the chosen label we
// replace it; otherwise the selection is an addition and gets inserted at
// the cursor with a separating comma, unless the cursor already sits at
// the start of the list or right after a comma.
func replaceInList(runes []rune, offset int, item autocomplete.CompletionItem, qc autocomplete.QueryContext) (string, int) {
	token := qc.CurrentToken
	if token != "" && strings.Contains(strings.ToLower(item.Label), strings.ToLower(token)) {
		start, end := wordRun(runes, offset, valueChars)
		out := splice(runes, start, end, item.InsertText)
		return out, start + len([]rune(item.InsertText))
	}
	insert := item.InsertText
	if !atListStart(runes, offset) {
		insert = "," + insert
	}
	out := splice(runes, offset, offset, insert)
	return out, offset + len([]rune(insert))
}

func atListStart(runes []rune, offset int) bool {
	i := offset - 1
	for i >= 0 && runes[i] == ' ' {
		i--
	}
	if i < 0 {
		return true
	}
	switch runes[i] {
	case '{', ',', '(':
		return true
	}
	return false
}

// wordRun is the maximal run over chars touching the cursor.
func wordRun(runes []rune, offset int, chars string) (int, int) {
	start := offset
	for start > 0 && strings.ContainsRune(chars, runes[start-1]) {
		start--
	}
	end := offset
	for end < len(runes) && strings.ContainsRune(chars, runes[end]) {
		end++
	}
	return start, end
}

func splice(runes []rune, start, end int, insert string) string {
	var b strings.Builder
	b.WriteString(string(runes[:start]))
	b.WriteString(insert)
	b.WriteString(string(runes[end:]))
	return b.String()
}

func runeAt(runes []rune, i int) rune {
	if i < 0 || i >= len(runes) {
		return 0
	}
	return runes[i]
}
