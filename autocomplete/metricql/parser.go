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

// Package metricql classifies cursor positions inside the metrics query
// grammar:
//
//	[aggregator:]metric{tag:value,...} by {tag1,tag2}
//
// Classification is a span scan plus a finite decision over spans, not a
// full parse; malformed input degrades to a best-effort context rather
// than an error.
package metricql

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/observeql/querycomplete/autocomplete"
)

// ParseContext classifies (text, offset). offset is a rune offset into
// text; multi-line text is split and only the active line is inspected.
func ParseContext(text string, offset int) autocomplete.QueryContext {
	line, lineOffset := activeLine(text, offset)
	r := []rune(substituteTemplates(line))

	qc := autocomplete.EmptyContext(autocomplete.MetricNameContext, line, lineOffset)

	if gOpen, gClose, ok := groupingSpan(r, lineOffset); ok {
		classifyGrouping(&qc, r, gOpen, gClose, lineOffset)
		qc.MetricName = metricName(r)
		return qc
	}
	if fOpen, fClose, ok := filterSpan(r); ok && lineOffset > fOpen && lineOffset <= fClose {
		classifyFilter(&qc, r, fOpen, fClose, lineOffset)
		qc.MetricName = metricName(r)
		return qc
	}
	if c := aggregatorColon(r); c >= 0 && lineOffset <= c {
		qc.Type = autocomplete.AggregatorContext
		start := runStart(r, lineOffset, identChars)
		qc.CurrentToken = string(r[start:lineOffset])
		return qc
	}

	start := runStart(r, lineOffset, metricChars)
	qc.CurrentToken = string(r[start:lineOffset])
	return qc
}

const (
	identChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
	metricChars = identChars + "."
	// valueChars is the default word-run charset used by replacement too.
	valueChars = metricChars + "-"
)

func activeLine(text string, offset int) (string, int) {
	if offset < 0 {
		offset = 0
	}
	runes := []rune(text)
	if offset > len(runes) {
		offset = len(runes)
	}
	start := 0
	for i := 0; i < offset; i++ {
		if runes[i] == '\n' {
			start = i + 1
		}
	}
	end := len(runes)
	for i := offset; i < len(runes); i++ {
		if runes[i] == '\n' {
			end = i
			break
		}
	}
	return string(runes[start:end]), offset - start
}

// groupingSpan locates the last "by {" opened at or before the cursor and
// its closing brace (end of line when unmatched). ok only when the cursor
// falls inside the span.
func groupingSpan(r []rune, offset int) (open, close int, ok bool) {
	open = -1
	for i := 0; i < len(r) && i < offset; i++ {
		if r[i] == '{' && isByBrace(r, i) {
			open = i
		}
	}
	if open < 0 {
		return 0, 0, false
	}
	close = len(r)
	for i := open + 1; i < len(r); i++ {
		if r[i] == '}' {
			close = i
			break
		}
	}
	if offset > open && offset <= close {
		return open, close, true
	}
	return 0, 0, false
}

// isByBrace reports whether the brace at i is preceded by the keyword
// "by" (skipping spaces), delimited on its left by whitespace or the
// start of the line.
func isByBrace(r []rune, i int) bool {
	j := i - 1
	for j >= 0 && r[j] == ' ' {
		j--
	}
	if j < 1 || r[j] != 'y' || r[j-1] != 'b' {
		return false
	}
	return j-2 < 0 || r[j-2] == ' ' || r[j-2] == '\t'
}

func classifyGrouping(qc *autocomplete.QueryContext, r []rune, open, close, offset int) {
	qc.Type = autocomplete.GroupingTagContext
	inner := r[open+1 : close]
	cursor := offset - open - 1

	entryStart := 0
	for i := 0; i < cursor; i++ {
		if inner[i] == ',' {
			entryStart = i + 1
		}
	}
	qc.CurrentToken = strings.TrimSpace(string(inner[entryStart:cursor]))

	cursorEntry := 0
	for i := 0; i < entryStart; i++ {
		if inner[i] == ',' {
			cursorEntry++
		}
	}
	keys := sets.New[string]()
	for ei, entry := range strings.Split(string(inner), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		// the entry the cursor sits in is the current token, not an
		// existing key
		if ei == cursorEntry {
			continue
		}
		keys.Insert(entry)
	}
	qc.ExistingKeys = keys
}

// filterSpan is the first brace pair on the line that does not belong to
// a "by" clause; an unmatched open brace extends to end of line.
func filterSpan(r []rune) (open, close int, ok bool) {
	open = -1
	for i, c := range r {
		if c == '{' && !isByBrace(r, i) {
			open = i
			break
		}
	}
	if open < 0 {
		return 0, 0, false
	}
	close = len(r)
	for i := open + 1; i < len(r); i++ {
		if r[i] == '}' {
			close = i
			break
		}
	}
	return open, close, true
}

func classifyFilter(qc *autocomplete.QueryContext, r []rune, open, close, offset int) {
	qc.ExistingKeys = existingFilterKeys(r, open, close)
	qc.InParens = openParens(r[open+1:offset]) > 0

	// IN (...) value lists: cursor right after "(" or after a comma while
	// inside the parens.
	prev := rune(0)
	if offset > open+1 {
		prev = r[offset-1]
	}
	if prev == '(' || (prev == ',' && qc.InParens) {
		if key, ok := inListKey(r, open, offset); ok {
			qc.Type = autocomplete.FilterTagValueContext
			qc.TagKey = key
			qc.CurrentToken = ""
			return
		}
	}

	// walk backward to the nearest trigger; a colon crossed on the way
	// means the cursor is on the value side of a pair.
	colon := -1
	trigger := open
	for i := offset - 1; i > open; i-- {
		c := r[i]
		if c == ':' && colon < 0 {
			colon = i
			continue
		}
		if c == ' ' || c == '(' || c == ',' {
			trigger = i
			break
		}
	}
	if colon >= 0 {
		qc.Type = autocomplete.FilterTagValueContext
		qc.TagKey = strings.TrimSpace(string(r[trigger+1 : colon]))
		qc.CurrentToken = string(r[colon+1 : offset])
		if qc.InParens {
			if key, ok := inListKey(r, open, offset); ok {
				qc.TagKey = key
			}
		}
		return
	}
	if qc.InParens {
		// bare token inside an IN list
		if key, ok := inListKey(r, open, offset); ok {
			qc.Type = autocomplete.FilterTagValueContext
			qc.TagKey = key
			qc.CurrentToken = strings.TrimSpace(string(r[trigger+1 : offset]))
			return
		}
	}
	qc.Type = autocomplete.FilterTagKeyContext
	qc.CurrentToken = strings.TrimSpace(string(r[trigger+1 : offset]))
}

// inListKey recovers the tag key of an IN (...) list by scanning left
// from the innermost "(" for `key IN` immediately before it.
func inListKey(r []rune, open, offset int) (string, bool) {
	paren := -1
	depth := 0
	for i := offset - 1; i > open; i-- {
		switch r[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				paren = i
			} else {
				depth--
			}
		}
		if paren >= 0 {
			break
		}
	}
	if paren < 0 {
		return "", false
	}
	j := paren - 1
	for j > open && r[j] == ' ' {
		j--
	}
	// expect the word IN (case-insensitive)
	if j < open+2 {
		return "", false
	}
	if n := r[j]; n != 'n' && n != 'N' {
		return "", false
	}
	if n := r[j-1]; n != 'i' && n != 'I' {
		return "", false
	}
	j -= 2
	for j > open && r[j] == ' ' {
		j--
	}
	end := j + 1
	start := runStart(r, end, identChars)
	if start == end {
		return "", false
	}
	return string(r[start:end]), true
}

func openParens(rs []rune) int {
	depth := 0
	for _, c := range rs {
		switch c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

func existingFilterKeys(r []rune, open, close int) sets.Set[string] {
	keys := sets.New[string]()
	for _, pair := range strings.Split(string(r[open+1:close]), ",") {
		if i := strings.IndexByte(pair, ':'); i >= 0 {
			if key := strings.TrimSpace(pair[:i]); key != "" {
				keys.Insert(key)
			}
		}
	}
	return keys
}

// aggregatorColon is the first colon before any filter brace, i.e. the
// aggregator separator; colons inside braces belong to tag pairs.
func aggregatorColon(r []rune) int {
	for i, c := range r {
		if c == '{' {
			return -1
		}
		if c == ':' && (i == 0 || r[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// metricName is the text up to the first brace or "by" keyword, with any
// aggregator prefix stripped.
func metricName(r []rune) string {
	line := string(r)
	if i := strings.IndexByte(line, '{'); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, " by "); i >= 0 {
		line = line[:i]
	} else if strings.HasSuffix(line, " by") {
		line = line[:len(line)-3]
	}
	if i := strings.IndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}

func runStart(r []rune, offset int, chars string) int {
	start := offset
	for start > 0 && strings.ContainsRune(chars, r[start-1]) {
		start--
	}
	return start
}
