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

// Package logsearch classifies cursor positions inside the logs search
// grammar:
//
//	facet:value (AND|OR|NOT) "phrase" *wildcard*
//
// The grammar is token-oriented; classification inspects the text
// immediately preceding the cursor for the tightest matching pattern.
package logsearch

import (
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/observeql/querycomplete/autocomplete"
)

// Facet names the engine knows how to complete values for. status and
// level are aliases for the same backend list.
var facetContexts = map[string]autocomplete.ContextType{
	"service": autocomplete.LogsServiceContext,
	"source":  autocomplete.LogsSourceContext,
	"status":  autocomplete.LogsLevelContext,
	"level":   autocomplete.LogsLevelContext,
	"host":    autocomplete.LogsHostContext,
	"env":     autocomplete.LogsEnvContext,
}

var (
	// facet:value directly open at the cursor; values tolerate trailing
	// wildcards. The group form covers "facet:(A OR B" combinations.
	facetValueRe = regexp.MustCompile(`(?i)(?:^|[\s(])(service|source|status|level|host|env):([^\s:()]*)$`)
	facetGroupRe = regexp.MustCompile(`(?i)(?:^|\s)(service|source|status|level|host|env):\(([^:()]*)$`)
	// text right after a boolean operator
	afterOperatorRe = regexp.MustCompile(`(?:^|\s)(AND|OR|NOT)\s+$`)
	usedFacetRe     = regexp.MustCompile(`(?i)(?:^|[\s(])(service|source|status|level|host|env):`)
	trailingWordRe  = regexp.MustCompile(`[A-Za-z0-9_.\-*]+$`)
	trailingIdentRe = regexp.MustCompile(`[A-Za-z0-9_]+$`)
)

// ParseContext classifies (text, offset) under the logs grammar. offset
// is a rune offset.
func ParseContext(text string, offset int) autocomplete.QueryContext {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	before := string(runes[:offset])

	qc := autocomplete.EmptyContext(autocomplete.LogsSearchContext, text, offset)
	qc.ExistingKeys = usedFacets(text)

	if m := facetGroupRe.FindStringSubmatch(before); m != nil {
		facet := strings.ToLower(m[1])
		qc.Type = facetContexts[facet]
		qc.TagKey = facet
		qc.InParens = true
		// inside a group only the term being typed is the token
		value := m[2]
		if i := strings.LastIndex(value, " "); i >= 0 {
			value = value[i+1:]
		}
		qc.CurrentToken = value
		return qc
	}
	if m := facetValueRe.FindStringSubmatch(before); m != nil {
		facet := strings.ToLower(m[1])
		qc.Type = facetContexts[facet]
		qc.TagKey = facet
		qc.CurrentToken = m[2]
		return qc
	}

	if afterOperatorRe.MatchString(before) {
		qc.AfterOperator = true
		return qc
	}

	if word := trailingWordRe.FindString(before); word != "" {
		rest := strings.TrimRight(before[:len(before)-len(word)], " ")
		qc.AfterOperator = afterOperatorRe.MatchString(rest + " ")
		if ident := trailingIdentRe.FindString(word); ident == word && isFacetPrefix(word) {
			qc.Type = autocomplete.LogsFacetNameContext
			qc.CurrentToken = word
			return qc
		}
		qc.CurrentToken = word
		return qc
	}

	return qc
}

func isFacetPrefix(word string) bool {
	lower := strings.ToLower(word)
	for name := range facetContexts {
		if strings.HasPrefix(name, lower) {
			return true
		}
	}
	return false
}

func usedFacets(text string) sets.Set[string] {
	used := sets.New[string]()
	for _, m := range usedFacetRe.FindAllStringSubmatch(text, -1) {
		used.Insert(strings.ToLower(m[1]))
	}
	return used
}

// Replace applies a committed logs suggestion: the maximal value run
// touching the cursor is replaced with the insert text. The run charset
// excludes colons, so facet-name completions (whose insert text carries
// the colon) never eat a facet value and vice versa.
func Replace(text string, offset int, item autocomplete.CompletionItem, qc autocomplete.QueryContext) (string, int) {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	const wordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_.-*"
	start := offset
	for start > 0 && strings.ContainsRune(wordChars, runes[start-1]) {
		start--
	}
	end := offset
	for end < len(runes) && strings.ContainsRune(wordChars, runes[end]) {
		end++
	}
	out := string(runes[:start]) + item.InsertText + string(runes[end:])
	return out, start + len([]rune(item.InsertText))
}
