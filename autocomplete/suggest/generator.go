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

// Package suggest maps a classified cursor context plus fetched
// candidate sets onto a ranked, deduplicated, grouped completion list.
// Generation is pure; absent candidate data degrades the affected branch
// to empty rather than failing.
package suggest

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/observeql/querycomplete/autocomplete"
)

// Candidates carries the fetched sets a suggestion pass may draw from.
// Only the fields relevant to the context type need to be populated.
type Candidates struct {
	Metrics   []string
	TagPairs  []string // "key:value" strings scoped to the metric
	TagValues []string
	Services  []string
	Sources   []string
	Levels    []string
	Hosts     []string
	Envs      []string
	Fields    []string // additional facet names the backend indexes
}

// Result is a generated suggestion pass: the flat ranked item list plus
// the same items bucketed for display.
type Result struct {
	Items  []autocomplete.CompletionItem
	Groups []autocomplete.SuggestionGroup
}

// Generate produces completions for the context out of the candidates.
func Generate(qc autocomplete.QueryContext, c Candidates) Result {
	var items []autocomplete.CompletionItem

	switch qc.Type {
	case autocomplete.MetricNameContext:
		items = fromList(c.Metrics, qc.CurrentToken, autocomplete.KindMetric)

	case autocomplete.AggregatorContext:
		set := sets.New[string]()
		for a := range aggregators {
			set.Insert(a)
		}
		for _, a := range sets.List(autocomplete.FilterPrefix(set, qc.CurrentToken, true)) {
			items = append(items, autocomplete.CompletionItem{
				Label:      a,
				Kind:       autocomplete.KindAggregator,
				InsertText: a,
				Detail:     aggregators[a],
			})
		}

	case autocomplete.FilterTagKeyContext:
		keys := autocomplete.SplitTagPairs(c.TagPairs).Difference(qc.ExistingKeys)
		items = fromSet(keys, qc.CurrentToken, autocomplete.KindTagKey)

	case autocomplete.GroupingTagContext:
		keys := autocomplete.SplitTagPairs(c.TagPairs).Difference(qc.ExistingKeys)
		items = fromSet(keys, qc.CurrentToken, autocomplete.KindGroupingTag)

	case autocomplete.FilterTagValueContext:
		items = fromList(c.TagValues, qc.CurrentToken, autocomplete.KindTagValue)

	case autocomplete.LogsServiceContext:
		items = fromList(c.Services, qc.CurrentToken, autocomplete.KindService)

	case autocomplete.LogsSourceContext:
		items = fromList(c.Sources, qc.CurrentToken, autocomplete.KindSource)

	case autocomplete.LogsLevelContext:
		items = fromList(c.Levels, qc.CurrentToken, autocomplete.KindLevel)
		if !qc.InParens {
			for _, comp := range sortedKeys(levelComposites) {
				if matchesToken(comp, qc.CurrentToken) {
					items = append(items, autocomplete.CompletionItem{
						Label:      comp,
						Kind:       autocomplete.KindLevel,
						InsertText: comp,
						Detail:     levelComposites[comp],
					})
				}
			}
		}

	case autocomplete.LogsHostContext:
		items = fromList(c.Hosts, qc.CurrentToken, autocomplete.KindFacetValue)

	case autocomplete.LogsEnvContext:
		items = fromList(c.Envs, qc.CurrentToken, autocomplete.KindFacetValue)

	case autocomplete.LogsFacetNameContext, autocomplete.LogsSearchContext:
		items = searchUnion(qc, c)
	}

	items = autocomplete.Dedupe(items)
	autocomplete.Rank(items, qc.CurrentToken)
	return Result{Items: items, Groups: autocomplete.Group(items)}
}

// searchUnion is the general logs slot: facet names, and - unless the
// token directly follows an operator - boolean operators and search
// patterns.
func searchUnion(qc autocomplete.QueryContext, c Candidates) []autocomplete.CompletionItem {
	var items []autocomplete.CompletionItem

	for _, name := range sortedKeys(facets) {
		if qc.ExistingKeys.Has(name) {
			continue
		}
		if !matchesToken(name, qc.CurrentToken) {
			continue
		}
		items = append(items, autocomplete.CompletionItem{
			Label:      name + ":",
			Kind:       autocomplete.KindFacet,
			InsertText: name + ":",
			SortKey:    name,
			Detail:     facets[name],
		})
	}
	for _, field := range c.Fields {
		if qc.ExistingKeys.Has(strings.ToLower(field)) || !matchesToken(field, qc.CurrentToken) {
			continue
		}
		items = append(items, autocomplete.CompletionItem{
			Label:      field + ":",
			Kind:       autocomplete.KindFacet,
			InsertText: field + ":",
			SortKey:    field,
			Detail:     "indexed facet",
		})
	}

	if qc.Type == autocomplete.LogsFacetNameContext || qc.AfterOperator {
		return items
	}
	for _, op := range sortedKeys(operators) {
		if matchesToken(op, qc.CurrentToken) {
			items = append(items, autocomplete.CompletionItem{
				Label:      op,
				Kind:       autocomplete.KindOperator,
				InsertText: op + " ",
				SortKey:    op,
				Detail:     operators[op],
			})
		}
	}
	if qc.CurrentToken == "" {
		for _, p := range sortedKeys(patterns) {
			items = append(items, autocomplete.CompletionItem{
				Label:      p,
				Kind:       autocomplete.KindPattern,
				InsertText: p,
				Detail:     patterns[p],
			})
		}
	}
	return items
}

func fromList(candidates []string, token string, kind autocomplete.Kind) []autocomplete.CompletionItem {
	return fromSet(sets.New(candidates...), token, kind)
}

func fromSet(candidates sets.Set[string], token string, kind autocomplete.Kind) []autocomplete.CompletionItem {
	var items []autocomplete.CompletionItem
	for _, v := range sets.List(autocomplete.FilterSubstring(candidates, token, true)) {
		items = append(items, autocomplete.CompletionItem{
			Label:      v,
			Kind:       kind,
			InsertText: v,
		})
		if len(items) == autocomplete.MaxSuggestions {
			break
		}
	}
	return items
}

func matchesToken(candidate, token string) bool {
	if token == "" {
		return true
	}
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(token))
}

func sortedKeys(m map[string]string) []string {
	return sets.List(sets.KeySet(m))
}
