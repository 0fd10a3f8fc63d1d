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

package autocomplete

import (
	"sort"
	"strings"
)

// MaxSuggestions caps every suggestion pass; anything past this is noise
// in a dropdown anyway.
const MaxSuggestions = 100

// Kind tags a completion item with the kind of thing it completes.
// Every kind maps onto exactly one Category (see CategoryOf), which
// drives both grouping and token-replacement rules.
type Kind string

const (
	KindMetric      Kind = "metric"
	KindAggregator  Kind = "aggregator"
	KindTagKey      Kind = "tag-key"
	KindTagValue    Kind = "tag-value"
	KindGroupingTag Kind = "grouping-tag"
	KindFacet       Kind = "facet"
	KindService     Kind = "service"
	KindSource      Kind = "source"
	KindLevel       Kind = "level"
	KindFacetValue  Kind = "facet-value"
	KindOperator    Kind = "operator"
	KindPattern     Kind = "pattern"
)

// CompletionItem is a single entry in the dropdown. Ephemeral: items are
// regenerated on every suggestion pass.
type CompletionItem struct {
	Label      string
	Kind       Kind
	InsertText string
	SortKey    string
	Detail     string
}

// Category buckets items for display. The declaration order is the
// display order.
type Category int

const (
	CategoryAggregators Category = iota
	CategoryNames
	CategoryKeys
	CategoryValues
	CategoryOperators
	numCategories
)

func (c Category) Label() string {
	switch c {
	case CategoryAggregators:
		return "Aggregators"
	case CategoryNames:
		return "Names"
	case CategoryKeys:
		return "Tags & Facets"
	case CategoryValues:
		return "Values"
	case CategoryOperators:
		return "Operators & Patterns"
	}
	return "Other"
}

// CategoryOf is the 1:1 kind→category mapping.
func CategoryOf(k Kind) Category {
	switch k {
	case KindAggregator:
		return CategoryAggregators
	case KindMetric, KindService, KindSource, KindLevel:
		return CategoryNames
	case KindTagKey, KindGroupingTag, KindFacet:
		return CategoryKeys
	case KindTagValue, KindFacetValue:
		return CategoryValues
	default:
		return CategoryOperators
	}
}

// SuggestionGroup is a display bucket of items sharing a category.
type SuggestionGroup struct {
	Category Category
	Label    string
	Items    []CompletionItem
}

// Dedupe drops items whose label was already seen (first occurrence
// wins) and caps the result at MaxSuggestions.
func Dedupe(items []CompletionItem) []CompletionItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, dup := seen[it.Label]; dup {
			continue
		}
		seen[it.Label] = struct{}{}
		out = append(out, it)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Rank orders items for the current token: exact and prefix matches come
// before bare substring matches, ties break lexicographically on the
// sort key (falling back to the label).
func Rank(items []CompletionItem, token string) {
	lowered := strings.ToLower(token)
	class := func(it CompletionItem) int {
		l := strings.ToLower(it.Label)
		switch {
		case token != "" && l == lowered:
			return 0
		case token != "" && strings.HasPrefix(l, lowered):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := class(items[i]), class(items[j])
		if ci != cj {
			return ci < cj
		}
		ki, kj := items[i].SortKey, items[j].SortKey
		if ki == "" {
			ki = items[i].Label
		}
		if kj == "" {
			kj = items[j].Label
		}
		return ki < kj
	})
}

// Group buckets items by category in display order, dropping empty
// buckets. Item order inside a bucket is preserved, so callers Rank
// before they Group.
func Group(items []CompletionItem) []SuggestionGroup {
	buckets := make([][]CompletionItem, numCategories)
	for _, it := range items {
		c := CategoryOf(it.Kind)
		buckets[c] = append(buckets[c], it)
	}
	var groups []SuggestionGroup
	for c, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		groups = append(groups, SuggestionGroup{
			Category: Category(c),
			Label:    Category(c).Label(),
			Items:    bucket,
		})
	}
	return groups
}
