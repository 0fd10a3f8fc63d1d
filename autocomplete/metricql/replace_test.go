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
	"testing"

	"github.com/observeql/querycomplete/autocomplete"
)

func TestReplace(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		offset     int
		item       autocomplete.CompletionItem
		ctx        autocomplete.QueryContext
		wantText   string
		wantCursor int
	}{
		{
			name:       "aggregator keeps an existing colon",
			text:       "a:system.cpu{*}",
			offset:     1,
			item:       autocomplete.CompletionItem{Label: "avg", Kind: autocomplete.KindAggregator, InsertText: "avg"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.AggregatorContext, CurrentToken: "a"},
			wantText:   "avg:system.cpu{*}",
			wantCursor: 3,
		},
		{
			name:       "aggregator appends a missing colon",
			text:       "av",
			offset:     2,
			item:       autocomplete.CompletionItem{Label: "avg", Kind: autocomplete.KindAggregator, InsertText: "avg"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.AggregatorContext, CurrentToken: "av"},
			wantText:   "avg:",
			wantCursor: 4,
		},
		{
			name:       "metric selection re-anchors the line",
			text:       "system.cp",
			offset:     9,
			item:       autocomplete.CompletionItem{Label: "system.cpu.user", Kind: autocomplete.KindMetric, InsertText: "system.cpu.user"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.MetricNameContext, CurrentToken: "system.cp"},
			wantText:   "avg:system.cpu.user{*}",
			wantCursor: 22,
		},
		{
			name:       "grouping appends with a comma after a complete entry",
			text:       "m{} by {host}",
			offset:     12,
			item:       autocomplete.CompletionItem{Label: "env", Kind: autocomplete.KindGroupingTag, InsertText: "env"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.GroupingTagContext, CurrentToken: "host"},
			wantText:   "m{} by {host,env}",
			wantCursor: 16,
		},
		{
			name:       "grouping replaces a partial token",
			text:       "m{} by {ho",
			offset:     10,
			item:       autocomplete.CompletionItem{Label: "host", Kind: autocomplete.KindGroupingTag, InsertText: "host"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.GroupingTagContext, CurrentToken: "ho"},
			wantText:   "m{} by {host",
			wantCursor: 12,
		},
		{
			name:       "grouping at list start inserts without a comma",
			text:       "m{} by {}",
			offset:     8,
			item:       autocomplete.CompletionItem{Label: "host", Kind: autocomplete.KindGroupingTag, InsertText: "host"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.GroupingTagContext},
			wantText:   "m{} by {host}",
			wantCursor: 12,
		},
		{
			name:       "filter key right after a comma inserts plainly",
			text:       "m{host:a,}",
			offset:     9,
			item:       autocomplete.CompletionItem{Label: "env", Kind: autocomplete.KindTagKey, InsertText: "env"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.FilterTagKeyContext},
			wantText:   "m{host:a,env}",
			wantCursor: 12,
		},
		{
			name:       "tag value replaces only after the colon",
			text:       "m{host:we}",
			offset:     9,
			item:       autocomplete.CompletionItem{Label: "web-1", Kind: autocomplete.KindTagValue, InsertText: "web-1"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.FilterTagValueContext, TagKey: "host", CurrentToken: "we"},
			wantText:   "m{host:web-1}",
			wantCursor: 12,
		},
		{
			name:       "default rule replaces the touched word",
			text:       "before wor after",
			offset:     10,
			item:       autocomplete.CompletionItem{Label: "word", Kind: autocomplete.KindFacetValue, InsertText: "word"},
			ctx:        autocomplete.QueryContext{Type: autocomplete.LogsSearchContext, CurrentToken: "wor"},
			wantText:   "before word after",
			wantCursor: 11,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotText, gotCursor := Replace(tc.text, tc.offset, tc.item, tc.ctx)
			if gotText != tc.wantText {
				t.Errorf("text = %q, want %q", gotText, tc.wantText)
			}
			if gotCursor != tc.wantCursor {
				t.Errorf("cursor = %d, want %d", gotCursor, tc.wantCursor)
			}
		})
	}
}
