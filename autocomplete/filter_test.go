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
	"reflect"
	"testing"

	"k8s.io/apimachinery/pkg/util/sets"
)

func TestFilterPrefix(t *testing.T) {
	candidates := sets.New("system.cpu.user", "system.cpu.idle", "system.mem.used", "kafka.lag")
	testCases := []struct {
		name       string
		token      string
		ignoreCase bool
		want       []string
	}{
		{
			name:  "empty token keeps everything",
			token: "",
			want:  []string{"kafka.lag", "system.cpu.idle", "system.cpu.user", "system.mem.used"},
		},
		{
			name:  "prefix narrows",
			token: "system.cpu",
			want:  []string{"system.cpu.idle", "system.cpu.user"},
		},
		{
			name:       "case-insensitive prefix",
			token:      "SYSTEM.MEM",
			ignoreCase: true,
			want:       []string{"system.mem.used"},
		},
		{
			name:  "no matches",
			token: "cpu",
			want:  nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := sets.List(FilterPrefix(candidates, tc.token, tc.ignoreCase))
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FilterPrefix() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterSubstring(t *testing.T) {
	candidates := sets.New("system.cpu.user", "container.cpu.usage", "kafka.lag")
	got := sets.List(FilterSubstring(candidates, "cpu", false))
	want := []string{"container.cpu.usage", "system.cpu.user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterSubstring() = %v, want %v", got, want)
	}
}

func TestSplitTagPairs(t *testing.T) {
	keys := SplitTagPairs([]string{"host:web-1", "host:web-2", "env:prod", "bare", ""})
	want := []string{"bare", "env", "host"}
	if got := sets.List(keys); !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTagPairs() = %v, want %v", got, want)
	}
}

func TestDedupeCapsAndKeepsFirst(t *testing.T) {
	items := make([]CompletionItem, 0, 250)
	items = append(items, CompletionItem{Label: "dup", Kind: KindMetric, Detail: "first"})
	items = append(items, CompletionItem{Label: "dup", Kind: KindMetric, Detail: "second"})
	for i := 0; i < 240; i++ {
		items = append(items, CompletionItem{Label: string(rune('a'+i%26)) + string(rune('0'+i/26)), Kind: KindMetric})
	}
	out := Dedupe(items)
	if len(out) != MaxSuggestions {
		t.Fatalf("Dedupe() kept %d items, want %d", len(out), MaxSuggestions)
	}
	if out[0].Detail != "first" {
		t.Errorf("Dedupe() kept %q, want the first occurrence", out[0].Detail)
	}
}

func TestRankPrefixBeforeSubstring(t *testing.T) {
	items := []CompletionItem{
		{Label: "container.cpu"},
		{Label: "cpu.idle"},
		{Label: "cpu"},
		{Label: "acpu"},
	}
	Rank(items, "cpu")
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Label
	}
	want := []string{"cpu", "cpu.idle", "acpu", "container.cpu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() order = %v, want %v", got, want)
	}
}

func TestGroupOrderAndOmission(t *testing.T) {
	items := []CompletionItem{
		{Label: "host", Kind: KindTagKey},
		{Label: "avg", Kind: KindAggregator},
		{Label: "AND", Kind: KindOperator},
	}
	groups := Group(items)
	if len(groups) != 3 {
		t.Fatalf("Group() = %d groups, want 3", len(groups))
	}
	wantOrder := []Category{CategoryAggregators, CategoryKeys, CategoryOperators}
	for i, g := range groups {
		if g.Category != wantOrder[i] {
			t.Errorf("group %d category = %v, want %v", i, g.Category, wantOrder[i])
		}
	}
}
