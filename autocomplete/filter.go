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
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// set-based filters for pruning candidate lists against the text at the
// cursor. FilterPrefix keeps strings starting with the token,
// FilterSubstring keeps strings containing it anywhere.

func FilterPrefix(candidates sets.Set[string], token string, ignoreCase bool) sets.Set[string] {
	return filterSet(candidates, token, ignoreCase, strings.HasPrefix)
}

func FilterSubstring(candidates sets.Set[string], token string, ignoreCase bool) sets.Set[string] {
	return filterSet(candidates, token, ignoreCase, strings.Contains)
}

func filterSet(candidates sets.Set[string], token string, ignoreCase bool, match func(string, string) bool) sets.Set[string] {
	if token == "" {
		return candidates
	}
	if ignoreCase {
		token = strings.ToLower(token)
	}
	ret := sets.New[string]()
	for item := range candidates {
		probe := item
		if ignoreCase {
			probe = strings.ToLower(probe)
		}
		if match(probe, token) {
			ret.Insert(item)
		}
	}
	return ret
}

// SplitTagPairs derives the key set from "key:value" candidate strings.
// Strings without a colon count as bare keys.
func SplitTagPairs(pairs []string) sets.Set[string] {
	keys := sets.New[string]()
	for _, p := range pairs {
		if i := strings.IndexByte(p, ':'); i >= 0 {
			p = p[:i]
		}
		if p != "" {
			keys.Insert(p)
		}
	}
	return keys
}
