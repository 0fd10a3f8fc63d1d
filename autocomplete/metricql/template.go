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

// substituteTemplates replaces templating placeholders ($name and
// ${name:fmt}) with same-length alphanumeric stand-ins so that brace and
// colon counting is not corrupted by placeholder syntax. Offsets are
// preserved exactly; the substituted text is used for classification
// only, never returned to the caller.
func substituteTemplates(line string) string {
	r := []rune(line)
	for i := 0; i < len(r); i++ {
		if r[i] != '$' {
			continue
		}
		end := i + 1
		if end < len(r) && r[end] == '{' {
			for end < len(r) && r[end] != '}' {
				end++
			}
			if end < len(r) {
				end++ // include the closing brace
			}
		} else {
			for end < len(r) && isPlaceholderRune(r[end]) {
				end++
			}
			if end == i+1 {
				continue // a lone dollar sign is not a placeholder
			}
		}
		for j := i; j < end; j++ {
			r[j] = 'v'
		}
		i = end - 1
	}
	return string(r)
}

func isPlaceholderRune(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
