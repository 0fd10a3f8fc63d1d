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

package logsearch

import (
	"fmt"
	"strings"
)

// Validate runs the syntax sanity checks over a logs query and returns
// non-blocking warnings; the query may still be submitted. An empty
// slice means the query looks well-formed.
//
// Checks: unmatched quotes and parentheses, operator sequences with no
// operand between them (including NOT followed by AND/OR), and adjacent
// wildcards.
func Validate(query string) []string {
	var warnings []string

	if !quotesBalanced(query) {
		warnings = append(warnings, "unmatched quote")
	}
	if depth := parenDepth(query); depth != 0 {
		warnings = append(warnings, "unmatched parenthesis")
	}
	if seq := invalidOperatorSequence(query); seq != "" {
		warnings = append(warnings, fmt.Sprintf("invalid operator sequence %q", seq))
	}
	if strings.Contains(query, "**") {
		warnings = append(warnings, `invalid wildcard "**"`)
	}
	return warnings
}

func quotesBalanced(query string) bool {
	open := false
	escaped := false
	for _, c := range query {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			open = !open
		}
	}
	return !open
}

func parenDepth(query string) int {
	depth := 0
	inQuote := false
	for _, c := range query {
		switch c {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		}
	}
	return depth
}

// invalidOperatorSequence finds an operator directly followed by AND or
// OR. AND NOT / OR NOT is a valid negation; NOT AND / NOT OR is not,
// since NOT binds to the operand that never arrives.
func invalidOperatorSequence(query string) string {
	fields := strings.Fields(query)
	for i := 1; i < len(fields); i++ {
		prev, cur := fields[i-1], fields[i]
		if isOperator(prev) && (cur == "AND" || cur == "OR") {
			return prev + " " + cur
		}
	}
	return ""
}

func isOperator(word string) bool {
	return word == "AND" || word == "OR" || word == "NOT"
}
