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
	"k8s.io/apimachinery/pkg/util/sets"
)

// ContextType names the grammatical slot the cursor sits in. It is a
// closed set; parsers never invent new values and consumers may switch
// exhaustively over it.
type ContextType string

const (
	MetricNameContext     ContextType = "metric-name"
	AggregatorContext     ContextType = "aggregator-prefix"
	FilterTagKeyContext   ContextType = "filter-tag-key"
	FilterTagValueContext ContextType = "filter-tag-value"
	GroupingTagContext    ContextType = "grouping-tag"

	LogsSearchContext    ContextType = "logs-search"
	LogsFacetNameContext ContextType = "logs-facet-name"
	LogsServiceContext   ContextType = "logs-facet-value-service"
	LogsSourceContext    ContextType = "logs-facet-value-source"
	LogsLevelContext     ContextType = "logs-facet-value-level"
	LogsHostContext      ContextType = "logs-facet-value-host"
	LogsEnvContext       ContextType = "logs-facet-value-env"
)

// IsLogs reports whether the context belongs to the logs-search grammar.
func (t ContextType) IsLogs() bool {
	switch t {
	case LogsSearchContext, LogsFacetNameContext, LogsServiceContext,
		LogsSourceContext, LogsLevelContext, LogsHostContext, LogsEnvContext:
		return true
	}
	return false
}

// IsFacetValue reports whether the context completes the value side of a
// logs facet.
func (t ContextType) IsFacetValue() bool {
	switch t {
	case LogsServiceContext, LogsSourceContext, LogsLevelContext,
		LogsHostContext, LogsEnvContext:
		return true
	}
	return false
}

// QueryContext is the classification of a single (text, cursor) pair.
// It is produced fresh on every parse call and never mutated afterwards.
//
// CursorOffset is a rune offset into LineText; parsers split the input on
// newlines and classify only the active line.
type QueryContext struct {
	Type         ContextType
	CurrentToken string
	CursorOffset int
	LineText     string

	// MetricName and TagKey scope remote lookups; both may be empty.
	MetricName string
	TagKey     string

	// ExistingKeys holds tag keys (or grouping keys, or facet names)
	// already present in the query, so suggestions can suppress them.
	ExistingKeys sets.Set[string]

	// InParens is set when the cursor sits inside an unmatched "(",
	// e.g. an IN (...) list or a (A OR B) facet group.
	InParens bool
	// AfterOperator is set when the token directly follows AND/OR/NOT.
	AfterOperator bool
}

// EmptyContext classifies text we could not make sense of: best-effort
// per the propagation policy, parsers degrade to this rather than fail.
func EmptyContext(t ContextType, line string, offset int) QueryContext {
	return QueryContext{
		Type:         t,
		LineText:     line,
		CursorOffset: offset,
		ExistingKeys: sets.New[string](),
	}
}
