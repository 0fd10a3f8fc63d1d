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

// Package catalog talks to the metadata backend: metric names, tag
// catalogs, log facet values, and the server-side completion endpoint.
// The Catalog interface is what the rest of the module programs against;
// Client implements it over HTTP and Fixture implements it in memory.
package catalog

import "context"

// Catalog serves the candidate sets behind every suggestion pass. All
// calls honor ctx cancellation; errors are classified with the
// sentinels in errors.go.
type Catalog interface {
	// MetricNames lists every known metric name.
	MetricNames(ctx context.Context) ([]string, error)
	// MetricTags lists "key:value" pairs observed on the metric.
	MetricTags(ctx context.Context, metric string) ([]string, error)
	// TagValues lists values of one tag key, scoped to a metric when
	// metric is non-empty.
	TagValues(ctx context.Context, metric, key string) ([]string, error)

	LogsServices(ctx context.Context) ([]string, error)
	LogsSources(ctx context.Context) ([]string, error)
	LogsLevels(ctx context.Context) ([]string, error)
	// LogsFields lists indexed facet names beyond the built-in set.
	LogsFields(ctx context.Context) ([]string, error)
	// FieldValues lists observed values of one indexed facet.
	FieldValues(ctx context.Context, field string) ([]string, error)

	// Complete asks the backend to apply a completion server-side.
	// Callers fall back to local replacement when this fails.
	Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error)
}

// CompleteRequest is the server-side completion payload.
type CompleteRequest struct {
	Query        string `json:"query"`
	CursorOffset int    `json:"cursorOffset"`
	Selection    string `json:"selection"`
	Grammar      string `json:"grammar"`
}

// CompleteResponse is the rewritten line the backend hands back.
type CompleteResponse struct {
	NewQuery        string `json:"newQuery"`
	NewCursorOffset int    `json:"newCursorOffset"`
}
