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

package suggest

// static candidate tables. Aggregators complete by prefix only; the
// rest of these back the logs-search union branch.

var aggregators = map[string]string{
	"avg":    "average across series",
	"sum":    "sum across series",
	"min":    "minimum across series",
	"max":    "maximum across series",
	"count":  "count of reporting series",
	"median": "median across series",
	"p95":    "95th percentile across series",
	"p99":    "99th percentile across series",
}

var facets = map[string]string{
	"service": "filter by emitting service",
	"source":  "filter by log source or integration",
	"status":  "filter by status or severity level",
	"host":    "filter by originating host",
	"env":     "filter by deployment environment",
}

var operators = map[string]string{
	"AND": "both terms must match",
	"OR":  "either term matches",
	"NOT": "exclude the following term",
}

var patterns = map[string]string{
	`*`:        "wildcard, matches any run of characters",
	`"phrase"`: "exact phrase match",
	`-`:        "exclude a term",
}

// levelComposites are shorthand multi-level groups offered in level
// slots when the cursor is not already inside parentheses.
var levelComposites = map[string]string{
	"(ERROR OR WARN)":         "errors and warnings",
	"(ERROR OR CRITICAL)":     "errors and criticals",
	"(INFO OR WARN OR ERROR)": "everything above debug",
}
