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

package catalog

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Fixture is an in-memory Catalog for tests and the offline demo mode.
// Zero value is usable; Err, when set, is returned by every call.
type Fixture struct {
	Metrics  []string
	Tags     map[string][]string // metric -> "key:value" pairs
	Values   map[string][]string // key -> values, metric-agnostic
	Services []string
	Sources  []string
	Levels   []string
	Fields   []string
	Facets   map[string][]string // facet -> values

	Err error

	// Calls counts invocations per method name.
	Calls map[string]int
}

var _ Catalog = &Fixture{}

// SampleFixture returns a fixture populated with a believable small
// catalog, used by the demo mode and as a convenient test base.
func SampleFixture() *Fixture {
	return &Fixture{
		Metrics: []string{
			"system.cpu.user", "system.cpu.idle", "system.mem.used",
			"system.mem.free", "container.cpu.usage", "http.request.duration",
		},
		Tags: map[string][]string{
			"system.cpu.user": {"host:web-01", "host:web-02", "env:prod", "env:staging"},
			"system.mem.used": {"host:web-01", "env:prod", "region:us-east-1"},
		},
		Values: map[string][]string{
			"host":   {"web-01", "web-02", "db-01"},
			"env":    {"prod", "staging", "dev"},
			"region": {"us-east-1", "eu-west-1"},
		},
		Services: []string{"web-app", "web-api", "worker", "scheduler"},
		Sources:  []string{"nginx", "postgres", "java", "python"},
		Levels:   []string{"DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"},
		Fields:   []string{"trace_id", "request_id", "duration"},
		Facets: map[string][]string{
			"trace_id": {},
			"duration": {},
		},
	}
}

func (f *Fixture) count(method string) {
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[method]++
}

func (f *Fixture) MetricNames(ctx context.Context) ([]string, error) {
	f.count("MetricNames")
	return f.Metrics, f.Err
}

func (f *Fixture) MetricTags(ctx context.Context, metric string) ([]string, error) {
	f.count("MetricTags")
	if f.Err != nil {
		return nil, f.Err
	}
	if pairs, ok := f.Tags[metric]; ok {
		return pairs, nil
	}
	// unknown metric: union of everything, matching the backend's
	// unscoped fallback.
	union := sets.New[string]()
	for _, pairs := range f.Tags {
		union.Insert(pairs...)
	}
	return sets.List(union), nil
}

func (f *Fixture) TagValues(ctx context.Context, metric, key string) ([]string, error) {
	f.count("TagValues")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Values[key], nil
}

func (f *Fixture) LogsServices(ctx context.Context) ([]string, error) {
	f.count("LogsServices")
	return f.Services, f.Err
}

func (f *Fixture) LogsSources(ctx context.Context) ([]string, error) {
	f.count("LogsSources")
	return f.Sources, f.Err
}

func (f *Fixture) LogsLevels(ctx context.Context) ([]string, error) {
	f.count("LogsLevels")
	return f.Levels, f.Err
}

func (f *Fixture) LogsFields(ctx context.Context) ([]string, error) {
	f.count("LogsFields")
	return f.Fields, f.Err
}

func (f *Fixture) FieldValues(ctx context.Context, field string) ([]string, error) {
	f.count("FieldValues")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Facets[field], nil
}

func (f *Fixture) Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error) {
	f.count("Complete")
	if f.Err != nil {
		return CompleteResponse{}, f.Err
	}
	return CompleteResponse{}, ErrNotFound
}
