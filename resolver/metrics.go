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

package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "querycomplete",
		Subsystem: "resolver",
		Name:      "fetches_total",
		Help:      "Catalog fetches by dataset and result.",
	}, []string{"dataset", "result"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "querycomplete",
		Subsystem: "resolver",
		Name:      "cache_hits_total",
		Help:      "Resolves served from the candidate cache.",
	}, []string{"dataset"})
)
