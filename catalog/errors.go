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
	stdcontext "context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel classifications for backend failures. Callers branch on
// these with errors.Is; everything else is a transient fetch failure.
var (
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrNotFound     = errors.New("catalog: not found")
	ErrTimeout      = errors.New("catalog: request timed out")
)

// classifyStatus wraps a non-2xx response into a sentinel where one
// applies, keeping the endpoint in the message.
func classifyStatus(endpoint string, status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrapf(ErrUnauthorized, "GET %s: status %d", endpoint, status)
	case http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "GET %s: status %d", endpoint, status)
	default:
		return errors.Newf("catalog: GET %s: unexpected status %d", endpoint, status)
	}
}

// classifyErr maps transport-level failures, folding context deadline
// hits into ErrTimeout.
func classifyErr(endpoint string, err error) error {
	if errors.Is(err, stdcontext.DeadlineExceeded) {
		return errors.Wrapf(ErrTimeout, "GET %s", endpoint)
	}
	return errors.Wrapf(err, "catalog: GET %s", endpoint)
}
