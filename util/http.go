// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultHTTPTimeout bounds every outbound request when no timeout is configured
const DefaultHTTPTimeout = 60 * time.Second

// HTTPClient returns a client whose requests are bounded by the given timeout
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("Non-2xx response code from %s: %d", err.URL, err.StatusCode)
}

// newFetchBackOff is swapped out by tests to avoid real sleeps
var newFetchBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// Fetch GETs url and hands the response body to consume. The request is
// attempted at most `attempts` times; 4xx responses are not retried.
// Exhausting all attempts returns the last error.
func Fetch(ctx context.Context, client *http.Client, url string, attempts int, consume func(io.Reader) error) error {
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newFetchBackOff(), uint64(attempts-1)), ctx)

	operation := func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		response, err := client.Do(request)
		if err != nil {
			return err
		}
		defer response.Body.Close()

		if response.StatusCode < 200 || response.StatusCode > 299 {
			statusErr := &StatusError{URL: url, StatusCode: response.StatusCode}
			if response.StatusCode >= 400 && response.StatusCode < 500 {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		return consume(response.Body)
	}

	return backoff.Retry(operation, policy)
}
