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
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is an error carrying both a detailed log message and a
// shorter message fit for a caller
type Error struct {
	LogMsg     string
	SimpleMsg  string
	URL        string
	HTTPStatus int
	Cause      error
}

func (err *Error) Error() string {
	if err.SimpleMsg != "" {
		return err.SimpleMsg
	}
	return err.LogMsg
}

// Unwrap exposes the underlying cause
func (err *Error) Unwrap() error {
	return err.Cause
}

// Log logs the detailed message, optionally prefixed, and returns the error itself
func (err *Error) Log(ctx LogContext, prefix string) error {
	msg := err.LogMsg
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	e := entry(ctx)
	if err.URL != "" {
		e = e.WithField("url", err.URL)
	}
	if err.HTTPStatus != 0 {
		e = e.WithField("status", err.HTTPStatus)
	}
	e.Error(msg)
	return err
}

// HTTPErr is the JSON body returned for failed requests
type HTTPErr struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (err HTTPErr) Error() string {
	return fmt.Sprintf("%d: %s", err.Status, err.Message)
}

// HTTPError writes an HTTPErr response and audits the failure
func HTTPError(request *http.Request, writer http.ResponseWriter, ctx LogContext, message string, status int) {
	LogAudit(ctx, LogAuditInput{
		Actor:    AppName,
		Action:   request.Method + " response",
		Actee:    request.URL.String(),
		Message:  message,
		Severity: WARNING,
	})
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	bytes, _ := json.Marshal(HTTPErr{Status: status, Message: message})
	writer.Write(bytes)
}
