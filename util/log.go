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
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppName is the name every log entry is tagged with
const AppName = "s2-acq-table"

// Severity levels for audit entries
const (
	DEBUG    = "DEBUG"
	INFO     = "INFO"
	NOTICE   = "NOTICE"
	WARNING  = "WARNING"
	ERROR    = "ERROR"
	CRITICAL = "CRITICAL"
)

// LogContext is anything that can identify the origin of a log entry
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a LogContext with a lazily generated session ID
type BasicLogContext struct {
	once      sync.Once
	sessionID string
}

// NewLogContext creates a context logging under the given session ID
func NewLogContext(sessionID string) *BasicLogContext {
	return &BasicLogContext{sessionID: sessionID}
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return AppName
}

// SessionID returns the session ID, generating one on first use
func (c *BasicLogContext) SessionID() string {
	c.once.Do(func() {
		if c.sessionID == "" {
			c.sessionID, _ = PsuUUID()
		}
	})
	return c.sessionID
}

// LogRootDir is unused; all output goes to the configured writer
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput describes one auditable interaction with an outside party
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity string
}

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// ConfigureLogging sets the level ("debug", "info", ...) and format ("text" or "json")
// of the package logger. Unknown levels fall back to info.
func ConfigureLogging(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetLogOutput redirects log output, returning the previous writer
func SetLogOutput(out io.Writer) io.Writer {
	prev := logger.Out
	logger.SetOutput(out)
	return prev
}

// PsuUUID returns a new random UUID string
func PsuUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func entry(ctx LogContext) *logrus.Entry {
	if ctx == nil {
		ctx = &BasicLogContext{}
	}
	return logger.WithFields(logrus.Fields{
		"app":     ctx.AppName(),
		"session": ctx.SessionID(),
	})
}

// LogDebug logs a debug-level message
func LogDebug(ctx LogContext, msg string) {
	entry(ctx).Debug(msg)
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, msg string) {
	entry(ctx).Info(msg)
}

// LogAlert logs a warning that needs operator attention but is not fatal
func LogAlert(ctx LogContext, msg string) {
	entry(ctx).Warn(msg)
}

// LogSimpleErr logs an error with a message and returns an error
// combining both, for convenient returns
func LogSimpleErr(ctx LogContext, msg string, err error) error {
	if err == nil {
		entry(ctx).Error(msg)
		return &Error{LogMsg: msg, SimpleMsg: msg}
	}
	entry(ctx).WithError(err).Error(msg)
	return &Error{LogMsg: msg + err.Error(), SimpleMsg: msg, Cause: err}
}

// LogAudit records an interaction with an outside party
func LogAudit(ctx LogContext, input LogAuditInput) {
	e := entry(ctx).WithFields(logrus.Fields{
		"actor":  input.Actor,
		"action": input.Action,
		"actee":  input.Actee,
		"audit":  true,
	})
	switch input.Severity {
	case DEBUG:
		e.Debug(input.Message)
	case WARNING, NOTICE:
		e.Warn(input.Message)
	case ERROR, CRITICAL:
		e.Error(input.Message)
	default:
		e.Info(input.Message)
	}
}
