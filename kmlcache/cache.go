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

package kmlcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
)

// ErrDownload is wrapped by every failure to bring a document into the cache
var ErrDownload = errors.New("plan document download failed")

// Cache keeps one local copy of each plan document. A file already present
// at a document's cache path is reused as-is.
type Cache struct {
	Dir      string
	BaseURL  string
	Client   *http.Client
	Attempts int
	Context  util.LogContext
}

// New creates a cache rooted at dir fetching documents relative to baseURL
func New(dir, baseURL string, client *http.Client, attempts int) *Cache {
	return &Cache{
		Dir:      dir,
		BaseURL:  baseURL,
		Client:   client,
		Attempts: attempts,
		Context:  &util.BasicLogContext{},
	}
}

// Path returns the deterministic cache location of a document,
// <dir>/<basename>.kml whatever the source extension
func (c *Cache) Path(documentID string) string {
	base := path.Base(documentID)
	if ext := path.Ext(base); strings.EqualFold(ext, ".kml") {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(c.Dir, base+".kml")
}

// URL returns the remote location of a document
func (c *Cache) URL(documentID string) string {
	return c.BaseURL + documentID
}

// EnsureLocal returns the local path of the document, downloading it first
// if it is not already cached. Downloaded is true when a fetch happened.
func (c *Cache) EnsureLocal(ctx context.Context, satellite, documentID string) (localPath string, downloaded bool, err error) {
	localPath = c.Path(documentID)
	if _, statErr := os.Stat(localPath); statErr == nil {
		util.LogInfo(c.Context, fmt.Sprintf("%s: %s already exists, skipping download.", satellite, localPath))
		return localPath, false, nil
	}

	if err = os.MkdirAll(c.Dir, 0755); err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrDownload, satellite, err)
	}

	url := c.URL(documentID)
	util.LogAudit(c.Context, util.LogAuditInput{
		Actor: util.AppName, Action: "GET", Actee: url, Message: "Downloading " + satellite + " plan document", Severity: util.INFO,
	})

	err = util.Fetch(ctx, c.Client, url, c.Attempts, func(body io.Reader) error {
		return writeAtomically(localPath, body)
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %s from %s: %w", ErrDownload, satellite, url, err)
	}

	util.LogInfo(c.Context, fmt.Sprintf("Downloaded %s plan document to: %s", satellite, localPath))
	return localPath, true, nil
}

// writeAtomically never leaves a partial file at dest
func writeAtomically(dest string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}
