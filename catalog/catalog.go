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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	"golang.org/x/net/html"
)

// ErrIndexFetch is returned when the index page cannot be retrieved
var ErrIndexFetch = errors.New("could not fetch acquisition plan index")

var documentIDPattern = regexp.MustCompile(`documents/d/sentinel/(.*)`)

// Resolver finds the latest plan document for each satellite on the
// published acquisition plan index page
type Resolver struct {
	IndexURL string
	Client   *http.Client
	Attempts int
	Context  util.LogContext
}

// NewResolver creates a resolver for the given index page
func NewResolver(indexURL string, client *http.Client, attempts int) *Resolver {
	return &Resolver{
		IndexURL: indexURL,
		Client:   client,
		Attempts: attempts,
		Context:  &util.BasicLogContext{},
	}
}

// Resolve returns satellite name -> document ID for every satellite found
// on the index page. Satellites the page does not list are logged and
// omitted. Failing to fetch the page at all is an error wrapping ErrIndexFetch.
func (r *Resolver) Resolve(ctx context.Context, satellites []string) (map[string]string, error) {
	util.LogAudit(r.Context, util.LogAuditInput{
		Actor: util.AppName, Action: "GET", Actee: r.IndexURL, Message: "Requesting acquisition plan index", Severity: util.INFO,
	})

	var doc *html.Node
	err := util.Fetch(ctx, r.Client, r.IndexURL, r.Attempts, func(body io.Reader) (parseErr error) {
		doc, parseErr = html.Parse(body)
		return
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFetch, err)
	}

	return DocumentIDs(r.Context, doc, satellites), nil
}

// DocumentIDs extracts the document ID of each satellite's first listed plan
func DocumentIDs(ctx util.LogContext, doc *html.Node, satellites []string) map[string]string {
	ids := make(map[string]string, len(satellites))
	for _, satellite := range satellites {
		id, err := documentID(doc, satellite)
		if err != nil {
			util.LogAlert(ctx, fmt.Sprintf("%s: %v", satellite, err))
			continue
		}
		ids[satellite] = id
	}
	return ids
}

func documentID(doc *html.Node, satellite string) (string, error) {
	heading := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "h4") && strings.TrimSpace(textContent(n)) == satellite
	})
	if heading == nil {
		return "", errors.New("could not find heading")
	}

	var list *html.Node
	for sib := heading.NextSibling; sib != nil; sib = sib.NextSibling {
		if isElement(sib, "ul") {
			list = sib
			break
		}
	}
	if list == nil {
		return "", errors.New("no unordered list found after heading")
	}

	item := findFirst(list, func(n *html.Node) bool { return n != list && isElement(n, "li") })
	if item == nil {
		return "", errors.New("no list items found")
	}

	var href string
	link := findFirst(item, func(n *html.Node) bool {
		if !isElement(n, "a") {
			return false
		}
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				href = attr.Val
				return true
			}
		}
		return false
	})
	if link == nil {
		return "", errors.New("no link found in the first list item")
	}

	match := documentIDPattern.FindStringSubmatch(href)
	if match == nil {
		return "", fmt.Errorf("could not extract document ID from URL: %s", href)
	}
	id := match[1]
	if cut := strings.IndexAny(id, "?#"); cut >= 0 {
		id = id[:cut]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("empty document ID in URL: %s", href)
	}
	return id, nil
}

// LayerCode derives the layer tag of a document from its file name prefix,
// falling back to the satellite name
func LayerCode(documentID, satellite string) string {
	root := path.Base(documentID)
	if ext := path.Ext(root); strings.EqualFold(ext, ".kml") {
		root = strings.TrimSuffix(root, ext)
	}
	if documentID == "" || root == "." || root == "/" {
		root = satellite
	}
	if len(root) > 3 {
		root = root[:3]
	}
	return strings.ToUpper(root)
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

// findFirst walks n depth first, in document order
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
