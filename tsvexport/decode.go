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

package tsvexport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/tsvexport/columnmap"
)

// maxLineBytes bounds one line; footprints run to a few thousand vertices
const maxLineBytes = 16 * 1024 * 1024

// ErrEmptyTable is returned when there is not even a header row
var ErrEmptyTable = errors.New("table has no header row")

// Decode reads a table produced by Encode, locating the schema columns by
// header name. The result is re-sanitized and re-sorted, so encoding it
// reproduces a table Encode wrote byte for byte.
func Decode(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyTable
	}
	header := strings.Split(scanner.Text(), "\t")

	colMap, err := columnmap.New(model.Columns, header)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var maps []map[string]string
	for line := 2; scanner.Scan(); line++ {
		values := colMap.CreateValueMap()
		if err := colMap.UpdateMap(strings.Split(scanner.Text(), "\t"), values); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		maps = append(maps, values)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewTableFromMaps(model.Columns, maps), nil
}
