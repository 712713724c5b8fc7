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

// Package tsvexport renders acquisition plan matches as tab-separated tables.
//
// Cells are sanitized by collapsing every run of Unicode whitespace to one
// space and trimming, so no cell can hold a tab or newline and values are
// written without quoting.
package tsvexport

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
)

// Table is a sanitized, ordered table ready to encode
type Table struct {
	Columns []string
	Rows    [][]string
}

// Sanitize collapses internal whitespace runs to a single space and trims
func Sanitize(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// NewTable renders records against the fixed schema, sorted by begin time
func NewTable(records []model.AcquisitionPlanRecord) *Table {
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = record.Row()
	}
	return newSortedTable(model.Columns, rows)
}

// NewTableFromMaps builds a table from header-keyed rows. Columns missing
// from a row are empty.
func NewTableFromMaps(columns []string, maps []map[string]string) *Table {
	rows := make([][]string, len(maps))
	for i, values := range maps {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = values[col]
		}
		rows[i] = row
	}
	return newSortedTable(columns, rows)
}

type sortKey struct {
	row   []string
	begin time.Time
	valid bool
}

// newSortedTable sanitizes every cell and stable-sorts rows ascending by
// the begin column; rows whose begin does not parse go last
func newSortedTable(columns []string, rows [][]string) *Table {
	beginIdx := -1
	for i, col := range columns {
		if col == model.ColBegin {
			beginIdx = i
		}
	}

	keys := make([]sortKey, len(rows))
	for i, row := range rows {
		clean := make([]string, len(row))
		for j, cell := range row {
			clean[j] = Sanitize(cell)
		}
		keys[i].row = clean
		if beginIdx >= 0 {
			if begin, err := model.ParsePlanTime(clean[beginIdx]); err == nil {
				keys[i].begin = begin
				keys[i].valid = true
			}
		}
	}

	sort.SliceStable(keys, func(a, b int) bool {
		if keys[a].valid != keys[b].valid {
			return keys[a].valid
		}
		return keys[a].valid && keys[a].begin.Before(keys[b].begin)
	})

	table := &Table{Columns: append([]string(nil), columns...), Rows: make([][]string, len(keys))}
	for i, key := range keys {
		table.Rows[i] = key.row
	}
	return table
}

// Len is the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Maps returns each row keyed by column name
func (t *Table) Maps() []map[string]string {
	maps := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]string, len(t.Columns))
		for j, col := range t.Columns {
			values[col] = row[j]
		}
		maps[i] = values
	}
	return maps
}

// Encode writes the header row then every data row, each line terminated
// by a newline
func (t *Table) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	lines := append([][]string{t.Columns}, t.Rows...)
	for _, line := range lines {
		if _, err := bw.WriteString(strings.Join(line, "\t")); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes returns the encoded table
func (t *Table) Bytes() []byte {
	var buf bytes.Buffer
	t.Encode(&buf)
	return buf.Bytes()
}
