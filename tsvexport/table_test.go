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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockRecord(name, begin string) model.AcquisitionPlanRecord {
	return model.AcquisitionPlanRecord{
		Satellite: "Sentinel-2A",
		Layer:     "S2A",
		Name:      name,
		Begin:     begin,
		Footprint: []model.Vertex{{X: 0, Y: 0, HasZ: true}, {X: 1, Y: 0, HasZ: true}, {X: 1, Y: 1, HasZ: true}},
		Station:   "SGS_",
	}
}

func namesOf(table *Table) []string {
	names := []string{}
	for _, row := range table.Maps() {
		names = append(names, row[model.ColName])
	}
	return names
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("  a \t\tb\n\r\nc  "))
	assert.Equal(t, "", Sanitize(" \t\n "))
	assert.Equal(t, "x y", Sanitize("x  y"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestNewTable_SortsByBegin(t *testing.T) {
	table := NewTable([]model.AcquisitionPlanRecord{
		mockRecord("second", "2024-01-02"),
		mockRecord("first", "2024-01-01"),
		mockRecord("unparsable", "soon"),
	})

	assert.Equal(t, []string{"first", "second", "unparsable"}, namesOf(table))
}

func TestNewTable_StableForTiesAndInvalid(t *testing.T) {
	table := NewTable([]model.AcquisitionPlanRecord{
		mockRecord("bad1", ""),
		mockRecord("tieA", "2024-03-01T00:00:00Z"),
		mockRecord("bad2", "n/a"),
		mockRecord("early", "2024-02-29T23:59:59.500Z"),
		mockRecord("tieB", "2024-03-01T00:00:00.000"),
	})

	assert.Equal(t, []string{"early", "tieA", "tieB", "bad1", "bad2"}, namesOf(table))
}

func TestNewTable_EveryColumnPresent(t *testing.T) {
	table := NewTable([]model.AcquisitionPlanRecord{{Name: "sparse"}})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, model.Columns, table.Columns)
	assert.Len(t, table.Rows[0], 18)
	assert.Equal(t, "sparse", table.Maps()[0][model.ColCanonicalID])
}

func TestEncode_Format(t *testing.T) {
	record := mockRecord("1", "2024-01-01")
	record.Mode = "NOBS\twith\ttabs\nand newline"

	out := string(NewTable([]model.AcquisitionPlanRecord{record}).Bytes())

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "", lines[2])
	assert.Equal(t, strings.Join(model.Columns, "\t"), lines[0])
	cells := strings.Split(lines[1], "\t")
	assert.Len(t, cells, 18)
	assert.Equal(t, "NOBS with tabs and newline", cells[13])
	assert.Equal(t, "POLYGON Z ((0 0 0, 1 0 0, 1 1 0))", cells[0])
}

func TestEncode_NoQuoting(t *testing.T) {
	record := mockRecord(`"quoted", name`, "2024-01-01")

	out := string(NewTable([]model.AcquisitionPlanRecord{record}).Bytes())

	assert.Contains(t, out, "\t\"quoted\", name\t")
}

func TestDecode_RoundTrip(t *testing.T) {
	records := []model.AcquisitionPlanRecord{
		mockRecord("b", "2024-01-02T10:00:00.000"),
		mockRecord("a  with   gaps", "2024-01-01T10:00:00.000"),
		mockRecord("c", "bad date"),
		{Name: "empty"},
	}
	records[0].Extra = map[string]string{"Satellite": "S2A"}
	records[1].Station = "  MTI_\n"
	first := NewTable(records)
	exported := first.Bytes()

	// Tested code
	decoded, err := Decode(bytes.NewReader(exported))

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, first.Maps(), decoded.Maps())
	assert.Equal(t, "a with gaps", decoded.Maps()[0][model.ColName])
	assert.Equal(t, "MTI_", decoded.Maps()[0][model.ColStation])
	assert.Equal(t, exported, decoded.Bytes())
}

func TestDecode_ReorderedColumns(t *testing.T) {
	header := append([]string{"extra"}, model.Columns...)
	cells := make([]string, len(header))
	cells[0] = "ignored"
	cells[9] = "42"
	input := strings.Join(header, "\t") + "\n" + strings.Join(cells, "\t") + "\n"

	table, err := Decode(strings.NewReader(input))

	require.Nil(t, err)
	assert.Equal(t, "42", table.Maps()[0][model.ColName])
}

func TestDecode_Error(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyTable))

	_, err = Decode(strings.NewReader("Polygon\tID\n"))
	assert.NotNil(t, err)

	_, err = Decode(strings.NewReader(strings.Join(model.Columns, "\t") + "\nshort\trow\n"))
	assert.NotNil(t, err)
}

func TestWriteLocation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, written, err := WriteLocation(dir, "sea", []model.AcquisitionPlanRecord{mockRecord("1", "2024-01-01")})

	require.Nil(t, err)
	assert.True(t, written)
	assert.Equal(t, filepath.Join(dir, "sea.tsv"), path)
	content, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(string(content), "\n"))
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
}

func TestWriteLocation_NoMatchesWritesNothing(t *testing.T) {
	dir := t.TempDir()

	path, written, err := WriteLocation(dir, "jfk", nil)

	assert.Nil(t, err)
	assert.False(t, written)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
