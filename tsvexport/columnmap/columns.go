package columnmap

import (
	"fmt"
)

//namedColumn matches a canonical name to a column index in a table row
type namedColumn struct {
	index int
	key   string
}

//ColumnMap matches the name and index of columns
type ColumnMap struct {
	//entries are in the order of the requested names
	entries []namedColumn
	width   int
}

//CreateValueMap creates an empty map suitable for matching
//values to column names
func (m *ColumnMap) CreateValueMap() map[string]string {
	return make(map[string]string, len(m.entries))
}

//UpdateMap populates the valueMap with the values read from one row.
//Rows of the wrong width are rejected.
func (m *ColumnMap) UpdateMap(rawValues []string, valueMap map[string]string) error {
	if len(rawValues) != m.width {
		return fmt.Errorf("row has %d cells, header has %d", len(rawValues), m.width)
	}
	for _, namedCol := range m.entries {
		valueMap[namedCol.key] = rawValues[namedCol.index]
	}
	return nil
}

//New creates a new column map populated with indices extracted from the provided
//header row. Every named column must be present exactly once.
func New(namedColumns []string, columnNamesRow []string) (ColumnMap, error) {
	inverseMap := make(map[string]int, len(columnNamesRow))
	for idx, name := range columnNamesRow {
		if _, dup := inverseMap[name]; dup {
			return ColumnMap{}, fmt.Errorf("duplicate column %q", name)
		}
		inverseMap[name] = idx
	}

	entries := make([]namedColumn, len(namedColumns))
	for idx, name := range namedColumns {
		columnIndex, keyExists := inverseMap[name]
		if !keyExists {
			return ColumnMap{}, fmt.Errorf("no such column %q", name)
		}
		entries[idx] = namedColumn{columnIndex, name}
	}

	return ColumnMap{entries: entries, width: len(columnNamesRow)}, nil
}
