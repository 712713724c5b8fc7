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
	"os"
	"path/filepath"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
)

// LocationPath is where the table of a query location is written
func LocationPath(dir, code string) string {
	return filepath.Join(dir, code+".tsv")
}

// WriteLocation writes <dir>/<code>.tsv for the records. Nothing is written
// when there are no records; written reports whether a file was produced.
func WriteLocation(dir, code string, records []model.AcquisitionPlanRecord) (path string, written bool, err error) {
	path = LocationPath(dir, code)
	if len(records) == 0 {
		return path, false, nil
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return path, false, err
	}
	if err = os.WriteFile(path, NewTable(records).Bytes(), 0644); err != nil {
		return path, false, err
	}
	return path, true, nil
}
