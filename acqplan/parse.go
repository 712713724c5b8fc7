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

package acqplan

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
)

// NominalLayerPrefix marks the layers that hold scheduled acquisitions
const NominalLayerPrefix = "NOMINAL"

var (
	// ErrMalformedDocument is wrapped when a document is not readable KML
	ErrMalformedDocument = errors.New("malformed plan document")
	// ErrNoNominalLayers is returned when a document has no scheduling layers
	ErrNoNominalLayers = errors.New("no NOMINAL layers in plan document")
)

// Attribute keys promoted to record fields. "Name"/"name" and "ID"/"id"
// are normalized separately.
var promotedAttributes = map[string]func(*model.AcquisitionPlanRecord, string){
	"OrbitAbsolute":        func(r *model.AcquisitionPlanRecord, v string) { r.OrbitAbsolute = v },
	"OrbitRelative":        func(r *model.AcquisitionPlanRecord, v string) { r.OrbitRelative = v },
	"Scenes":               func(r *model.AcquisitionPlanRecord, v string) { r.Scenes = v },
	"Timeliness":           func(r *model.AcquisitionPlanRecord, v string) { r.Timeliness = v },
	"Station":              func(r *model.AcquisitionPlanRecord, v string) { r.Station = v },
	"Mode":                 func(r *model.AcquisitionPlanRecord, v string) { r.Mode = v },
	"ObservationTimeStart": func(r *model.AcquisitionPlanRecord, v string) { r.ObservationTimeStart = v },
	"ObservationTimeStop":  func(r *model.AcquisitionPlanRecord, v string) { r.ObservationTimeStop = v },
	"ObservationDuration":  func(r *model.AcquisitionPlanRecord, v string) { r.ObservationDuration = v },
	"timestamp":            func(r *model.AcquisitionPlanRecord, v string) { r.Timestamp = v },
	"ID":                   func(r *model.AcquisitionPlanRecord, v string) { r.ID = v },
}

// Parser turns plan documents into records
type Parser struct {
	Context util.LogContext
}

// NewParser creates a parser logging under a fresh context
func NewParser() *Parser {
	return &Parser{Context: &util.BasicLogContext{}}
}

// ParseFile parses the plan document at path
func (p *Parser) ParseFile(path, satellite, layerCode string) ([]model.AcquisitionPlanRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return p.Parse(file, satellite, layerCode)
}

// Parse reads one plan document and returns one record per distinct
// placemark name found in its NOMINAL layers.
//
// Placemarks that share a name are merged in layer enumeration order, then
// document order within a layer: every field a placemark carries overwrites
// the value collected so far, and fields it lacks leave it untouched. Records
// are returned in the order their names first appear.
func (p *Parser) Parse(r io.Reader, satellite, layerCode string) ([]model.AcquisitionPlanRecord, error) {
	var root kmlContainer
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var containers []kmlContainer
	switch root.XMLName.Local {
	case "kml":
		containers = append(containers, root.Documents...)
		containers = append(containers, root.Folders...)
	case "Document", "Folder":
		containers = []kmlContainer{root}
	default:
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformedDocument, root.XMLName.Local)
	}

	var layers []layer
	for _, c := range containers {
		layers = enumerateLayers(c, layers)
	}

	merger := newMerger()
	retained := 0
	for _, l := range layers {
		if !strings.HasPrefix(l.name, NominalLayerPrefix) {
			continue
		}
		retained++
		for _, placemark := range l.placemarks {
			if err := merger.add(placemark); err != nil {
				util.LogDebug(p.Context, fmt.Sprintf("%s: layer %s: %v", satellite, l.name, err))
			}
		}
	}
	if retained == 0 {
		return nil, ErrNoNominalLayers
	}

	return merger.records(satellite, layerCode), nil
}

// partial is the merged state of every placemark seen under one name
type partial struct {
	name      string
	begin     string
	end       string
	icon      string
	footprint []model.Vertex
	attrs     map[string]string
}

type merger struct {
	order  []string
	byName map[string]*partial
}

func newMerger() *merger {
	return &merger{byName: map[string]*partial{}}
}

// add merges one placemark. Nameless placemarks are dropped. An unreadable
// polygon becomes an empty footprint and is reported.
func (m *merger) add(pm kmlPlacemark) error {
	if pm.Name == nil {
		return nil
	}
	name := strings.TrimSpace(*pm.Name)
	if name == "" {
		return nil
	}

	entry, ok := m.byName[name]
	if !ok {
		entry = &partial{name: name, attrs: map[string]string{}}
		m.byName[name] = entry
		m.order = append(m.order, name)
	}

	if pm.TimeSpan != nil {
		if pm.TimeSpan.Begin != nil {
			entry.begin = strings.TrimSpace(*pm.TimeSpan.Begin)
		}
		if pm.TimeSpan.End != nil {
			entry.end = strings.TrimSpace(*pm.TimeSpan.End)
		}
	}
	if pm.StyleURL != nil {
		entry.icon = strings.TrimSpace(*pm.StyleURL)
	}
	for k, v := range normalizeAttributes(pm.attributes()) {
		entry.attrs[k] = v
	}

	polygon := pm.firstPolygon()
	if polygon == nil {
		return nil
	}
	footprint, err := parseCoordinates(polygon.coordinates())
	if err != nil {
		entry.footprint = []model.Vertex{}
		return fmt.Errorf("placemark %s: %v", name, err)
	}
	entry.footprint = footprint
	return nil
}

// normalizeAttributes folds the alternate spellings of the join fields. The
// placemark name is authoritative, so name attributes are dropped; "ID" is
// preferred over "id".
func normalizeAttributes(attrs map[string]string) map[string]string {
	delete(attrs, "Name")
	delete(attrs, "name")
	if id, ok := attrs["id"]; ok {
		delete(attrs, "id")
		if _, hasID := attrs["ID"]; !hasID {
			attrs["ID"] = id
		}
	}
	return attrs
}

func (m *merger) records(satellite, layerCode string) []model.AcquisitionPlanRecord {
	records := make([]model.AcquisitionPlanRecord, 0, len(m.order))
	for _, name := range m.order {
		entry := m.byName[name]
		record := model.AcquisitionPlanRecord{
			Satellite: satellite,
			Layer:     layerCode,
			Name:      entry.name,
			Begin:     entry.begin,
			End:       entry.end,
			Icon:      entry.icon,
			Footprint: entry.footprint,
			Extra:     map[string]string{},
		}
		if record.Footprint == nil {
			record.Footprint = []model.Vertex{}
		}
		for k, v := range entry.attrs {
			if promote, ok := promotedAttributes[k]; ok {
				promote(&record, v)
			} else {
				record.Extra[k] = v
			}
		}
		if _, present := entry.attrs["timestamp"]; !present {
			record.Timestamp = record.Begin
		}
		records = append(records, record)
	}
	return records
}
