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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
)

// Element names match regardless of namespace, so KML 2.2 documents with and
// without the opengis namespace both decode.

type kmlContainer struct {
	XMLName    xml.Name
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Documents  []kmlContainer `xml:"Document"`
	Folders    []kmlContainer `xml:"Folder"`
}

type kmlPlacemark struct {
	Name          *string           `xml:"name"`
	TimeSpan      *kmlTimeSpan      `xml:"TimeSpan"`
	StyleURL      *string           `xml:"styleUrl"`
	ExtendedData  *kmlExtendedData  `xml:"ExtendedData"`
	Polygon       *kmlPolygon       `xml:"Polygon"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry"`
}

type kmlTimeSpan struct {
	Begin *string `xml:"begin"`
	End   *string `xml:"end"`
}

type kmlExtendedData struct {
	Data       []kmlData       `xml:"Data"`
	SchemaData []kmlSchemaData `xml:"SchemaData"`
}

type kmlData struct {
	Name  string  `xml:"name,attr"`
	Value *string `xml:"value"`
	Text  string  `xml:",chardata"`
}

type kmlSchemaData struct {
	SimpleData []kmlSimpleData `xml:"SimpleData"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlPolygon struct {
	OuterBoundary *kmlBoundary `xml:"outerBoundaryIs"`
}

type kmlBoundary struct {
	LinearRing *kmlLinearRing `xml:"LinearRing"`
}

type kmlLinearRing struct {
	Coordinates *string `xml:"coordinates"`
}

type kmlMultiGeometry struct {
	Polygons        []kmlPolygon       `xml:"Polygon"`
	MultiGeometries []kmlMultiGeometry `xml:"MultiGeometry"`
}

// layer is a named group of placemarks: a Folder, or a Document holding
// placemarks directly
type layer struct {
	name       string
	placemarks []kmlPlacemark
}

// enumerateLayers lists layers in pre-order; a container's nested Documents
// come before its nested Folders
func enumerateLayers(c kmlContainer, out []layer) []layer {
	if c.XMLName.Local == "Folder" || len(c.Placemarks) > 0 {
		out = append(out, layer{name: strings.TrimSpace(c.Name), placemarks: c.Placemarks})
	}
	for _, d := range c.Documents {
		out = enumerateLayers(d, out)
	}
	for _, f := range c.Folders {
		out = enumerateLayers(f, out)
	}
	return out
}

// firstPolygon returns the first polygon of the placemark, direct or nested
// in a MultiGeometry
func (p kmlPlacemark) firstPolygon() *kmlPolygon {
	if p.Polygon != nil {
		return p.Polygon
	}
	if p.MultiGeometry != nil {
		return p.MultiGeometry.firstPolygon()
	}
	return nil
}

func (mg *kmlMultiGeometry) firstPolygon() *kmlPolygon {
	if len(mg.Polygons) > 0 {
		return &mg.Polygons[0]
	}
	for i := range mg.MultiGeometries {
		if polygon := mg.MultiGeometries[i].firstPolygon(); polygon != nil {
			return polygon
		}
	}
	return nil
}

func (p *kmlPolygon) coordinates() string {
	if p.OuterBoundary == nil || p.OuterBoundary.LinearRing == nil || p.OuterBoundary.LinearRing.Coordinates == nil {
		return ""
	}
	return *p.OuterBoundary.LinearRing.Coordinates
}

// attributes flattens the extended data of a placemark; later entries win
func (p kmlPlacemark) attributes() map[string]string {
	attrs := map[string]string{}
	if p.ExtendedData == nil {
		return attrs
	}
	for _, data := range p.ExtendedData.Data {
		if data.Name == "" {
			continue
		}
		if data.Value != nil {
			attrs[data.Name] = strings.TrimSpace(*data.Value)
		} else {
			attrs[data.Name] = strings.TrimSpace(data.Text)
		}
	}
	for _, schemaData := range p.ExtendedData.SchemaData {
		for _, simple := range schemaData.SimpleData {
			if simple.Name == "" {
				continue
			}
			attrs[simple.Name] = strings.TrimSpace(simple.Value)
		}
	}
	return attrs
}

// spacedComma matches a tuple separator with stray whitespace around it
var spacedComma = regexp.MustCompile(`\s*,\s*`)

// parseCoordinates reads whitespace separated "lon,lat[,alt]" tuples. Spaces
// next to a comma belong to the tuple, not the separator.
func parseCoordinates(text string) ([]model.Vertex, error) {
	tuples := strings.Fields(spacedComma.ReplaceAllString(text, ","))
	vertices := make([]model.Vertex, 0, len(tuples))
	for _, tuple := range tuples {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid coordinate tuple %q", tuple)
		}
		var values [3]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid coordinate tuple %q: %v", tuple, err)
			}
			values[i] = f
		}
		vertices = append(vertices, model.Vertex{X: values[0], Y: values[1], Z: values[2], HasZ: len(parts) == 3})
	}
	return vertices, nil
}
