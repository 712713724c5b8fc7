package model

import (
	"github.com/venicegeo/geojson-go/geojson"
)

// GeoJSONFeature implements the GeoJSONFeatureCreator interface. Schema
// columns become properties; the footprint becomes the geometry. A record
// without a footprint has a null geometry and no bbox.
func (r AcquisitionPlanRecord) GeoJSONFeature() (*geojson.Feature, error) {
	properties := make(map[string]interface{}, len(Columns))
	for _, col := range Columns {
		if col == ColPolygon {
			continue
		}
		properties[col] = r.Value(col)
	}

	var geometry interface{}
	coordinates := r.ringCoordinates()
	if coordinates != nil {
		geometry = geojson.NewPolygon(coordinates)
	}

	f := geojson.NewFeature(geometry, r.CanonicalID(), properties)
	if coordinates != nil {
		bbox, err := geojson.NewBoundingBox(coordinates)
		if err != nil {
			return nil, err
		}
		f.Bbox = bbox
	}

	if err := ExtraAttributes(r.Extra).Apply(f); err != nil {
		return nil, err
	}
	return f, nil
}

// ringCoordinates is the closed outer ring in (lon, lat) order
func (r AcquisitionPlanRecord) ringCoordinates() [][][]float64 {
	polygon := r.Polygon()
	if polygon == nil {
		return nil
	}
	ring := make([][]float64, len(polygon[0]))
	for i, pt := range polygon[0] {
		ring[i] = []float64{pt[0], pt[1]}
	}
	return [][][]float64{ring}
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (m Match) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := m.Record.GeoJSONFeature()
	if err != nil {
		return nil, err
	}
	if err = (SatelliteTag{Satellite: m.Satellite}).Apply(feature); err != nil {
		return nil, err
	}
	return feature, nil
}

// MatchSet is an ordered collection of query matches
type MatchSet []Match

// Records returns the matched records, in order
func (ms MatchSet) Records() []AcquisitionPlanRecord {
	records := make([]AcquisitionPlanRecord, len(ms))
	for i, m := range ms {
		records[i] = m.Record
	}
	return records
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (ms MatchSet) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(ms))
	for i, m := range ms {
		features[i], err = m.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}
