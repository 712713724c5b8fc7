package model

import (
	"errors"

	"github.com/venicegeo/geojson-go/geojson"
)

var errNilFeature = errors.New("Cannot apply mixin to nil feature")

// SatelliteTag is a mixin naming the satellite a feature was planned for
type SatelliteTag struct {
	Satellite string
}

// Apply implements the GeoJSONFeatureMixin interface
func (tag SatelliteTag) Apply(feature *geojson.Feature) error {
	if feature == nil {
		return errNilFeature
	}
	feature.Properties["satellite"] = tag.Satellite
	return nil
}

// ExtraAttributes is a mixin carrying the extended attributes that are not
// part of the fixed schema
type ExtraAttributes map[string]string

// Apply implements the GeoJSONFeatureMixin interface
func (extra ExtraAttributes) Apply(feature *geojson.Feature) error {
	if feature == nil {
		return errNilFeature
	}
	if len(extra) == 0 {
		return nil
	}
	attrs := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		attrs[k] = v
	}
	feature.Properties["extra"] = attrs
	return nil
}
