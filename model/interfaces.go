package model

import "github.com/venicegeo/geojson-go/geojson"

// GeoJSONFeatureCreator is implemented by plan records and matches that render as one map feature
type GeoJSONFeatureCreator interface {
	GeoJSONFeature() (*geojson.Feature, error)
}

// GeoJSONFeatureCollectionCreator is implemented by query results that render as a feature collection
type GeoJSONFeatureCollectionCreator interface {
	GeoJSONFeatureCollection() (*geojson.FeatureCollection, error)
}

// GeoJSONFeatureMixin adds properties to an already built feature
type GeoJSONFeatureMixin interface {
	Apply(*geojson.Feature) error
}

var (
	_ GeoJSONFeatureCreator           = AcquisitionPlanRecord{}
	_ GeoJSONFeatureCreator           = Match{}
	_ GeoJSONFeatureCollectionCreator = MatchSet{}
	_ GeoJSONFeatureMixin             = SatelliteTag{}
	_ GeoJSONFeatureMixin             = ExtraAttributes{}
)
