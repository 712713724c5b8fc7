// Copyright 2016, RadiantBlue Technologies, Inc.
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

package util

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables
const (
	S2_INDEX_URL         = "S2_INDEX_URL"
	S2_DOCUMENT_BASE_URL = "S2_DOCUMENT_BASE_URL"
	S2_OUTPUT_DIR        = "S2_OUTPUT_DIR"
	S2_SATELLITES        = "S2_SATELLITES"
	S2_LOCATIONS_FILE    = "S2_LOCATIONS_FILE"
	S2_HTTP_TIMEOUT      = "S2_HTTP_TIMEOUT"
	S2_FETCH_ATTEMPTS    = "S2_FETCH_ATTEMPTS"
	S2_REFRESH_INTERVAL  = "S2_REFRESH_INTERVAL"
	PORT                 = "PORT"
	LOG_LEVEL            = "LOG_LEVEL"
	LOG_FORMAT           = "LOG_FORMAT"
)

// Published locations of the acquisition plans
const (
	DefaultIndexURL        = "https://sentinels.copernicus.eu/web/sentinel/copernicus/sentinel-2/acquisition-plans"
	DefaultDocumentBaseURL = "https://sentinels.copernicus.eu/documents/d/sentinel/"
	DefaultOutputDir       = "sentinel_kml_data"
)

// DefaultSatellites are the tracked Sentinel-2 units, in processing order
var DefaultSatellites = []string{"Sentinel-2A", "Sentinel-2B", "Sentinel-2C"}

// DefaultLocations are queried when no locations file is configured
var DefaultLocations = []Location{
	{Name: "Seattle, WA", Code: "sea", Lat: 47.6062, Lon: -122.3321},
	{Name: "New York, NY", Code: "jfk", Lat: 40.7143, Lon: -74.0060},
	{Name: "Chicago, IL", Code: "ord", Lat: 41.8500, Lon: -87.6500},
}

// Location is a named query point; Code names its output file
type Location struct {
	Name string  `yaml:"name"`
	Code string  `yaml:"code"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// Config is the complete runtime configuration
type Config struct {
	IndexURL        string        `env:"S2_INDEX_URL"`
	DocumentBaseURL string        `env:"S2_DOCUMENT_BASE_URL"`
	OutputDir       string        `env:"S2_OUTPUT_DIR"`
	Satellites      []string      `env:"S2_SATELLITES" envSeparator:","`
	LocationsFile   string        `env:"S2_LOCATIONS_FILE"`
	HTTPTimeout     time.Duration `env:"S2_HTTP_TIMEOUT" envDefault:"60s"`
	FetchAttempts   int           `env:"S2_FETCH_ATTEMPTS" envDefault:"1"`
	RefreshInterval time.Duration `env:"S2_REFRESH_INTERVAL" envDefault:"6h"`
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`

	Locations []Location
}

var locationCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// LoadConfig reads an optional .env file, then the environment, then the
// locations file if one is named
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogAlert(&BasicLogContext{}, fmt.Sprintf("Could not read .env file: %v", err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.applyDefaults()

	for i, sat := range cfg.Satellites {
		cfg.Satellites[i] = strings.TrimSpace(sat)
	}

	if cfg.LocationsFile != "" {
		locations, err := LoadLocations(cfg.LocationsFile)
		if err != nil {
			return nil, err
		}
		cfg.Locations = locations
	} else {
		LogInfo(&BasicLogContext{}, "No locations file in environment. Using default query locations.")
		cfg.Locations = append([]Location(nil), DefaultLocations...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills the published plan locations and tracked satellites
// when the environment leaves them unset
func (c *Config) applyDefaults() {
	if c.IndexURL == "" {
		c.IndexURL = DefaultIndexURL
	}
	if c.DocumentBaseURL == "" {
		c.DocumentBaseURL = DefaultDocumentBaseURL
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if len(c.Satellites) == 0 {
		c.Satellites = append([]string(nil), DefaultSatellites...)
	}
}

// LoadLocations reads a YAML document of the form
//
//	locations:
//	  - {name: "Seattle, WA", code: sea, lat: 47.6062, lon: -122.3321}
func LoadLocations(path string) ([]Location, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locations file: %w", err)
	}
	var doc struct {
		Locations []Location `yaml:"locations"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing locations file %s: %w", path, err)
	}
	return doc.Locations, nil
}

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	if len(c.Satellites) == 0 {
		return errors.New("no satellites configured")
	}
	for _, sat := range c.Satellites {
		if sat == "" {
			return errors.New("empty satellite name in configuration")
		}
	}
	if len(c.Locations) == 0 {
		return errors.New("no query locations configured")
	}
	seen := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		if !locationCodePattern.MatchString(loc.Code) {
			return fmt.Errorf("location %q has invalid code %q", loc.Name, loc.Code)
		}
		if seen[loc.Code] {
			return fmt.Errorf("duplicate location code %q", loc.Code)
		}
		seen[loc.Code] = true
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
			return fmt.Errorf("location %q is out of range: (%v, %v)", loc.Name, loc.Lat, loc.Lon)
		}
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", S2_FETCH_ATTEMPTS, c.FetchAttempts)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %v", S2_REFRESH_INTERVAL, c.RefreshInterval)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%s must not be empty", S2_OUTPUT_DIR)
	}
	return nil
}

// PortString returns the listen address for the configured port
func (c *Config) PortString() string {
	return ":" + c.Port
}

// LocationByCode returns the configured location with the given code
func (c *Config) LocationByCode(code string) (Location, bool) {
	for _, loc := range c.Locations {
		if loc.Code == code {
			return loc, true
		}
	}
	return Location{}, false
}
