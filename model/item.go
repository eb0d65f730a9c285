package model

import (
	"encoding/json"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"
)

// Asset is a named reference to the actual data file backing an Item
type Asset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type,omitempty"`
	Title string   `json:"title,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Link mirrors the STAC link object. Items produced by this pipeline carry an
// empty links list; downstream cataloging fills it in.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

// ItemProperties holds the STAC Item properties block. Exactly one temporal
// encoding is present on an assembled Item: Datetime alone for an instant, or
// the StartDatetime/EndDatetime pair for a range.
type ItemProperties struct {
	Datetime      string     `json:"datetime,omitempty"`
	StartDatetime string     `json:"start_datetime,omitempty"`
	EndDatetime   string     `json:"end_datetime,omitempty"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	License       string     `json:"license,omitempty"`
	Providers     []Provider `json:"providers,omitempty"`

	// CF carries pass-through global attributes, serialized as `cf:<key>`
	CF map[string]string `json:"-"`
}

// MarshalJSON merges CF attributes into the properties object under
// namespaced keys, keeping output deterministic (encoding/json sorts map keys)
func (p ItemProperties) MarshalJSON() ([]byte, error) {
	type plain ItemProperties
	base, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	if len(p.CF) == 0 {
		return base, nil
	}
	merged := make(map[string]json.RawMessage)
	if err = json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range p.CF {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged["cf:"+key] = encoded
	}
	return json.Marshal(merged)
}

// UnmarshalJSON recovers namespaced CF attributes alongside the plain fields
func (p *ItemProperties) UnmarshalJSON(data []byte) error {
	type plain ItemProperties
	var parsed plain
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if !strings.HasPrefix(key, "cf:") {
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			continue
		}
		if parsed.CF == nil {
			parsed.CF = make(map[string]string)
		}
		parsed.CF[strings.TrimPrefix(key, "cf:")] = text
	}
	*p = ItemProperties(parsed)
	return nil
}

// StacItem is the assembled output of the pipeline: one STAC 1.0.0 Item
// describing a single dataset instance.
type StacItem struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	StacVersion string              `json:"stac_version"`
	Properties  ItemProperties      `json:"properties"`
	Geometry    *geojson.Polygon    `json:"geometry"`
	Bbox        geojson.BoundingBox `json:"bbox"`
	Assets      map[string]Asset    `json:"assets"`
	Links       []Link              `json:"links"`
}

var _ GeoJSONFeatureCreator = StacItem{}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (item StacItem) GeoJSONFeature() (*geojson.Feature, error) {
	encoded, err := json.Marshal(item.Properties)
	if err != nil {
		return nil, err
	}
	properties := make(map[string]interface{})
	if err = json.Unmarshal(encoded, &properties); err != nil {
		return nil, err
	}
	feature := geojson.NewFeature(item.Geometry, item.ID, properties)
	feature.Bbox = feature.ForceBbox()
	return feature, nil
}
