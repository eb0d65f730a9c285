package model

import (
	"errors"
	"fmt"

	"github.com/venicegeo/geojson-go/geojson"
)

// Extent is a WGS84 bounding box. A zero-area extent (single-point dataset)
// is valid; an extent crossing the antimeridian is not representable.
type Extent struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// NewExtentFromCoords computes the extent covering the given coordinate
// arrays. The two slices are independent axes and need not be the same length.
func NewExtentFromCoords(lons, lats []float64) (*Extent, error) {
	if len(lons) == 0 || len(lats) == 0 {
		return nil, errors.New("empty coordinate array")
	}
	extent := Extent{
		MinLon: lons[0], MaxLon: lons[0],
		MinLat: lats[0], MaxLat: lats[0],
	}
	for _, lon := range lons {
		extent.MinLon = min(extent.MinLon, lon)
		extent.MaxLon = max(extent.MaxLon, lon)
	}
	for _, lat := range lats {
		extent.MinLat = min(extent.MinLat, lat)
		extent.MaxLat = max(extent.MaxLat, lat)
	}
	return &extent, nil
}

// Expand grows the extent to include the given point
func (e *Extent) Expand(lon, lat float64) {
	e.MinLon = min(e.MinLon, lon)
	e.MaxLon = max(e.MaxLon, lon)
	e.MinLat = min(e.MinLat, lat)
	e.MaxLat = max(e.MaxLat, lat)
}

// Contains reports whether the point lies inside the extent, borders included
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.MinLon && lon <= e.MaxLon && lat >= e.MinLat && lat <= e.MaxLat
}

// Validate checks the min<=max ordering invariant on both axes and that all
// corners are legal WGS84 coordinates
func (e Extent) Validate() error {
	if e.MinLon > e.MaxLon {
		return fmt.Errorf("extent min_lon %v exceeds max_lon %v", e.MinLon, e.MaxLon)
	}
	if e.MinLat > e.MaxLat {
		return fmt.Errorf("extent min_lat %v exceeds max_lat %v", e.MinLat, e.MaxLat)
	}
	if e.MinLon < -180 || e.MaxLon > 180 {
		return fmt.Errorf("extent longitudes [%v, %v] outside [-180, 180]", e.MinLon, e.MaxLon)
	}
	if e.MinLat < -90 || e.MaxLat > 90 {
		return fmt.Errorf("extent latitudes [%v, %v] outside [-90, 90]", e.MinLat, e.MaxLat)
	}
	return nil
}

// Bbox returns the four-element STAC/GeoJSON bounding box array
func (e Extent) Bbox() geojson.BoundingBox {
	return geojson.BoundingBox{e.MinLon, e.MinLat, e.MaxLon, e.MaxLat}
}

// Polygon traces the extent as a closed five-point ring. Degenerate extents
// still produce the full ring, matching what catalog clients expect.
func (e Extent) Polygon() *geojson.Polygon {
	return geojson.NewPolygon([][][]float64{{
		{e.MinLon, e.MinLat},
		{e.MaxLon, e.MinLat},
		{e.MaxLon, e.MaxLat},
		{e.MinLon, e.MaxLat},
		{e.MinLon, e.MinLat},
	}})
}
