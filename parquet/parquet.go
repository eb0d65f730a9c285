// Package parquet adapts columnar Parquet files, local or object-store
// hosted, to the source.Dataset capability set.
package parquet

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	goparquet "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/util"
)

// providerMetadataKey is the conventional file-level key-value metadata key
// holding a JSON-encoded provider blob
const providerMetadataKey = "provider"

// geoMetadataKey is the GeoParquet file metadata key
const geoMetadataKey = "geo"

// Dataset is an opened Parquet source
type Dataset struct {
	uri    string
	file   *goparquet.File
	closer func() error
	logCtx util.LogContext
}

// Open opens a Parquet source. s3:// objects are read in place over ranged
// requests; http(s) sources are staged to a temp file.
func Open(logCtx util.LogContext, uri string) (*Dataset, error) {
	reader, size, closer, err := source.OpenReaderAt(logCtx, uri)
	if err != nil {
		return nil, &source.SourceOpenError{URI: uri, Err: err}
	}
	file, err := goparquet.OpenFile(reader, size)
	if err != nil {
		closer()
		return nil, &source.SourceOpenError{URI: uri, Err: err}
	}
	return &Dataset{uri: uri, file: file, closer: closer, logCtx: logCtx}, nil
}

// Format implements the source.Dataset interface
func (d *Dataset) Format() source.Format {
	return source.Parquet
}

// URI implements the source.Dataset interface
func (d *Dataset) URI() string {
	return d.uri
}

// Close implements the source.Dataset interface
func (d *Dataset) Close() error {
	return d.closer()
}

// SpatialExtent computes the bounding box. Resolution order: GeoParquet file
// metadata bbox, then a geometry-column WKB scan, then plain lat/lon columns.
func (d *Dataset) SpatialExtent() (*model.Extent, error) {
	if extent := d.extentFromGeoMetadata(); extent != nil {
		return extent, nil
	}

	if index, ok := d.geometryColumn(); ok {
		return d.extentFromGeometryColumn(index)
	}

	latIndex, latOK := d.columnIndex("lat")
	lonIndex, lonOK := d.columnIndex("lon")
	if !latOK || !lonOK {
		return nil, &source.MissingSpatialInfoError{
			URI:    d.uri,
			Detail: "need either a geometry column or `lat` and `lon` columns",
		}
	}
	return d.extentFromLatLonColumns(latIndex, lonIndex)
}

// TemporalRange scans the first column whose declared type is a datetime
// type, regardless of its name. ok=false means no such column exists.
func (d *Dataset) TemporalRange() (*model.TemporalRange, bool, error) {
	index, convert, found := d.datetimeColumn()
	if !found {
		return nil, false, nil
	}

	var earliest, latest time.Time
	var seen bool
	err := d.scan(map[int]func(goparquet.Value){
		index: func(value goparquet.Value) {
			t := convert(value)
			if !seen {
				earliest, latest = t, t
				seen = true
				return
			}
			if t.Before(earliest) {
				earliest = t
			}
			if t.After(latest) {
				latest = t
			}
		},
	})
	if err != nil {
		return nil, false, err
	}
	if !seen {
		util.LogAlert(d.logCtx, "Datetime column found but empty in "+d.uri)
		return nil, false, nil
	}
	tr, err := model.NewTemporalRange(earliest, latest)
	if err != nil {
		return nil, false, err
	}
	return tr, true, nil
}

// providerBlob is the JSON shape expected under the `provider` metadata key
type providerBlob struct {
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
	URL     string   `json:"url"`
	License string   `json:"license"`
}

// Metadata reads the provider blob from the file key-value metadata. A
// malformed blob degrades to no provider with a logged warning.
func (d *Dataset) Metadata() model.DatasetMetadata {
	var metadata model.DatasetMetadata
	raw, ok := d.file.Lookup(providerMetadataKey)
	if !ok || raw == "" {
		return metadata
	}
	var blob providerBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		util.LogAlert(d.logCtx, "Malformed provider metadata in "+d.uri+": "+err.Error())
		return metadata
	}
	if blob.Name != "" {
		roles := blob.Roles
		if len(roles) == 0 {
			roles = []string{"producer"}
		}
		metadata.Providers = []model.Provider{{Name: blob.Name, Roles: roles, URL: blob.URL}}
	}
	metadata.License = blob.License
	return metadata
}

// geoMetadata is the subset of the GeoParquet `geo` file metadata used here
type geoMetadata struct {
	PrimaryColumn string                     `json:"primary_column"`
	Columns       map[string]geoColumnExtent `json:"columns"`
}

type geoColumnExtent struct {
	Bbox []float64 `json:"bbox"`
}

func (d *Dataset) extentFromGeoMetadata() *model.Extent {
	raw, ok := d.file.Lookup(geoMetadataKey)
	if !ok {
		return nil
	}
	var geo geoMetadata
	if err := json.Unmarshal([]byte(raw), &geo); err != nil {
		util.LogAlert(d.logCtx, "Malformed GeoParquet metadata in "+d.uri+": "+err.Error())
		return nil
	}
	column, ok := geo.Columns[geo.PrimaryColumn]
	if !ok {
		for _, candidate := range geo.Columns {
			if len(candidate.Bbox) >= 4 {
				column = candidate
				break
			}
		}
	}
	switch len(column.Bbox) {
	case 4:
		return &model.Extent{MinLon: column.Bbox[0], MinLat: column.Bbox[1], MaxLon: column.Bbox[2], MaxLat: column.Bbox[3]}
	case 6:
		// 3-D bbox: [minx miny minz maxx maxy maxz]
		return &model.Extent{MinLon: column.Bbox[0], MinLat: column.Bbox[1], MaxLon: column.Bbox[3], MaxLat: column.Bbox[4]}
	}
	return nil
}

func (d *Dataset) extentFromGeometryColumn(index int) (*model.Extent, error) {
	acc := boundsAccumulator{}
	var wkbErr error
	err := d.scan(map[int]func(goparquet.Value){
		index: func(value goparquet.Value) {
			if wkbErr != nil {
				return
			}
			wkbErr = accumulateWKB(value.ByteArray(), &acc)
		},
	})
	if err != nil {
		return nil, err
	}
	if wkbErr != nil {
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: "geometry column unreadable: " + wkbErr.Error()}
	}
	if acc.extent == nil {
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: "geometry column holds no coordinates"}
	}
	return acc.extent, nil
}

func (d *Dataset) extentFromLatLonColumns(latIndex, lonIndex int) (*model.Extent, error) {
	var lats, lons []float64
	err := d.scan(map[int]func(goparquet.Value){
		latIndex: func(value goparquet.Value) { lats = append(lats, numericValue(value)) },
		lonIndex: func(value goparquet.Value) { lons = append(lons, numericValue(value)) },
	})
	if err != nil {
		return nil, err
	}
	extent, err := model.NewExtentFromCoords(lons, lats)
	if err != nil {
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: err.Error()}
	}
	return extent, nil
}

// scan streams every row once, feeding non-null values of the selected
// columns to their collectors
func (d *Dataset) scan(collect map[int]func(goparquet.Value)) error {
	for _, rowGroup := range d.file.RowGroups() {
		rows := rowGroup.Rows()
		buffer := make([]goparquet.Row, 64)
		for {
			n, err := rows.ReadRows(buffer)
			for _, row := range buffer[:n] {
				for _, value := range row {
					if collector, wanted := collect[value.Column()]; wanted && !value.IsNull() {
						collector(value)
					}
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return err
			}
			if n == 0 {
				break
			}
		}
		rows.Close()
	}
	return nil
}

// columnIndex finds a leaf column by exact name
func (d *Dataset) columnIndex(name string) (int, bool) {
	for index, path := range d.file.Schema().Columns() {
		if len(path) == 1 && path[0] == name {
			return index, true
		}
	}
	return 0, false
}

// geometryColumn finds the first leaf column whose name contains "geometry"
func (d *Dataset) geometryColumn() (int, bool) {
	for index, path := range d.file.Schema().Columns() {
		if len(path) == 1 && strings.Contains(strings.ToLower(path[0]), "geometry") {
			return index, true
		}
	}
	return 0, false
}

// datetimeColumn finds the first leaf column with a timestamp or date
// logical type, returning its index and a converter to UTC time
func (d *Dataset) datetimeColumn() (int, func(goparquet.Value) time.Time, bool) {
	for index, path := range d.file.Schema().Columns() {
		if len(path) != 1 {
			continue
		}
		field := fieldByName(d.file.Schema().Fields(), path[0])
		if field == nil || !field.Leaf() {
			continue
		}
		logical := field.Type().LogicalType()
		if logical == nil {
			continue
		}
		if convert := datetimeConverter(logical); convert != nil {
			return index, convert, true
		}
	}
	return 0, nil, false
}

func fieldByName(fields []goparquet.Field, name string) goparquet.Field {
	for _, field := range fields {
		if field.Name() == name {
			return field
		}
	}
	return nil
}

func datetimeConverter(logical *format.LogicalType) func(goparquet.Value) time.Time {
	switch {
	case logical.Timestamp != nil:
		unit := logical.Timestamp.Unit
		switch {
		case unit.Millis != nil:
			return func(v goparquet.Value) time.Time { return time.UnixMilli(v.Int64()).UTC() }
		case unit.Micros != nil:
			return func(v goparquet.Value) time.Time { return time.UnixMicro(v.Int64()).UTC() }
		case unit.Nanos != nil:
			return func(v goparquet.Value) time.Time { return time.Unix(0, v.Int64()).UTC() }
		}
		return nil
	case logical.Date != nil:
		return func(v goparquet.Value) time.Time { return time.Unix(int64(v.Int32())*86400, 0).UTC() }
	}
	return nil
}

func numericValue(value goparquet.Value) float64 {
	switch value.Kind() {
	case goparquet.Double:
		return value.Double()
	case goparquet.Float:
		return float64(value.Float())
	case goparquet.Int32:
		return float64(value.Int32())
	case goparquet.Int64:
		return float64(value.Int64())
	}
	return value.Double()
}
