// Package netcdf adapts CF-compliant NetCDF files to the source.Dataset
// capability set, for local paths as well as cloud-hosted copies.
package netcdf

import (
	"fmt"

	nc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/util"
)

var latNames = []string{"lat", "latitude"}
var lonNames = []string{"lon", "longitude"}
var timeNames = []string{"time", "time_counter", "t"}

// group is the slice of api.Group the extractors need
type group interface {
	Attributes() api.AttributeMap
	ListVariables() []string
	GetVariable(name string) (*api.Variable, error)
	Close()
}

// Dataset is an opened NetCDF source
type Dataset struct {
	uri     string
	group   group
	cleanup func()
	logCtx  util.LogContext
}

// Open opens a NetCDF source. Remote URIs are staged to a temp file, which
// Close removes again.
func Open(logCtx util.LogContext, uri string) (*Dataset, error) {
	path := uri
	var cleanup func()
	if source.IsRemote(uri) {
		var err error
		path, cleanup, err = source.FetchToTemp(logCtx, uri, "makestac-*.nc")
		if err != nil {
			return nil, &source.SourceOpenError{URI: uri, Err: err}
		}
	}
	group, err := nc.Open(path)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, &source.SourceOpenError{URI: uri, Err: err}
	}
	return &Dataset{uri: uri, group: group, cleanup: cleanup, logCtx: logCtx}, nil
}

// Format implements the source.Dataset interface
func (d *Dataset) Format() source.Format {
	return source.NetCDF
}

// URI implements the source.Dataset interface
func (d *Dataset) URI() string {
	return d.uri
}

// SpatialExtent computes the bounding box from the latitude and longitude
// coordinate variables
func (d *Dataset) SpatialExtent() (*model.Extent, error) {
	latVar := d.findVariable(latNames)
	lonVar := d.findVariable(lonNames)
	if latVar == nil || lonVar == nil {
		return nil, &source.MissingSpatialInfoError{
			URI:    d.uri,
			Detail: "no lat/latitude and lon/longitude coordinate variables",
		}
	}
	lats, err := source.ToFloat64Slice(latVar.Values)
	if err != nil {
		return nil, fmt.Errorf("latitude coordinate: %w", err)
	}
	lons, err := source.ToFloat64Slice(lonVar.Values)
	if err != nil {
		return nil, fmt.Errorf("longitude coordinate: %w", err)
	}
	extent, err := model.NewExtentFromCoords(lons, lats)
	if err != nil {
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: err.Error()}
	}
	return extent, nil
}

// TemporalRange computes the datetime range from the time coordinate,
// decoding CF units. ok=false means the file carries no usable time
// coordinate and the operator must supply a range.
func (d *Dataset) TemporalRange() (*model.TemporalRange, bool, error) {
	timeVar := d.findVariable(timeNames)
	if timeVar == nil {
		return nil, false, nil
	}
	values, err := source.ToFloat64Slice(timeVar.Values)
	if err != nil || len(values) == 0 {
		util.LogAlert(d.logCtx, "Time coordinate found but unreadable or empty in "+d.uri)
		return nil, false, nil
	}
	units := attrMapString(timeVar.Attributes, "units")
	if units == "" {
		util.LogAlert(d.logCtx, "Time coordinate in "+d.uri+" has no units attribute")
		return nil, false, nil
	}
	decoded, err := source.DecodeCFTimes(values, units)
	if err != nil {
		util.LogAlert(d.logCtx, "Could not decode time coordinate in "+d.uri+": "+err.Error())
		return nil, false, nil
	}
	earliest, latest := decoded[0], decoded[0]
	for _, t := range decoded {
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	tr, err := model.NewTemporalRange(earliest, latest)
	if err != nil {
		return nil, false, err
	}
	return tr, true, nil
}

// Metadata reads the CF global attributes
func (d *Dataset) Metadata() model.DatasetMetadata {
	return source.MetadataFromAttributes(attrMapToMap(d.group.Attributes()))
}

// Close implements the source.Dataset interface
func (d *Dataset) Close() error {
	d.group.Close()
	if d.cleanup != nil {
		d.cleanup()
	}
	return nil
}

func (d *Dataset) findVariable(names []string) *api.Variable {
	available := d.group.ListVariables()
	for _, name := range names {
		if !contains(available, name) {
			continue
		}
		variable, err := d.group.GetVariable(name)
		if err == nil && variable != nil {
			return variable
		}
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if candidate == needle {
			return true
		}
	}
	return false
}

func attrMapToMap(attrs api.AttributeMap) map[string]interface{} {
	out := make(map[string]interface{})
	if attrs == nil {
		return out
	}
	for _, key := range attrs.Keys() {
		if value, has := attrs.Get(key); has {
			out[key] = value
		}
	}
	return out
}

func attrMapString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	value, has := attrs.Get(key)
	if !has {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
