// Package zarr adapts Zarr v2 stores, local or cloud-hosted, to the
// source.Dataset capability set. Consolidated metadata (.zmetadata) is used
// when present to spare remote round trips.
package zarr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/util"
)

var latNames = []string{"lat", "latitude"}
var lonNames = []string{"lon", "longitude"}
var timeNames = []string{"time", "time_counter", "t"}

type consolidatedMeta struct {
	Metadata map[string]json.RawMessage `json:"metadata"`
}

// Dataset is an opened Zarr store
type Dataset struct {
	uri          string
	store        Store
	rootAttrs    map[string]interface{}
	consolidated map[string]json.RawMessage
	logCtx       util.LogContext
}

// Open probes the store for Zarr v2 metadata and loads the root attributes
func Open(logCtx util.LogContext, uri string) (*Dataset, error) {
	store, err := openStore(logCtx, uri)
	if err != nil {
		return nil, &source.SourceOpenError{URI: uri, Err: err}
	}

	d := &Dataset{uri: uri, store: store, logCtx: logCtx}

	if raw, err := store.Get(".zmetadata"); err == nil {
		var consolidated consolidatedMeta
		if err = parseJSONDoc(raw, &consolidated); err != nil {
			return nil, &source.SourceOpenError{URI: uri, Err: fmt.Errorf("malformed .zmetadata: %w", err)}
		}
		d.consolidated = consolidated.Metadata
	} else if !errors.Is(err, ErrKeyNotFound) {
		return nil, &source.SourceOpenError{URI: uri, Err: err}
	}

	if d.consolidated == nil {
		// unconsolidated stores must at least carry a root group document
		if _, err := store.Get(".zgroup"); err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				err = errors.New("no .zmetadata or .zgroup found; not a Zarr v2 store")
			}
			return nil, &source.SourceOpenError{URI: uri, Err: err}
		}
	}

	d.rootAttrs = d.loadAttrs(".zattrs")
	return d, nil
}

// Format implements the source.Dataset interface
func (d *Dataset) Format() source.Format {
	return source.Zarr
}

// URI implements the source.Dataset interface
func (d *Dataset) URI() string {
	return d.uri
}

// SpatialExtent computes the bounding box from the latitude and longitude
// coordinate arrays
func (d *Dataset) SpatialExtent() (*model.Extent, error) {
	lats, latErr := d.readCoordinate(latNames)
	lons, lonErr := d.readCoordinate(lonNames)
	if latErr != nil || lonErr != nil {
		detail := "no lat/latitude and lon/longitude coordinate arrays"
		for _, err := range []error{latErr, lonErr} {
			if err != nil && !errors.Is(err, ErrKeyNotFound) {
				detail = err.Error()
			}
		}
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: detail}
	}
	extent, err := model.NewExtentFromCoords(lons, lats)
	if err != nil {
		return nil, &source.MissingSpatialInfoError{URI: d.uri, Detail: err.Error()}
	}
	return extent, nil
}

// TemporalRange computes the datetime range from the time coordinate array,
// decoding CF units from the array attributes
func (d *Dataset) TemporalRange() (*model.TemporalRange, bool, error) {
	name := d.findArray(timeNames)
	if name == "" {
		return nil, false, nil
	}
	meta, err := d.arrayMeta(name)
	if err != nil {
		util.LogAlert(d.logCtx, "Time array found but unreadable in "+d.uri+": "+err.Error())
		return nil, false, nil
	}
	values, err := readArray1D(d.store, name, meta)
	if err != nil || len(values) == 0 {
		if err != nil {
			util.LogAlert(d.logCtx, "Could not read time array in "+d.uri+": "+err.Error())
		} else {
			util.LogAlert(d.logCtx, "Time array is empty in "+d.uri)
		}
		return nil, false, nil
	}

	attrs := d.loadAttrs(name + "/.zattrs")
	units, _ := attrs["units"].(string)
	if units == "" {
		util.LogAlert(d.logCtx, "Time array in "+d.uri+" has no units attribute")
		return nil, false, nil
	}
	decoded, err := source.DecodeCFTimes(values, units)
	if err != nil {
		util.LogAlert(d.logCtx, "Could not decode time array in "+d.uri+": "+err.Error())
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

// Metadata reads the root .zattrs document
func (d *Dataset) Metadata() model.DatasetMetadata {
	return source.MetadataFromAttributes(d.rootAttrs)
}

// Close implements the source.Dataset interface; stores hold no persistent
// handles beyond pooled HTTP connections
func (d *Dataset) Close() error {
	return nil
}

func (d *Dataset) readCoordinate(names []string) ([]float64, error) {
	name := d.findArray(names)
	if name == "" {
		return nil, ErrKeyNotFound
	}
	meta, err := d.arrayMeta(name)
	if err != nil {
		return nil, err
	}
	return readArray1D(d.store, name, meta)
}

// findArray returns the first of the candidate names that exists as an array
func (d *Dataset) findArray(names []string) string {
	for _, name := range names {
		if d.consolidated != nil {
			if _, ok := d.consolidated[name+"/.zarray"]; ok {
				return name
			}
			continue
		}
		if _, err := d.store.Get(name + "/.zarray"); err == nil {
			return name
		}
	}
	return ""
}

func (d *Dataset) arrayMeta(name string) (*arrayMeta, error) {
	raw, err := d.document(name + "/.zarray")
	if err != nil {
		return nil, err
	}
	var meta arrayMeta
	if err = parseJSONDoc(raw, &meta); err != nil {
		return nil, fmt.Errorf("malformed .zarray for %s: %w", name, err)
	}
	return &meta, nil
}

func (d *Dataset) loadAttrs(key string) map[string]interface{} {
	attrs := make(map[string]interface{})
	raw, err := d.document(key)
	if err != nil {
		return attrs
	}
	if err = parseJSONDoc(raw, &attrs); err != nil {
		util.LogAlert(d.logCtx, "Malformed "+key+" in "+d.uri+": "+err.Error())
	}
	return attrs
}

// document reads a metadata document, preferring the consolidated copy
func (d *Dataset) document(key string) ([]byte, error) {
	if d.consolidated != nil {
		if raw, ok := d.consolidated[key]; ok {
			return raw, nil
		}
		return nil, ErrKeyNotFound
	}
	return d.store.Get(key)
}
