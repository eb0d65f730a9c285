// Package source defines the uniform surface every format adapter exposes to
// the pipeline: one concrete Dataset type per format (netcdf, zarr, parquet),
// all extraction behind the same capability set.
package source

import (
	"strings"

	"github.com/EDITO-Infra/makestac/model"
)

// Format is an enum type for recognized source file formats
type Format string

const (
	// NetCDF corresponds to .nc files with CF-compliant metadata
	NetCDF Format = "netcdf"
	// Zarr corresponds to Zarr v2 stores, local or cloud-hosted
	Zarr Format = "zarr"
	// Parquet corresponds to columnar .parquet files
	Parquet Format = "parquet"
)

// ParseFormat maps a CLI format token onto a Format
func ParseFormat(token string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(token))) {
	case NetCDF:
		return NetCDF, nil
	case Zarr:
		return Zarr, nil
	case Parquet:
		return Parquet, nil
	}
	return "", &UnsupportedFormatError{Token: token}
}

// MediaType returns the asset media type conventionally used for the format
func (f Format) MediaType() string {
	switch f {
	case Zarr:
		return model.MediaTypeZarr
	case Parquet:
		return model.MediaTypeParquet
	default:
		return model.MediaTypeNetCDF
	}
}

// Dataset is an opened handle to one input file. Implementations are
// read-only and single-use: extraction methods may be called in any order,
// and Close releases any file handles, network connections or temp files
// regardless of how extraction went.
type Dataset interface {
	// Format identifies the concrete adapter
	Format() Format
	// URI returns the path or URI the dataset was opened from
	URI() string
	// SpatialExtent computes the bounding box covering the dataset.
	// Fails with MissingSpatialInfoError when no usable coordinate or
	// geometry information exists.
	SpatialExtent() (*model.Extent, error)
	// TemporalRange computes the datetime range covered by the dataset.
	// ok=false means the source carries no temporal information and the
	// caller must obtain a range elsewhere; the error is reserved for
	// data that is present but unreadable or inverted.
	TemporalRange() (tr *model.TemporalRange, ok bool, err error)
	// Metadata extracts optional provenance. It never fails: malformed
	// metadata degrades to an absent field with a logged warning.
	Metadata() model.DatasetMetadata
	// Close releases the underlying resources
	Close() error
}
