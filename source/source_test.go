package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	// Mock
	accepted := map[string]Format{
		"netcdf":  NetCDF,
		"NetCDF":  NetCDF,
		"zarr":    Zarr,
		" ZARR ":  Zarr,
		"parquet": Parquet,
	}

	for token, expected := range accepted {
		// Tested code
		format, err := ParseFormat(token)

		// Asserts
		assert.Nil(t, err)
		assert.Equal(t, expected, format)
	}
}

func TestParseFormat_Unsupported(t *testing.T) {
	// Tested code
	_, err := ParseFormat("geotiff")

	// Asserts
	assert.NotNil(t, err)
	var formatErr *UnsupportedFormatError
	assert.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "geotiff", formatErr.Token)
}

func TestFormatMediaType(t *testing.T) {
	assert.Equal(t, "application/x-netcdf", NetCDF.MediaType())
	assert.Equal(t, "application/zarr", Zarr.MediaType())
	assert.Equal(t, "application/x-parquet", Parquet.MediaType())
}
