package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/stac"
	"github.com/EDITO-Infra/makestac/util"
)

func encodeFloat64LE(values ...float64) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(v))
		buf.Write(word[:])
	}
	return buf.Bytes()
}

func writeZarrKey(t *testing.T, root, key string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	assert.Nil(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.Nil(t, os.WriteFile(path, data, 0644))
}

func writeZarrDoc(t *testing.T, root, key string, doc interface{}) {
	t.Helper()
	data, err := json.Marshal(doc)
	assert.Nil(t, err)
	writeZarrKey(t, root, key, data)
}

func zarrCoordDoc(length int) map[string]interface{} {
	return map[string]interface{}{
		"zarr_format": 2,
		"shape":       []int{length},
		"chunks":      []int{length},
		"dtype":       "<f8",
		"compressor":  nil,
		"order":       "C",
	}
}

// zarrFixture builds a minimal local Zarr store, optionally without a time
// coordinate to force the operator prompt
func zarrFixture(t *testing.T, withTime bool) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "fixture.zarr")
	writeZarrDoc(t, root, ".zgroup", map[string]int{"zarr_format": 2})
	writeZarrDoc(t, root, ".zattrs", map[string]string{
		"title":       "Fixture Dataset",
		"institution": "EDITO",
		"license":     "CC-BY-4.0",
	})
	writeZarrDoc(t, root, "lat/.zarray", zarrCoordDoc(2))
	writeZarrKey(t, root, "lat/0", encodeFloat64LE(40, 45))
	writeZarrDoc(t, root, "lon/.zarray", zarrCoordDoc(2))
	writeZarrKey(t, root, "lon/0", encodeFloat64LE(-10, -5))
	if withTime {
		writeZarrDoc(t, root, "time/.zarray", zarrCoordDoc(2))
		writeZarrKey(t, root, "time/0", encodeFloat64LE(0, 365))
		writeZarrDoc(t, root, "time/.zattrs", map[string]string{"units": "days since 2020-01-01"})
	}
	return root
}

func TestRunConvert(t *testing.T) {
	// Mock
	root := zarrFixture(t, true)
	output := filepath.Join(t.TempDir(), "item.json")
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   root,
		dataURL:     "https://data.example.org/fixture.zarr",
		outputPath:  output,
	}
	stdout := new(bytes.Buffer)

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), stdout)

	// Asserts
	assert.Nil(t, err)
	contents, readErr := os.ReadFile(output)
	assert.Nil(t, readErr)
	var item model.StacItem
	assert.Nil(t, json.Unmarshal(contents, &item))
	assert.Equal(t, "fixture", item.ID)
	assert.Equal(t, "Feature", item.Type)
	assert.Equal(t, "1.0.0", item.StacVersion)
	assert.Equal(t, []float64{-10, 40, -5, 45}, []float64(item.Bbox))
	assert.Equal(t, "Fixture Dataset", item.Properties.Title)
	assert.Equal(t, "CC-BY-4.0", item.Properties.License)
	assert.Equal(t, "2020-01-01T00:00:00Z", item.Properties.StartDatetime)
	assert.Equal(t, "2020-12-31T00:00:00Z", item.Properties.EndDatetime)
	assert.Empty(t, item.Properties.Datetime)
	assert.Equal(t, "https://data.example.org/fixture.zarr", item.Assets["data"].Href)

	// the item is also dumped to stdout
	assert.Contains(t, stdout.String(), `"id": "fixture"`)
}

func TestRunConvert_PromptsWhenNoTemporalData(t *testing.T) {
	// Mock
	root := zarrFixture(t, false)
	output := filepath.Join(t.TempDir(), "item.json")
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   root,
		dataURL:     "https://data.example.org/fixture.zarr",
		outputPath:  output,
		itemID:      "prompted-item",
		quiet:       true,
	}
	stdin := strings.NewReader("2023-01-01\n2023-06-30\n")
	stdout := new(bytes.Buffer)

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, stdin, stdout)

	// Asserts
	assert.Nil(t, err)
	assert.Contains(t, stdout.String(), "No temporal information found")
	contents, readErr := os.ReadFile(output)
	assert.Nil(t, readErr)
	var item model.StacItem
	assert.Nil(t, json.Unmarshal(contents, &item))
	assert.Equal(t, "prompted-item", item.ID)
	assert.Equal(t, "2023-01-01T00:00:00Z", item.Properties.StartDatetime)
	assert.Equal(t, "2023-06-30T00:00:00Z", item.Properties.EndDatetime)

	// quiet mode: no item dump beyond the prompt text
	assert.NotContains(t, stdout.String(), `"stac_version"`)
}

func TestRunConvert_RerunIsByteIdentical(t *testing.T) {
	// Mock
	root := zarrFixture(t, true)
	output := filepath.Join(t.TempDir(), "item.json")
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   root,
		dataURL:     "https://data.example.org/fixture.zarr",
		outputPath:  output,
		quiet:       true,
	}

	// Tested code
	assert.Nil(t, runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), new(bytes.Buffer)))
	first, _ := os.ReadFile(output)
	assert.Nil(t, runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), new(bytes.Buffer)))
	second, _ := os.ReadFile(output)

	// Asserts
	assert.Equal(t, first, second)
}

func TestRunConvert_RejectsNonWGS84Extent(t *testing.T) {
	// Mock; longitudes in the [0,360] convention
	root := filepath.Join(t.TempDir(), "wrapped.zarr")
	writeZarrDoc(t, root, ".zgroup", map[string]int{"zarr_format": 2})
	writeZarrDoc(t, root, "lat/.zarray", zarrCoordDoc(2))
	writeZarrKey(t, root, "lat/0", encodeFloat64LE(40, 45))
	writeZarrDoc(t, root, "lon/.zarray", zarrCoordDoc(2))
	writeZarrKey(t, root, "lon/0", encodeFloat64LE(170, 250))
	output := filepath.Join(t.TempDir(), "item.json")
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   root,
		dataURL:     "https://example.org/wrapped.zarr",
		outputPath:  output,
	}

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, strings.NewReader("2023-01-01\n2023-06-30\n"), new(bytes.Buffer))

	// Asserts
	assert.Equal(t, "MissingSpatialInfoError", errorClass(err))
	assert.Contains(t, err.Error(), "outside [-180, 180]")
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunConvert_UnsupportedFormat(t *testing.T) {
	// Mock
	options := convertOptions{
		formatToken: "geotiff",
		sourceURI:   "/data/x.tif",
		dataURL:     "https://example.org/x.tif",
		outputPath:  "/tmp/out.json",
	}

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), new(bytes.Buffer))

	// Asserts
	assert.NotNil(t, err)
	assert.Equal(t, "UnsupportedFormatError", errorClass(err))
}

func TestRunConvert_MissingDataURL(t *testing.T) {
	// Mock
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   "/data/x.zarr",
		outputPath:  "/tmp/out.json",
	}

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), new(bytes.Buffer))

	// Asserts
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "data_url is required")
}

func TestRunConvert_NoOutputOnFailure(t *testing.T) {
	// Mock; store with no spatial information at all
	root := filepath.Join(t.TempDir(), "empty.zarr")
	writeZarrDoc(t, root, ".zgroup", map[string]int{"zarr_format": 2})
	output := filepath.Join(t.TempDir(), "item.json")
	options := convertOptions{
		formatToken: "zarr",
		sourceURI:   root,
		dataURL:     "https://example.org/empty.zarr",
		outputPath:  output,
	}

	// Tested code
	err := runConvert(&util.BasicLogContext{}, options, strings.NewReader(""), new(bytes.Buffer))

	// Asserts
	assert.Equal(t, "MissingSpatialInfoError", errorClass(err))
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestErrorClass(t *testing.T) {
	// Mock
	validationErr := &stac.StacValidationError{Violations: []string{"x"}}

	// Asserts
	assert.Equal(t, "UnsupportedFormatError", errorClass(&source.UnsupportedFormatError{Token: "x"}))
	assert.Equal(t, "SourceOpenError", errorClass(&source.SourceOpenError{URI: "u", Err: errors.New("boom")}))
	assert.Equal(t, "MissingSpatialInfoError", errorClass(&source.MissingSpatialInfoError{URI: "u"}))
	assert.Equal(t, "TemporalInputError", errorClass(&source.TemporalInputError{Reason: "r"}))
	assert.Equal(t, "StacValidationError", errorClass(validationErr))
	assert.Equal(t, "Error", errorClass(errors.New("other")))
}
