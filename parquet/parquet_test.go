package parquet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goparquet "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"

	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/util"
)

type observation struct {
	Lat  float64   `parquet:"lat"`
	Lon  float64   `parquet:"lon"`
	Time time.Time `parquet:"time,timestamp(millisecond)"`
}

type geometryRow struct {
	Geometry []byte `parquet:"geometry"`
	Depth    float64
}

func writeFixture[T any](t *testing.T, rows []T, options ...goparquet.WriterOption) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.parquet")
	file, err := os.Create(path)
	assert.Nil(t, err)
	writer := goparquet.NewGenericWriter[T](file, options...)
	_, err = writer.Write(rows)
	assert.Nil(t, err)
	assert.Nil(t, writer.Close())
	assert.Nil(t, file.Close())
	return path
}

func observationRows() []observation {
	return []observation{
		{Lat: 40, Lon: -10, Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Lat: 45, Lon: -5, Time: time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Lat: 42.5, Lon: -7.5, Time: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestOpen_NotParquet(t *testing.T) {
	// Mock
	path := filepath.Join(t.TempDir(), "bogus.parquet")
	assert.Nil(t, os.WriteFile(path, []byte("not a parquet file"), 0644))
	ctx := &util.BasicLogContext{}

	// Tested code
	_, err := Open(ctx, path)

	// Asserts
	var openErr *source.SourceOpenError
	assert.ErrorAs(t, err, &openErr)
	assert.Equal(t, path, openErr.URI)
}

func TestDatasetExtraction_LatLonColumns(t *testing.T) {
	// Mock
	path := writeFixture(t, observationRows())
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	extent, err := dataset.SpatialExtent()

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, []float64{-10, 40, -5, 45}, []float64(extent.Bbox()))
	assert.Equal(t, source.Parquet, dataset.Format())
	assert.Equal(t, path, dataset.URI())
}

func TestDatasetTemporalRange_TimestampColumn(t *testing.T) {
	// Mock
	path := writeFixture(t, observationRows())
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	tr, ok, err := dataset.TemporalRange()

	// Asserts
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), tr.Start)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), tr.End)
}

func TestDatasetTemporalRange_NoDatetimeColumn(t *testing.T) {
	// Mock
	type plain struct {
		Lat float64 `parquet:"lat"`
		Lon float64 `parquet:"lon"`
	}
	path := writeFixture(t, []plain{{Lat: 1, Lon: 2}})
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	tr, ok, err := dataset.TemporalRange()

	// Asserts
	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Nil(t, tr)
}

func TestDatasetSpatialExtent_GeometryColumn(t *testing.T) {
	// Mock
	rows := []geometryRow{
		{Geometry: wkbPointLE(2.35, 48.85), Depth: 10},
		{Geometry: wkbPointLE(3.35, 43.5), Depth: 20},
	}
	path := writeFixture(t, rows)
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	extent, err := dataset.SpatialExtent()

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, []float64{2.35, 43.5, 3.35, 48.85}, []float64(extent.Bbox()))
}

func TestDatasetSpatialExtent_GeoMetadataWins(t *testing.T) {
	// Mock; declared GeoParquet bbox takes precedence over scanning columns
	geo := `{"primary_column":"geometry","columns":{"geometry":{"bbox":[-20,30,0,50]}}}`
	path := writeFixture(t, observationRows(), goparquet.KeyValueMetadata(geoMetadataKey, geo))
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	extent, err := dataset.SpatialExtent()

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, []float64{-20, 30, 0, 50}, []float64(extent.Bbox()))
}

func TestDatasetSpatialExtent_Missing(t *testing.T) {
	// Mock
	type plain struct {
		Value float64 `parquet:"value"`
	}
	path := writeFixture(t, []plain{{Value: 1}})
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	_, err = dataset.SpatialExtent()

	// Asserts
	var spatialErr *source.MissingSpatialInfoError
	assert.True(t, errors.As(err, &spatialErr))
	assert.Contains(t, spatialErr.Detail, "lat")
}

func TestDatasetMetadata_ProviderBlob(t *testing.T) {
	// Mock
	blob := `{"name":"Ifremer","roles":["producer","host"],"url":"https://ifremer.fr","license":"CC-BY-4.0"}`
	path := writeFixture(t, observationRows(), goparquet.KeyValueMetadata(providerMetadataKey, blob))
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	metadata := dataset.Metadata()

	// Asserts
	assert.Equal(t, "CC-BY-4.0", metadata.License)
	assert.Len(t, metadata.Providers, 1)
	assert.Equal(t, "Ifremer", metadata.Providers[0].Name)
	assert.Equal(t, []string{"producer", "host"}, metadata.Providers[0].Roles)
	assert.Equal(t, "https://ifremer.fr", metadata.Providers[0].URL)
}

func TestDatasetMetadata_MalformedBlobDegrades(t *testing.T) {
	// Mock
	path := writeFixture(t, observationRows(), goparquet.KeyValueMetadata(providerMetadataKey, `{not json`))
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	metadata := dataset.Metadata()

	// Asserts
	assert.Empty(t, metadata.Providers)
	assert.Empty(t, metadata.License)
}

func TestDatasetMetadata_Absent(t *testing.T) {
	// Mock
	path := writeFixture(t, observationRows())
	ctx := &util.BasicLogContext{}
	dataset, err := Open(ctx, path)
	assert.Nil(t, err)
	defer dataset.Close()

	// Tested code
	metadata := dataset.Metadata()

	// Asserts
	assert.Empty(t, metadata.Providers)
}
