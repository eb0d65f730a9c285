package parquet

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wkbPointLE(lon, lat float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1) // little endian
	binary.Write(buf, binary.LittleEndian, uint32(wkbPoint))
	binary.Write(buf, binary.LittleEndian, lon)
	binary.Write(buf, binary.LittleEndian, lat)
	return buf.Bytes()
}

func wkbPolygonLE(ring [][2]float64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(wkbPolygon))
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, uint32(len(ring)))
	for _, position := range ring {
		binary.Write(buf, binary.LittleEndian, position[0])
		binary.Write(buf, binary.LittleEndian, position[1])
	}
	return buf.Bytes()
}

func TestAccumulateWKB_Point(t *testing.T) {
	// Mock
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(wkbPointLE(2.35, 48.85), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, acc.extent)
	assert.Equal(t, 2.35, acc.extent.MinLon)
	assert.Equal(t, 48.85, acc.extent.MaxLat)
}

func TestAccumulateWKB_Polygon(t *testing.T) {
	// Mock
	ring := [][2]float64{{-10, 40}, {-5, 40}, {-5, 45}, {-10, 45}, {-10, 40}}
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(wkbPolygonLE(ring), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, []float64{-10, 40, -5, 45}, []float64(acc.extent.Bbox()))
}

func TestAccumulateWKB_MultiplePointsGrowTheExtent(t *testing.T) {
	// Mock
	acc := boundsAccumulator{}

	// Tested code
	assert.Nil(t, accumulateWKB(wkbPointLE(0, 0), &acc))
	assert.Nil(t, accumulateWKB(wkbPointLE(10, -20), &acc))

	// Asserts
	assert.Equal(t, []float64{0, -20, 10, 0}, []float64(acc.extent.Bbox()))
}

func TestAccumulateWKB_BigEndianPoint(t *testing.T) {
	// Mock
	buf := new(bytes.Buffer)
	buf.WriteByte(0) // big endian
	binary.Write(buf, binary.BigEndian, uint32(wkbPoint))
	binary.Write(buf, binary.BigEndian, 1.0)
	binary.Write(buf, binary.BigEndian, 2.0)
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(buf.Bytes(), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 1.0, acc.extent.MinLon)
	assert.Equal(t, 2.0, acc.extent.MinLat)
}

func TestAccumulateWKB_EWKBPointZWithSRID(t *testing.T) {
	// Mock; PostGIS-style EWKB: Z flag + SRID flag set
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(wkbPoint)|uint32(ewkbZFlag)|uint32(ewkbSRIDFlag))
	binary.Write(buf, binary.LittleEndian, uint32(4326)) // SRID
	binary.Write(buf, binary.LittleEndian, 3.0)          // lon
	binary.Write(buf, binary.LittleEndian, 4.0)          // lat
	binary.Write(buf, binary.LittleEndian, 5.0)          // z, skipped
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(buf.Bytes(), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 3.0, acc.extent.MinLon)
	assert.Equal(t, 4.0, acc.extent.MinLat)
}

func TestAccumulateWKB_ISOPointZ(t *testing.T) {
	// Mock; ISO WKB point Z has type code 1001
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(1001))
	binary.Write(buf, binary.LittleEndian, 6.0)
	binary.Write(buf, binary.LittleEndian, 7.0)
	binary.Write(buf, binary.LittleEndian, 8.0)
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(buf.Bytes(), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 6.0, acc.extent.MinLon)
}

func TestAccumulateWKB_MultiPoint(t *testing.T) {
	// Mock
	buf := new(bytes.Buffer)
	buf.WriteByte(1)
	binary.Write(buf, binary.LittleEndian, uint32(wkbMultiPoint))
	binary.Write(buf, binary.LittleEndian, uint32(2))
	buf.Write(wkbPointLE(1, 1))
	buf.Write(wkbPointLE(-1, -1))
	acc := boundsAccumulator{}

	// Tested code
	err := accumulateWKB(buf.Bytes(), &acc)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, []float64{-1, -1, 1, 1}, []float64(acc.extent.Bbox()))
}

func TestAccumulateWKB_Truncated(t *testing.T) {
	// Mock
	blob := wkbPointLE(1, 2)

	// Tested code
	err := accumulateWKB(blob[:len(blob)-4], &boundsAccumulator{})

	// Asserts
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "truncated WKB")
}

func TestBoundsAccumulator_SkipsNaN(t *testing.T) {
	// Mock
	acc := boundsAccumulator{}

	// Tested code
	acc.add(math.NaN(), 1)
	acc.add(2, 3)

	// Asserts
	assert.Equal(t, 2.0, acc.extent.MinLon)
	assert.Equal(t, 3.0, acc.extent.MinLat)
}
