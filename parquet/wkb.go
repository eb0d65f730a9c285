package parquet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/EDITO-Infra/makestac/model"
)

// GeoParquet geometry columns hold WKB blobs. Only the bounds are needed
// here, so the parser walks coordinates without materializing geometries.
// Both ISO WKB (dimension encoded in the type code) and PostGIS EWKB
// (dimension and SRID flags in the high bits) are handled.

const (
	wkbPoint              = 1
	wkbLineString         = 2
	wkbPolygon            = 3
	wkbMultiPoint         = 4
	wkbMultiLineString    = 5
	wkbMultiPolygon       = 6
	wkbGeometryCollection = 7
)

const (
	ewkbZFlag    = 0x80000000
	ewkbMFlag    = 0x40000000
	ewkbSRIDFlag = 0x20000000
)

// boundsAccumulator grows an extent as coordinates stream through it
type boundsAccumulator struct {
	extent *model.Extent
}

func (acc *boundsAccumulator) add(lon, lat float64) {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return
	}
	if acc.extent == nil {
		acc.extent = &model.Extent{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat}
		return
	}
	acc.extent.Expand(lon, lat)
}

type wkbCursor struct {
	data []byte
	pos  int
}

func (c *wkbCursor) readByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errors.New("truncated WKB")
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *wkbCursor) readUint32(order binary.ByteOrder) (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, errors.New("truncated WKB")
	}
	v := order.Uint32(c.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *wkbCursor) readFloat64(order binary.ByteOrder) (float64, error) {
	if c.pos+8 > len(c.data) {
		return 0, errors.New("truncated WKB")
	}
	v := math.Float64frombits(order.Uint64(c.data[c.pos : c.pos+8]))
	c.pos += 8
	return v, nil
}

func (c *wkbCursor) skip(n int) error {
	if c.pos+n > len(c.data) {
		return errors.New("truncated WKB")
	}
	c.pos += n
	return nil
}

// accumulateWKB walks one WKB geometry and feeds its coordinates to acc
func accumulateWKB(data []byte, acc *boundsAccumulator) error {
	cursor := &wkbCursor{data: data}
	return accumulateGeometry(cursor, acc)
}

func accumulateGeometry(c *wkbCursor, acc *boundsAccumulator) error {
	orderByte, err := c.readByte()
	if err != nil {
		return err
	}
	var order binary.ByteOrder = binary.BigEndian
	if orderByte == 1 {
		order = binary.LittleEndian
	}

	rawType, err := c.readUint32(order)
	if err != nil {
		return err
	}

	extraDims := 0
	if rawType&ewkbZFlag != 0 {
		extraDims++
	}
	if rawType&ewkbMFlag != 0 {
		extraDims++
	}
	hasSRID := rawType&ewkbSRIDFlag != 0
	code := rawType &^ uint32(ewkbZFlag | ewkbMFlag | ewkbSRIDFlag)
	if code >= 1000 {
		// ISO WKB: 1000s digit encodes Z/M presence
		switch code / 1000 {
		case 1, 2:
			extraDims++
		case 3:
			extraDims += 2
		}
		code = code % 1000
	}
	if hasSRID {
		if err = c.skip(4); err != nil {
			return err
		}
	}

	readPoint := func() error {
		lon, err := c.readFloat64(order)
		if err != nil {
			return err
		}
		lat, err := c.readFloat64(order)
		if err != nil {
			return err
		}
		if err = c.skip(8 * extraDims); err != nil {
			return err
		}
		acc.add(lon, lat)
		return nil
	}

	switch code {
	case wkbPoint:
		return readPoint()
	case wkbLineString:
		count, err := c.readUint32(order)
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			if err = readPoint(); err != nil {
				return err
			}
		}
		return nil
	case wkbPolygon:
		rings, err := c.readUint32(order)
		if err != nil {
			return err
		}
		for r := uint32(0); r < rings; r++ {
			count, err := c.readUint32(order)
			if err != nil {
				return err
			}
			for i := uint32(0); i < count; i++ {
				if err = readPoint(); err != nil {
					return err
				}
			}
		}
		return nil
	case wkbMultiPoint, wkbMultiLineString, wkbMultiPolygon, wkbGeometryCollection:
		count, err := c.readUint32(order)
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			if err = accumulateGeometry(c, acc); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported WKB geometry type %d", code)
}
