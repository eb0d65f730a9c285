package zarr

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// arrayMeta is the parsed .zarray document of one Zarr v2 array
type arrayMeta struct {
	Shape      []int           `json:"shape"`
	Chunks     []int           `json:"chunks"`
	Dtype      string          `json:"dtype"`
	Compressor *compressorMeta `json:"compressor"`
	Order      string          `json:"order"`
	ZarrFormat int             `json:"zarr_format"`
}

type compressorMeta struct {
	ID string `json:"id"`
}

// readArray1D loads a one-dimensional array in full. Coordinate variables are
// 1-D under CF conventions, which is all the extractors need.
func readArray1D(store Store, name string, meta *arrayMeta) ([]float64, error) {
	if len(meta.Shape) != 1 || len(meta.Chunks) != 1 {
		return nil, fmt.Errorf("array %s is %d-dimensional; only 1-D coordinate arrays are supported", name, len(meta.Shape))
	}
	length := meta.Shape[0]
	chunkLen := meta.Chunks[0]
	if chunkLen <= 0 || length < 0 {
		return nil, fmt.Errorf("array %s has invalid shape/chunks", name)
	}

	values := make([]float64, 0, length)
	numChunks := (length + chunkLen - 1) / chunkLen
	for i := 0; i < numChunks; i++ {
		raw, err := store.Get(name + "/" + strconv.Itoa(i))
		if err != nil {
			return nil, fmt.Errorf("chunk %d of array %s: %w", i, name, err)
		}
		decompressed, err := decompress(raw, meta.Compressor)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of array %s: %w", i, name, err)
		}
		chunkValues, err := decodeDtype(decompressed, meta.Dtype)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of array %s: %w", i, name, err)
		}
		// the final chunk may be padded out to the chunk length
		want := chunkLen
		if remaining := length - i*chunkLen; remaining < want {
			want = remaining
		}
		if len(chunkValues) < want {
			return nil, fmt.Errorf("chunk %d of array %s holds %d values, want %d", i, name, len(chunkValues), want)
		}
		values = append(values, chunkValues[:want]...)
	}
	return values, nil
}

func decompress(data []byte, compressor *compressorMeta) ([]byte, error) {
	if compressor == nil {
		return data, nil
	}
	switch compressor.ID {
	case "zlib":
		reader, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	}
	return nil, fmt.Errorf("unsupported compressor `%s`; supported: none, zlib, gzip", compressor.ID)
}

// decodeDtype decodes a NumPy-style dtype string such as `<f8` or `>i4`
func decodeDtype(data []byte, dtype string) ([]float64, error) {
	if len(dtype) < 3 {
		return nil, fmt.Errorf("malformed dtype `%s`", dtype)
	}
	var order binary.ByteOrder
	switch dtype[0] {
	case '<', '|':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("malformed dtype `%s`", dtype)
	}
	kind := dtype[1]
	size, err := strconv.Atoi(dtype[2:])
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("malformed dtype `%s`", dtype)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of dtype size %d", len(data), size)
	}

	count := len(data) / size
	values := make([]float64, count)
	for i := 0; i < count; i++ {
		word := data[i*size : (i+1)*size]
		switch {
		case kind == 'f' && size == 8:
			values[i] = math.Float64frombits(order.Uint64(word))
		case kind == 'f' && size == 4:
			values[i] = float64(math.Float32frombits(order.Uint32(word)))
		case kind == 'i' && size == 8:
			values[i] = float64(int64(order.Uint64(word)))
		case kind == 'i' && size == 4:
			values[i] = float64(int32(order.Uint32(word)))
		case kind == 'i' && size == 2:
			values[i] = float64(int16(order.Uint16(word)))
		case kind == 'i' && size == 1:
			values[i] = float64(int8(word[0]))
		case kind == 'u' && size == 8:
			values[i] = float64(order.Uint64(word))
		case kind == 'u' && size == 4:
			values[i] = float64(order.Uint32(word))
		case kind == 'u' && size == 2:
			values[i] = float64(order.Uint16(word))
		case kind == 'u' && size == 1:
			values[i] = float64(word[0])
		default:
			return nil, fmt.Errorf("unsupported dtype `%s`", dtype)
		}
	}
	return values, nil
}

func parseJSONDoc(data []byte, out interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	return decoder.Decode(out)
}
