package source

import "fmt"

// ToFloat64Slice flattens a numeric coordinate array, as surfaced by the
// NetCDF reader, into float64 values. One- and two-dimensional arrays are
// supported; curvilinear grids store lat/lon as 2-D fields.
func ToFloat64Slice(values interface{}) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int8:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case float64:
		return []float64{v}, nil
	case float32:
		return []float64{float64(v)}, nil
	case int32:
		return []float64{float64(v)}, nil
	case int64:
		return []float64{float64(v)}, nil
	case [][]float64:
		var out []float64
		for _, row := range v {
			out = append(out, row...)
		}
		return out, nil
	case [][]float32:
		var out []float64
		for _, row := range v {
			for _, x := range row {
				out = append(out, float64(x))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported coordinate array type %T", values)
}
