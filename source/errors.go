package source

import "fmt"

// UnsupportedFormatError reports a format token outside netcdf|zarr|parquet
type UnsupportedFormatError struct {
	Token string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format `%s`; supported formats are netcdf, zarr and parquet", e.Token)
}

// SourceOpenError reports a source that could not be opened: missing file,
// corrupt content, or a failed remote fetch
type SourceOpenError struct {
	URI string
	Err error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("could not open source %s: %v", e.URI, e.Err)
}

func (e *SourceOpenError) Unwrap() error {
	return e.Err
}

// MissingSpatialInfoError reports a source with no usable coordinate or
// geometry information
type MissingSpatialInfoError struct {
	URI    string
	Detail string
}

func (e *MissingSpatialInfoError) Error() string {
	return fmt.Sprintf("no spatial information in %s: %s", e.URI, e.Detail)
}

// TemporalInputError reports that an operator-supplied temporal range could
// not be obtained: retries exhausted or input abandoned
type TemporalInputError struct {
	Reason string
}

func (e *TemporalInputError) Error() string {
	return fmt.Sprintf("temporal input failed: %s", e.Reason)
}
