package model

// StacVersion is the STAC release the assembler targets
const StacVersion = "1.0.0"

// Media types for the single data asset, by source format. These follow the
// EDITO catalog convention rather than strict IANA registration.
const (
	MediaTypeNetCDF  = "application/x-netcdf"
	MediaTypeZarr    = "application/zarr"
	MediaTypeParquet = "application/x-parquet"
)
