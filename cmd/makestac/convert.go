// Copyright 2025, EDITO Infra Contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/netcdf"
	"github.com/EDITO-Infra/makestac/parquet"
	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/stac"
	"github.com/EDITO-Infra/makestac/util"
	"github.com/EDITO-Infra/makestac/zarr"
)

const convertUsage = "Usage: makestac [--id ID] <netcdf|zarr|parquet> <path_or_uri> <data_url> <output.json>"

type convertOptions struct {
	formatToken string
	sourceURI   string
	dataURL     string
	outputPath  string
	itemID      string
	quiet       bool
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 4 {
		return cli.NewExitError(convertUsage, 1)
	}
	options := convertOptions{
		formatToken: c.Args().Get(0),
		sourceURI:   c.Args().Get(1),
		dataURL:     c.Args().Get(2),
		outputPath:  c.Args().Get(3),
		itemID:      c.String("id"),
		quiet:       c.Bool("quiet"),
	}

	logCtx := &util.BasicLogContext{}
	if err := runConvert(logCtx, options, os.Stdin, os.Stdout); err != nil {
		return cli.NewExitError(errorClass(err)+": "+err.Error(), 1)
	}
	return nil
}

// runConvert drives the whole pipeline: open, extract, assemble, validate,
// write. Prompting for a missing temporal range happens here, keeping the
// adapters free of console I/O. No partial output is ever written.
func runConvert(logCtx util.LogContext, options convertOptions, stdin io.Reader, stdout io.Writer) error {
	format, err := source.ParseFormat(options.formatToken)
	if err != nil {
		return err
	}
	if options.dataURL == "" {
		return errors.New("data_url is required; provide a URL where the data file can be accessed")
	}

	dataset, err := openDataset(logCtx, format, options.sourceURI)
	if err != nil {
		return err
	}
	defer dataset.Close()

	util.LogInfo(logCtx, fmt.Sprintf("Reading %s source: %s", format, options.sourceURI))

	extent, err := dataset.SpatialExtent()
	if err != nil {
		return err
	}
	// sources using a [0,360] longitude convention surface here, not as a
	// structurally valid Item with an illegal WGS84 bbox
	if err = extent.Validate(); err != nil {
		return &source.MissingSpatialInfoError{URI: options.sourceURI, Detail: err.Error()}
	}

	temporal, found, err := dataset.TemporalRange()
	if err != nil {
		return err
	}
	if !found {
		if temporal, err = promptTemporalRange(stdin, stdout); err != nil {
			return err
		}
	}

	itemID := options.itemID
	if itemID == "" {
		itemID = stac.DeriveItemID(options.sourceURI)
	}

	item := stac.AssembleItem(stac.Inputs{
		ID:        itemID,
		SourceURI: options.sourceURI,
		DataURL:   options.dataURL,
		Format:    format,
		Extent:    *extent,
		Temporal:  *temporal,
		Metadata:  dataset.Metadata(),
	})

	if err = stac.ValidateItem(item); err != nil {
		return err
	}
	if err = stac.WriteItemFile(item, options.outputPath); err != nil {
		return err
	}
	util.LogInfo(logCtx, "Saved STAC item to "+options.outputPath)

	if !options.quiet {
		data, err := stac.MarshalItem(item)
		if err != nil {
			return err
		}
		stdout.Write(data)
	}
	return nil
}

// openDataset is the single point dispatching a format onto its adapter
func openDataset(logCtx util.LogContext, format source.Format, uri string) (source.Dataset, error) {
	switch format {
	case source.NetCDF:
		return netcdf.Open(logCtx, uri)
	case source.Zarr:
		return zarr.Open(logCtx, uri)
	case source.Parquet:
		return parquet.Open(logCtx, uri)
	}
	return nil, &source.UnsupportedFormatError{Token: string(format)}
}

// errorClass names the error category for the operator-facing message
func errorClass(err error) string {
	var (
		unsupportedFormat *source.UnsupportedFormatError
		sourceOpen        *source.SourceOpenError
		missingSpatial    *source.MissingSpatialInfoError
		temporalInput     *source.TemporalInputError
		invalidRange      *model.InvalidTemporalRangeError
		stacValidation    *stac.StacValidationError
	)
	switch {
	case errors.As(err, &unsupportedFormat):
		return "UnsupportedFormatError"
	case errors.As(err, &sourceOpen):
		return "SourceOpenError"
	case errors.As(err, &missingSpatial):
		return "MissingSpatialInfoError"
	case errors.As(err, &temporalInput):
		return "TemporalInputError"
	case errors.As(err, &invalidRange):
		return "InvalidTemporalRangeError"
	case errors.As(err, &stacValidation):
		return "StacValidationError"
	}
	return "Error"
}
