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

// Package stac assembles, validates and persists STAC 1.0.0 Items.
package stac

import (
	"path"
	"strings"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
)

// Inputs carries everything the assembler composes into an Item
type Inputs struct {
	ID        string
	SourceURI string
	DataURL   string
	Format    source.Format
	Extent    model.Extent
	Temporal  model.TemporalRange
	Metadata  model.DatasetMetadata
}

// AssembleItem composes a STAC Item from extracted pieces. Pure data
// transformation: no network, no disk.
//
// Temporal encoding: an instant range collapses to a single `datetime`
// property; a proper range is emitted as `start_datetime`/`end_datetime`
// with no `datetime`, so exactly one encoding is ever present.
func AssembleItem(in Inputs) *model.StacItem {
	formatLabel := strings.ToUpper(string(in.Format))

	properties := model.ItemProperties{
		Title:       "Data from " + sourceBasename(in.SourceURI),
		Description: formatLabel + " dataset",
		License:     "proprietary",
	}
	if in.Temporal.Instant() {
		properties.Datetime = model.FormatUTC(in.Temporal.Start)
	} else {
		properties.StartDatetime = model.FormatUTC(in.Temporal.Start)
		properties.EndDatetime = model.FormatUTC(in.Temporal.End)
	}
	in.Metadata.Apply(&properties)

	return &model.StacItem{
		ID:          in.ID,
		Type:        "Feature",
		StacVersion: model.StacVersion,
		Properties:  properties,
		Geometry:    in.Extent.Polygon(),
		Bbox:        in.Extent.Bbox(),
		Assets: map[string]model.Asset{
			"data": {
				Href:  in.DataURL,
				Type:  in.Format.MediaType(),
				Title: formatLabel + " data file",
				Roles: []string{"data"},
			},
		},
		Links: []model.Link{},
	}
}

// DeriveItemID derives a default item id from the source filename stem.
// Deliberately free of timestamps so a rerun reproduces the same output.
func DeriveItemID(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	base := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return "dataset"
	}
	return base
}

func sourceBasename(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	base := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if base == "" {
		return "dataset"
	}
	return base
}
