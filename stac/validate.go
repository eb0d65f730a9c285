package stac

import (
	"fmt"
	"math"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/EDITO-Infra/makestac/model"
)

// StacValidationError carries every violated constraint, not just the first,
// so the operator can fix all issues in one pass
type StacValidationError struct {
	Violations []string
}

func (e *StacValidationError) Error() string {
	return fmt.Sprintf("STAC item failed validation with %d violation(s): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// ValidateItem checks the subset of the STAC Item spec relevant to Items
// produced by this pipeline. It is not a general-purpose STAC validator.
func ValidateItem(item *model.StacItem) error {
	var violations []string

	err := validation.ValidateStruct(item,
		validation.Field(&item.ID, validation.Required),
		validation.Field(&item.Type, validation.Required, validation.In("Feature")),
		validation.Field(&item.StacVersion, validation.Required, validation.In(model.StacVersion)),
		validation.Field(&item.Geometry, validation.NotNil),
		validation.Field(&item.Bbox, validation.Required, validation.Length(4, 4)),
		validation.Field(&item.Assets, validation.Required),
	)
	if err != nil {
		if fieldErrs, ok := err.(validation.Errors); ok {
			fields := make([]string, 0, len(fieldErrs))
			for field := range fieldErrs {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				violations = append(violations, field+": "+fieldErrs[field].Error())
			}
		} else {
			violations = append(violations, err.Error())
		}
	}

	violations = append(violations, geometryViolations(item)...)
	violations = append(violations, bboxViolations(item)...)
	violations = append(violations, temporalViolations(item.Properties)...)
	violations = append(violations, assetViolations(item.Assets)...)

	if len(violations) > 0 {
		return &StacValidationError{Violations: violations}
	}
	return nil
}

func geometryViolations(item *model.StacItem) []string {
	if item.Geometry == nil {
		return nil
	}
	rings := item.Geometry.Coordinates
	if len(rings) == 0 {
		return []string{"geometry: polygon has no rings"}
	}
	var violations []string
	exterior := rings[0]
	if len(exterior) < 4 {
		violations = append(violations, "geometry: exterior ring has fewer than 4 positions")
	} else {
		first, last := exterior[0], exterior[len(exterior)-1]
		if len(first) < 2 || len(last) < 2 || first[0] != last[0] || first[1] != last[1] {
			violations = append(violations, "geometry: exterior ring is not closed")
		}
	}
	for _, position := range exterior {
		if len(position) < 2 {
			violations = append(violations, "geometry: position with fewer than 2 coordinates")
			break
		}
	}
	return violations
}

func bboxViolations(item *model.StacItem) []string {
	if len(item.Bbox) != 4 {
		return nil // length already reported by the field rules
	}
	var violations []string
	if item.Bbox[0] > item.Bbox[2] {
		violations = append(violations, fmt.Sprintf("bbox: min_lon %v exceeds max_lon %v", item.Bbox[0], item.Bbox[2]))
	}
	if item.Bbox[1] > item.Bbox[3] {
		violations = append(violations, fmt.Sprintf("bbox: min_lat %v exceeds max_lat %v", item.Bbox[1], item.Bbox[3]))
	}
	if item.Bbox[0] < -180 || item.Bbox[2] > 180 {
		violations = append(violations, fmt.Sprintf("bbox: longitudes [%v, %v] outside [-180, 180]", item.Bbox[0], item.Bbox[2]))
	}
	if item.Bbox[1] < -90 || item.Bbox[3] > 90 {
		violations = append(violations, fmt.Sprintf("bbox: latitudes [%v, %v] outside [-90, 90]", item.Bbox[1], item.Bbox[3]))
	}
	violations = append(violations, bboxGeometryMismatch(item)...)
	return violations
}

// bboxGeometryMismatch cross-checks the declared bbox against the bbox
// recomputed from the geometry
func bboxGeometryMismatch(item *model.StacItem) []string {
	if item.Geometry == nil {
		return nil
	}
	feature, err := item.GeoJSONFeature()
	if err != nil {
		return []string{"geometry: could not be interpreted as GeoJSON: " + err.Error()}
	}
	computed := feature.ForceBbox()
	if len(computed) != 4 {
		return nil
	}
	for i := range computed {
		if math.Abs(computed[i]-item.Bbox[i]) > 1e-9 {
			return []string{"bbox: does not match the bounding box of the geometry"}
		}
	}
	return nil
}

func temporalViolations(properties model.ItemProperties) []string {
	var violations []string

	hasDatetime := properties.Datetime != ""
	hasStart := properties.StartDatetime != ""
	hasEnd := properties.EndDatetime != ""

	switch {
	case hasStart != hasEnd:
		violations = append(violations, "properties: start_datetime and end_datetime must be supplied together")
	case hasDatetime && hasStart:
		violations = append(violations, "properties: datetime and start_datetime/end_datetime are mutually exclusive")
	case !hasDatetime && !hasStart:
		violations = append(violations, "properties: one of datetime or start_datetime/end_datetime is required")
	}

	if hasStart && hasEnd {
		start, startErr := model.ParseUTCDatetime(properties.StartDatetime)
		end, endErr := model.ParseUTCDatetime(properties.EndDatetime)
		if startErr == nil && endErr == nil && start.After(end) {
			violations = append(violations, "properties: start_datetime is after end_datetime")
		}
	}

	for _, check := range []struct {
		field string
		value string
	}{
		{"datetime", properties.Datetime},
		{"start_datetime", properties.StartDatetime},
		{"end_datetime", properties.EndDatetime},
	} {
		if check.value != "" && !model.IsUTCDatetime(check.value) {
			violations = append(violations, fmt.Sprintf("properties.%s: `%s` lacks an explicit UTC marker", check.field, check.value))
		}
	}
	return violations
}

func assetViolations(assets map[string]model.Asset) []string {
	var violations []string
	keys := make([]string, 0, len(assets))
	for key := range assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if assets[key].Href == "" {
			violations = append(violations, fmt.Sprintf("assets.%s: empty href", key))
		}
	}
	return violations
}
