package source

import (
	"fmt"

	"github.com/EDITO-Infra/makestac/model"
)

// NetCDF and Zarr sources carry provenance in CF-style global attributes.
// The key lists below follow the CF/ACDD conventions the EDITO ingestion
// guides ask contributors to fill in; first match wins.

var titleKeys = []string{"title"}
var institutionKeys = []string{"institution", "source"}
var institutionURLKeys = []string{"institution_url", "references"}
var descriptionKeys = []string{"summary", "comment"}
var licenseKeys = []string{"license"}
var contactKeys = []string{"contact", "creator_email"}

// cfPassthroughKeys are copied verbatim onto the Item as `cf:<key>` properties
var cfPassthroughKeys = []string{"conventions", "Conventions", "history", "source", "project", "experiment_id"}

// MetadataFromAttributes maps a global-attributes table onto dataset
// metadata. Absent or non-string attributes simply stay absent.
func MetadataFromAttributes(attrs map[string]interface{}) model.DatasetMetadata {
	metadata := model.DatasetMetadata{
		Title:       firstAttrString(attrs, titleKeys),
		Description: firstAttrString(attrs, descriptionKeys),
		License:     firstAttrString(attrs, licenseKeys),
	}

	institution := firstAttrString(attrs, institutionKeys)
	institutionURL := firstAttrString(attrs, institutionURLKeys)
	if institution != "" || institutionURL != "" {
		name := institution
		if name == "" {
			name = institutionURL
		}
		metadata.Providers = append(metadata.Providers, model.Provider{
			Name:  name,
			Roles: []string{"producer"},
			URL:   institutionURL,
		})
	}

	if contact := firstAttrString(attrs, contactKeys); contact != "" {
		metadata.Providers = append(metadata.Providers, model.Provider{
			Name:  contact,
			Roles: []string{"processor"},
		})
	}

	for _, key := range cfPassthroughKeys {
		value := attrString(attrs, key)
		if value == "" {
			continue
		}
		if metadata.CFAttributes == nil {
			metadata.CFAttributes = make(map[string]string)
		}
		// both spellings of `conventions` land on the lowercase key
		normalized := key
		if key == "Conventions" {
			normalized = "conventions"
		}
		if _, taken := metadata.CFAttributes[normalized]; !taken {
			metadata.CFAttributes[normalized] = value
		}
	}

	return metadata
}

func firstAttrString(attrs map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if value := attrString(attrs, key); value != "" {
			return value
		}
	}
	return ""
}

func attrString(attrs map[string]interface{}, key string) string {
	value, present := attrs[key]
	if !present || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64, float32, int, int32, int64:
		return fmt.Sprintf("%v", v)
	}
	return ""
}
