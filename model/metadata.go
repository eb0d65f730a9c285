package model

// Provider identifies an organization involved in producing, hosting or
// processing a dataset, per the STAC provider object.
type Provider struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	URL   string   `json:"url,omitempty"`
}

// DatasetMetadata is the optional provenance block extracted from a source
// file. Zero values mean "absent": extraction never fabricates placeholders,
// so callers can distinguish a missing title from an empty one.
type DatasetMetadata struct {
	Title       string
	Description string
	License     string
	Providers   []Provider

	// CF attributes passed through verbatim as `cf:<key>` properties
	CFAttributes map[string]string
}

// Apply copies the metadata onto item properties, leaving absent fields untouched
func (m DatasetMetadata) Apply(props *ItemProperties) {
	if m.Title != "" {
		props.Title = m.Title
	}
	if m.Description != "" {
		props.Description = m.Description
	}
	if m.License != "" {
		props.License = m.License
	}
	if len(m.Providers) > 0 {
		props.Providers = append([]Provider{}, m.Providers...)
	}
	if len(m.CFAttributes) > 0 {
		if props.CF == nil {
			props.CF = make(map[string]string, len(m.CFAttributes))
		}
		for key, value := range m.CFAttributes {
			props.CF[key] = value
		}
	}
}
