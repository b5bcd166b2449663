package loam

// PresetMetadata is the frontmatter of a preset document. The document body
// is used as the description when Description is empty.
type PresetMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Group       string `json:"group" mapstructure:"group"`
	Description string `json:"description" mapstructure:"description"`

	// Parameters are recalled in the listed order.
	Parameters []PresetParameter `json:"parameters" mapstructure:"parameters"`
}

// PresetParameter is one normalized value of a preset.
// Value stays untyped: strict mode hands numbers over as json.Number.
type PresetParameter struct {
	ID    string `json:"id" mapstructure:"id"`
	Value any    `json:"value" mapstructure:"value"`
}
