package domain

// Preset is a named, ordered set of parameter values recalled as one batch.
type Preset struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Group       string        `json:"group,omitempty"`
	Updates     []BatchUpdate `json:"updates"`
}
