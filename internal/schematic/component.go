package schematic

import "strings"

// Component models one schematic part as exported by the snapshot generator.
// The collection is immutable once loaded; reloads replace it wholesale.
type Component struct {
	Ref       string   `json:"ref" validate:"required"`
	Value     string   `json:"value,omitempty"`
	Footprint string   `json:"footprint,omitempty"`
	PosX      *float64 `json:"posX,omitempty"`
	PosY      *float64 `json:"posY,omitempty"`
}

// HasPosition reports whether both schematic-space coordinates are known.
func (c Component) HasPosition() bool {
	return c.PosX != nil && c.PosY != nil
}

// DisplayName returns the value when present, falling back to the ref.
func (c Component) DisplayName() string {
	if trimmed := strings.TrimSpace(c.Value); trimmed != "" {
		return trimmed
	}
	return c.Ref
}
