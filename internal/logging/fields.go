package logging

// Standardized attribute keys used across pipeline components.
const (
	FieldComponent = "component"
	FieldPath      = "path"
	FieldDest      = "dest"
)
