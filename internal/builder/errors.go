package builder

import (
	"fmt"

	"mitsuba-export/internal/scene"
)

// UnsupportedEntityError reports an entity with no plugin mapping. It is
// recoverable: the entity is skipped and a Diagnostic is recorded.
type UnsupportedEntityError struct {
	Kind   scene.Kind
	ID     string
	Name   string
	Reason string
}

func (e *UnsupportedEntityError) Error() string {
	return fmt.Sprintf("builder: unsupported %s %q: %s", e.Kind, e.Name, e.Reason)
}

func unsupported(e scene.Entity, format string, args ...interface{}) *UnsupportedEntityError {
	return &UnsupportedEntityError{
		Kind:   e.Kind,
		ID:     e.ID,
		Name:   e.Name,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Diagnostic is a non-fatal problem found while building.
type Diagnostic struct {
	Kind    scene.Kind `json:"kind"`
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Message string     `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %q: %s", d.Kind, d.Name, d.Message)
}
