package scene

import "fmt"

// ReadError reports a scene that cannot be walked: nil, not evaluated, or
// internally inconsistent. It is fatal for an export.
type ReadError struct {
	Scene  string
	Reason string
	Err    error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scene: read %s: %s: %v", e.Scene, e.Reason, e.Err)
	}
	return fmt.Sprintf("scene: read %s: %s", e.Scene, e.Reason)
}

func (e *ReadError) Unwrap() error { return e.Err }

func readErr(s *Scene, format string, args ...interface{}) *ReadError {
	name := "<nil>"
	if s != nil {
		name = s.Name
	}
	return &ReadError{Scene: name, Reason: fmt.Sprintf(format, args...)}
}
