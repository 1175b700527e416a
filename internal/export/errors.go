package export

import (
	"errors"
	"fmt"
	"strings"

	"mitsuba-export/internal/builder"
)

// ErrNotReset is returned by Run on a session that already ran.
var ErrNotReset = errors.New("export: session already ran; call Reset first")

// ConfigError reports an invalid configuration, found before any output is
// written.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "export: invalid config: " + e.Reason
	}
	return fmt.Sprintf("export: invalid config %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Error is the terminal error of a failed run together with the
// diagnostics recorded before the failure.
type Error struct {
	State       State
	Err         error
	Diagnostics []builder.Diagnostic
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if n := len(e.Diagnostics); n > 0 {
		fmt.Fprintf(&b, " (%d diagnostic", n)
		if n > 1 {
			b.WriteByte('s')
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
