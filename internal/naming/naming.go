// Package naming derives plugin identifiers from host object names.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitize folds name to an identifier made of ASCII letters, digits, '_',
// '-' and '.'. Accents are stripped ("Röt" → "Rot"); every other rune
// becomes '_'. Returns "" when nothing usable remains.
func Sanitize(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// Registry hands out identifiers that are unique within one export.
type Registry struct {
	used      map[string]bool
	positions map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		used:      make(map[string]bool),
		positions: make(map[string]int),
	}
}

// Named returns prefix+Sanitize(name), falling back to fallback when the
// name folds to nothing. Collisions get "_2", "_3", ... in call order.
func (r *Registry) Named(prefix, name, fallback string) string {
	base := Sanitize(name)
	if base == "" {
		base = fallback
	}
	base = prefix + base
	id := base
	for i := 2; r.used[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	r.used[id] = true
	return id
}

// Positional returns "<class>-<n>" with n counting per class from zero.
func (r *Registry) Positional(class string) string {
	for {
		n := r.positions[class]
		r.positions[class] = n + 1
		id := fmt.Sprintf("%s-%d", class, n)
		if !r.used[id] {
			r.used[id] = true
			return id
		}
	}
}
