// Package naming maps host node names to entity names that are legal in the
// project format and unique within one export.
package naming

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrCollision is returned when two different host names sanitize to the
// same entity name.
var ErrCollision = errors.New("name collision")

// fold decomposes accented letters and drops the combining marks, so
// "Kopf_Ä" becomes "Kopf_A" instead of "Kopf__".
var fold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize returns a legal entity name for a host name. Path separators and
// reserved characters become underscores, double quotes are dropped and
// non-ASCII letters are folded to their base form where one exists.
//
// Sanitize is idempotent: a legal name is returned unchanged.
func Sanitize(name string) string {
	if isLegal(name) {
		return name
	}

	folded, _, err := transform.String(fold, name)
	if err != nil {
		// Keep going with the raw name; every illegal rune is replaced below
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '"':
			// dropped
		case legalRune(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Join sanitizes each part and joins them with underscores. It is used for
// derived names such as "<node>_<attr>_color".
func Join(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = Sanitize(p)
	}
	return strings.Join(clean, "_")
}

// ShortName returns the last component of a '|' separated host path.
func ShortName(path string) string {
	if i := strings.LastIndexByte(path, '|'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func legalRune(r rune) bool {
	return r < 0x80 && (r == '_' || r == '-' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
}

func isLegal(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !legalRune(r) {
			return false
		}
	}
	return true
}

// Registry hands out entity names for host names and detects collisions.
// One Registry covers one exported frame.
type Registry struct {
	byName map[string]string // entity name -> host name
	byHost map[string]string // host name -> entity name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]string),
		byHost: make(map[string]string),
	}
}

// Register returns the entity name for a host name. Registering the same
// host name again returns the same entity name. A different host name that
// sanitizes to an already claimed entity name fails with ErrCollision.
func (r *Registry) Register(host string) (string, error) {
	if name, ok := r.byHost[host]; ok {
		return name, nil
	}

	name := Sanitize(host)
	if owner, ok := r.byName[name]; ok && owner != host {
		return "", fmt.Errorf("%w: %q and %q both map to %q", ErrCollision, owner, host, name)
	}

	r.byName[name] = host
	r.byHost[host] = name
	return name, nil
}

// Lookup returns the entity name registered for host.
func (r *Registry) Lookup(host string) (string, bool) {
	name, ok := r.byHost[host]
	return name, ok
}

// Names returns all registered entity names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
