// Package domain defines the naming, entry, and search value types plus the
// rule evaluation primitives used by dircore.
package domain

import (
	"fmt"
	"strings"
)

// RDN is a single relative distinguished name component, e.g. "ou=People".
type RDN struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// String renders the component as "type=value" with ',' and '\' escaped.
func (r RDN) String() string {
	return r.Type + "=" + escapeRDNValue(r.Value)
}

// DN identifies a node in the hierarchical directory tree. The zero value is
// the empty DN and compares equal only to itself.
type DN struct {
	rdns []RDN
}

// ParseDN parses a string of comma-separated RDN components, most specific
// first ("ou=People,dc=example,dc=com"). Attribute types are lowercased;
// values keep their original case. Backslash escapes for ',' and '\' are
// honored, which is the only escaping the store produces.
func ParseDN(s string) (DN, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DN{}, nil
	}
	var rdns []RDN
	for _, comp := range splitUnescaped(s, ',') {
		comp = strings.TrimSpace(comp)
		typ, val, ok := strings.Cut(comp, "=")
		if !ok {
			return DN{}, fmt.Errorf("malformed RDN %q in %q", comp, s)
		}
		typ = strings.ToLower(strings.TrimSpace(typ))
		val = unescapeRDNValue(strings.TrimSpace(val))
		if typ == "" || val == "" {
			return DN{}, fmt.Errorf("empty type or value in RDN %q", comp)
		}
		rdns = append(rdns, RDN{Type: typ, Value: val})
	}
	return DN{rdns: rdns}, nil
}

// MustParseDN parses s and panics on error. Intended for tests and constants.
func MustParseDN(s string) DN {
	dn, err := ParseDN(s)
	if err != nil {
		panic(err)
	}
	return dn
}

// String renders the DN in its parsed component order.
func (d DN) String() string {
	parts := make([]string, len(d.rdns))
	for i, r := range d.rdns {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Normalize returns a case-folded key suitable for map lookups and equality.
// Attribute values in DNs are compared case-insensitively.
func (d DN) Normalize() string {
	parts := make([]string, len(d.rdns))
	for i, r := range d.rdns {
		parts[i] = r.Type + "=" + strings.ToLower(escapeRDNValue(r.Value))
	}
	return strings.Join(parts, ",")
}

// IsZero reports whether the DN has no components.
func (d DN) IsZero() bool { return len(d.rdns) == 0 }

// Depth returns the number of RDN components.
func (d DN) Depth() int { return len(d.rdns) }

// Leaf returns the most specific component, or a zero RDN for the empty DN.
func (d DN) Leaf() RDN {
	if len(d.rdns) == 0 {
		return RDN{}
	}
	return d.rdns[0]
}

// Equal reports whether two DNs name the same node.
func (d DN) Equal(other DN) bool {
	return d.Normalize() == other.Normalize()
}

// Parent returns the structurally enclosing DN. The second return is false
// when the DN has no parent (empty or single-component).
func (d DN) Parent() (DN, bool) {
	if len(d.rdns) <= 1 {
		return DN{}, false
	}
	return DN{rdns: d.rdns[1:]}, true
}

// ParentWithin returns the parent DN bounded by the given suffix: a DN equal
// to the suffix is the hierarchy root and has no parent, and DNs outside the
// suffix have no parent either.
func (d DN) ParentWithin(suffix DN) (DN, bool) {
	if d.Equal(suffix) {
		return DN{}, false
	}
	if !d.IsDescendantOf(suffix) {
		return DN{}, false
	}
	return d.Parent()
}

// IsDescendantOf reports whether d sits strictly below ancestor in the tree.
func (d DN) IsDescendantOf(ancestor DN) bool {
	if len(ancestor.rdns) >= len(d.rdns) {
		return false
	}
	tail := DN{rdns: d.rdns[len(d.rdns)-len(ancestor.rdns):]}
	return tail.Equal(ancestor)
}

// Child returns the DN obtained by prepending rdn under d.
func (d DN) Child(rdn RDN) DN {
	rdns := make([]RDN, 0, len(d.rdns)+1)
	rdns = append(rdns, RDN{Type: strings.ToLower(rdn.Type), Value: rdn.Value})
	rdns = append(rdns, d.rdns...)
	return DN{rdns: rdns}
}

// MarshalText implements encoding.TextMarshaler so DNs round-trip through JSON.
func (d DN) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DN) UnmarshalText(text []byte) error {
	parsed, err := ParseDN(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte('\\')
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	parts = append(parts, cur.String())
	return parts
}

func escapeRDNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `,`, `\,`)
}

func unescapeRDNValue(v string) string {
	v = strings.ReplaceAll(v, `\,`, `,`)
	return strings.ReplaceAll(v, `\\`, `\`)
}
