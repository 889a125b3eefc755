package domain

import "strings"

// AttrObjectClass is the attribute carrying an entry's class memberships.
const AttrObjectClass = "objectClass"

// Attribute is a named, ordered, possibly multi-valued entry attribute.
// Virtual attribute providers never construct one with zero values; absence
// is expressed as a nil *Attribute instead.
type Attribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NewAttribute builds an attribute from a value set. It returns nil when the
// set is empty so callers can pass the result through unchanged.
func NewAttribute(name string, values ValueSet) *Attribute {
	if values.Len() == 0 {
		return nil
	}
	return &Attribute{Name: name, Values: values.Values()}
}

// Entry is a node in the directory tree: a DN plus its attributes.
type Entry struct {
	DN         DN          `json:"dn"`
	Attributes []Attribute `json:"attributes"`
}

// GetValues returns all values of the named attribute. Attribute names are
// matched case-insensitively; a missing attribute yields nil.
func (e Entry) GetValues(name string) []string {
	for _, attr := range e.Attributes {
		if strings.EqualFold(attr.Name, name) {
			return attr.Values
		}
	}
	return nil
}

// HasAttribute reports whether the entry carries at least one value for name.
func (e Entry) HasAttribute(name string) bool {
	return len(e.GetValues(name)) > 0
}

// HasClass reports whether the entry declares membership in the named object
// class. Class values compare case-insensitively.
func (e Entry) HasClass(class string) bool {
	for _, v := range e.GetValues(AttrObjectClass) {
		if strings.EqualFold(v, class) {
			return true
		}
	}
	return false
}

// PutAttribute replaces the named attribute's values, appending a new
// attribute when the entry does not carry it yet.
func (e *Entry) PutAttribute(name string, values ...string) {
	for i, attr := range e.Attributes {
		if strings.EqualFold(attr.Name, name) {
			e.Attributes[i].Values = append([]string(nil), values...)
			return
		}
	}
	e.Attributes = append(e.Attributes, Attribute{Name: name, Values: append([]string(nil), values...)})
}

// Clone returns a deep copy so stores can hand out entries without aliasing
// internal state.
func (e Entry) Clone() Entry {
	cp := Entry{DN: e.DN}
	if e.Attributes != nil {
		cp.Attributes = make([]Attribute, len(e.Attributes))
		for i, attr := range e.Attributes {
			cp.Attributes[i] = Attribute{Name: attr.Name, Values: append([]string(nil), attr.Values...)}
		}
	}
	return cp
}
