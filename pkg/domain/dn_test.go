package domain_test

import (
	"encoding/json"
	"testing"

	"dircore/pkg/domain"
)

func TestParseDNLowercasesTypes(t *testing.T) {
	dn, err := domain.ParseDN("CN=Alice,OU=People,DC=Example,DC=com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := dn.String(), "cn=Alice,ou=People,dc=Example,dc=com"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if dn.Depth() != 4 {
		t.Fatalf("depth = %d", dn.Depth())
	}
	if leaf := dn.Leaf(); leaf.Type != "cn" || leaf.Value != "Alice" {
		t.Fatalf("leaf = %+v", leaf)
	}
}

func TestParseDNRejectsMalformedComponents(t *testing.T) {
	for _, s := range []string{"cn", "=value", "cn=", "cn=alice,,dc=com"} {
		if _, err := domain.ParseDN(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestParseDNEscapedComma(t *testing.T) {
	dn, err := domain.ParseDN(`cn=Smith\, John,ou=people,dc=example,dc=com`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if dn.Depth() != 4 {
		t.Fatalf("depth = %d, escaped comma must not split", dn.Depth())
	}
	if got := dn.Leaf().Value; got != "Smith, John" {
		t.Fatalf("leaf value = %q", got)
	}
	if got, want := dn.String(), `cn=Smith\, John,ou=people,dc=example,dc=com`; got != want {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}

func TestDNEqualIsCaseInsensitive(t *testing.T) {
	a := domain.MustParseDN("cn=Alice,dc=example,dc=com")
	b := domain.MustParseDN("CN=alice,DC=Example,DC=COM")
	if !a.Equal(b) {
		t.Fatalf("%s and %s should compare equal", a, b)
	}
	if a.Normalize() != b.Normalize() {
		t.Fatalf("normalized forms differ: %q vs %q", a.Normalize(), b.Normalize())
	}
}

func TestParent(t *testing.T) {
	dn := domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com")
	parent, ok := dn.Parent()
	if !ok {
		t.Fatalf("expected parent")
	}
	if got, want := parent.String(), "ou=people,dc=example,dc=com"; got != want {
		t.Fatalf("parent = %q, want %q", got, want)
	}
	if _, ok := domain.MustParseDN("dc=com").Parent(); ok {
		t.Fatalf("single component has no structural parent")
	}
	if _, ok := (domain.DN{}).Parent(); ok {
		t.Fatalf("empty DN has no parent")
	}
}

func TestParentWithinSuffix(t *testing.T) {
	suffix := domain.MustParseDN("dc=example,dc=com")

	// The suffix entry itself is the hierarchy root.
	if _, ok := suffix.ParentWithin(suffix); ok {
		t.Fatalf("suffix must have no parent within itself")
	}

	// Entries outside the suffix have no parent within it.
	outside := domain.MustParseDN("cn=alice,dc=other,dc=org")
	if _, ok := outside.ParentWithin(suffix); ok {
		t.Fatalf("entry outside the suffix must have no parent within it")
	}

	child := domain.MustParseDN("ou=people,dc=example,dc=com")
	parent, ok := child.ParentWithin(suffix)
	if !ok {
		t.Fatalf("expected parent for %s", child)
	}
	if !parent.Equal(suffix) {
		t.Fatalf("parent = %s, want %s", parent, suffix)
	}
}

func TestIsDescendantOf(t *testing.T) {
	suffix := domain.MustParseDN("dc=example,dc=com")
	dn := domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com")
	if !dn.IsDescendantOf(suffix) {
		t.Fatalf("%s should descend from %s", dn, suffix)
	}
	if suffix.IsDescendantOf(suffix) {
		t.Fatalf("a DN does not descend from itself")
	}
	if suffix.IsDescendantOf(dn) {
		t.Fatalf("ancestor does not descend from descendant")
	}
}

func TestChild(t *testing.T) {
	suffix := domain.MustParseDN("dc=example,dc=com")
	child := suffix.Child(domain.RDN{Type: "OU", Value: "People"})
	if got, want := child.String(), "ou=People,dc=example,dc=com"; got != want {
		t.Fatalf("child = %q, want %q", got, want)
	}
}

func TestDNJSONRoundTrip(t *testing.T) {
	dn := domain.MustParseDN("cn=alice,dc=example,dc=com")
	data, err := json.Marshal(dn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"cn=alice,dc=example,dc=com"` {
		t.Fatalf("encoded = %s", data)
	}
	var decoded domain.DN
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(dn) {
		t.Fatalf("round trip mismatch: %s", decoded)
	}
}
