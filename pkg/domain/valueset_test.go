package domain_test

import (
	"reflect"
	"testing"

	"dircore/pkg/domain"
)

func TestValueSetPreservesFirstOccurrenceOrder(t *testing.T) {
	var s domain.ValueSet
	s.AddAll([]string{"555-1111"})
	s.AddAll([]string{"555-2222", "555-1111"})

	want := []string{"555-1111", "555-2222"}
	if got := s.Values(); !reflect.DeepEqual(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestValueSetIsCaseSensitive(t *testing.T) {
	s := domain.NewValueSet("Engineering", "engineering")
	if s.Len() != 2 {
		t.Fatalf("distinct case variants must both be kept, len = %d", s.Len())
	}
}

func TestValueSetAddReportsNovelty(t *testing.T) {
	var s domain.ValueSet
	if !s.Add("a") {
		t.Fatalf("first insert should report true")
	}
	if s.Add("a") {
		t.Fatalf("duplicate insert should report false")
	}
	if !s.Contains("a") || s.Contains("b") {
		t.Fatalf("contains misreports membership")
	}
}

func TestValueSetValuesIsACopy(t *testing.T) {
	s := domain.NewValueSet("a", "b")
	v := s.Values()
	v[0] = "mutated"
	if got := s.Values()[0]; got != "a" {
		t.Fatalf("set mutated through returned slice: %q", got)
	}
}

func TestEmptyValueSet(t *testing.T) {
	var s domain.ValueSet
	if s.Len() != 0 {
		t.Fatalf("zero value should be empty")
	}
	if s.Values() != nil {
		t.Fatalf("empty set should return nil values")
	}
	if domain.NewAttribute("x", s) != nil {
		t.Fatalf("attribute built from empty set must be nil")
	}
}
