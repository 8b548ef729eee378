package selection

import (
	"reflect"
	"testing"
)

func TestSet_Toggle(t *testing.T) {
	t.Parallel()

	s := New()
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("a")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("IDs: got %v want [b]", got)
	}
	if s.IsSelected("a") {
		t.Fatalf("a should be deselected")
	}
	if !s.IsSelected("b") || s.Count() != 1 {
		t.Fatalf("b should be the only selection, count=%d", s.Count())
	}
}

func TestSet_SelectAllReplaces(t *testing.T) {
	t.Parallel()

	s := New("x")
	s.SelectAll([]string{"a", "b", "a"})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("IDs: got %v want [a b]", got)
	}
	if s.IsSelected("x") {
		t.Fatalf("SelectAll must replace the previous selection")
	}
}

func TestSet_ClearAndRemove(t *testing.T) {
	t.Parallel()

	s := New("a", "b", "c")
	s.Remove("b", "zzz")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Remove: got %v", got)
	}
	s.Clear()
	if s.Count() != 0 || s.IsSelected("a") {
		t.Fatalf("Clear left %v", s.IDs())
	}
}

func TestSet_Retain(t *testing.T) {
	t.Parallel()

	s := New("a", "b", "c")
	s.Retain([]string{"c", "a", "d"})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Retain: got %v want [a c]", got)
	}
	if s.IsSelected("b") {
		t.Fatalf("b should have been pruned")
	}
}

func TestSet_ZeroValueUsable(t *testing.T) {
	t.Parallel()

	var s Set
	s.Toggle("a")
	if !s.IsSelected("a") || s.Count() != 1 {
		t.Fatalf("zero Set: %v", s.IDs())
	}
}
