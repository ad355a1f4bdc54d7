package util

import (
	"reflect"
	"testing"
)

func TestPtrDeref(t *testing.T) {
	p := Ptr(42)
	if Deref(p) != 42 {
		t.Fatalf("expected 42, got %d", Deref(p))
	}
	var nilP *int
	if Deref(nilP) != 0 {
		t.Fatal("expected zero value for nil pointer")
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	got := SortedKeys(m)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys() = %v, want %v", got, want)
	}
}

func TestKeys(t *testing.T) {
	if got := Keys(map[string]int{"a": 1}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if got := Keys(map[string]int{}); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}
}

func TestMap(t *testing.T) {
	got := Map([]int{1, 2}, func(v int) int { return v * 10 })
	if !reflect.DeepEqual(got, []int{10, 20}) {
		t.Fatalf("Map() = %v", got)
	}
}
