package formz

import (
	"slices"
	"testing"
)

func TestValue_SetEqualIsNoOp(t *testing.T) {
	v := NewValue("a")
	calls := 0
	v.Observe(func(string) { calls++ })
	if calls != 1 {
		t.Fatalf("expected replay on observe, got %d calls", calls)
	}

	v.Set("a")
	if calls != 1 {
		t.Errorf("setting the current value notified the observer")
	}

	v.Set("b")
	v.Set("b")
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if v.Get() != "b" {
		t.Errorf("Get() = %q, want b", v.Get())
	}
}

func TestValue_ObserveReplacesObserver(t *testing.T) {
	v := NewValue(1)
	var first, second []int
	v.Observe(func(n int) { first = append(first, n) })
	v.Observe(func(n int) { second = append(second, n) })
	v.Set(2)

	if !slices.Equal(first, []int{1}) {
		t.Errorf("first observer saw %v", first)
	}
	if !slices.Equal(second, []int{1, 2}) {
		t.Errorf("second observer saw %v", second)
	}

	v.Unobserve()
	v.Set(3)
	if len(second) != 2 {
		t.Errorf("observer called after Unobserve")
	}
	if v.Get() != 3 {
		t.Errorf("Set must store the value without an observer")
	}
}

func TestDeferred(t *testing.T) {
	v := Deferred[int]()
	if v.Present() {
		t.Fatal("deferred value reported present")
	}

	calls := 0
	v.Observe(func(int) { calls++ })
	if calls != 0 {
		t.Fatal("empty cell replayed on observe")
	}

	v.Set(0)
	if calls != 1 {
		t.Errorf("first Set must notify even for the zero value, got %d calls", calls)
	}
	if got, ok := v.Lookup(); !ok || got != 0 {
		t.Errorf("Lookup() = %d, %v", got, ok)
	}
}

func TestValueFunc_CustomEquality(t *testing.T) {
	v := NewValueFunc[Messages](nil, Messages.Equal)
	calls := 0
	v.Observe(func(Messages) { calls++ })

	v.Set(Messages{})
	if calls != 1 {
		t.Errorf("nil and empty messages must compare equal, got %d calls", calls)
	}

	v.Set(Messages{{Message: "x", Type: "t"}})
	v.Set(Messages{{Message: "x", Type: "t"}})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}

	d := DeferredFunc[[]int](slices.Equal[[]int])
	d.Set([]int{1})
	if !d.Present() {
		t.Error("expected value present after Set")
	}
}
