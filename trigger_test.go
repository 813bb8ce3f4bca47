package formz

import (
	"slices"
	"testing"
)

func TestTrigger_FiresInOrder(t *testing.T) {
	tr := NewTrigger()
	var got []int
	tr.Subscribe(func() { got = append(got, 1) })
	tr.Subscribe(func() { got = append(got, 2) })

	tr.Fire()
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestTrigger_Unsubscribe(t *testing.T) {
	tr := NewTrigger()
	calls := 0
	unsub := tr.Subscribe(func() { calls++ })
	tr.Subscribe(func() {})

	unsub()
	unsub()
	tr.Fire()

	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestTrigger_UnsubscribeWhileFiring(t *testing.T) {
	tr := NewTrigger()
	var unsubSecond func()
	calls := 0
	tr.Subscribe(func() { unsubSecond() })
	unsubSecond = tr.Subscribe(func() { calls++ })

	tr.Fire()
	if calls != 1 {
		t.Errorf("listener removed mid-fire must still run this round, got %d", calls)
	}

	tr.Fire()
	if calls != 1 {
		t.Errorf("listener ran after removal")
	}
}

func TestTrigger_FireWithoutListeners(_ *testing.T) {
	NewTrigger().Fire()
}
