package event

import "testing"

type testEvent struct{ N int }
type otherEvent struct{}

func TestEmitDeliveredAfterSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev testEvent) { got = append(got, ev.N) })

	Emit(b, testEvent{1})
	Emit(b, testEvent{2})

	b.DispatchAll()
	if len(got) != 0 {
		t.Fatal("events delivered before swap")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("delivered = %v, want [1 2]", got)
	}
}

func TestEventsClearedAfterCycle(t *testing.T) {
	b := NewBus()
	var count int
	Subscribe(b, func(testEvent) { count++ })

	Emit(b, testEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	// Next cycle with nothing emitted delivers nothing again.
	b.SwapBuffers()
	b.DispatchAll()
	if count != 1 {
		t.Errorf("delivered %d times, want 1", count)
	}
}

func TestTypedRouting(t *testing.T) {
	b := NewBus()
	var tests, others int
	Subscribe(b, func(testEvent) { tests++ })
	Subscribe(b, func(otherEvent) { others++ })

	Emit(b, testEvent{})
	Emit(b, testEvent{})
	Emit(b, otherEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	if tests != 2 || others != 1 {
		t.Errorf("tests=%d others=%d, want 2 and 1", tests, others)
	}
}

func TestMultipleHandlersSameType(t *testing.T) {
	b := NewBus()
	var a, c int
	Subscribe(b, func(testEvent) { a++ })
	Subscribe(b, func(testEvent) { c++ })

	Emit(b, testEvent{})
	b.SwapBuffers()
	b.DispatchAll()
	if a != 1 || c != 1 {
		t.Errorf("handlers fired %d/%d, want 1/1", a, c)
	}
}

func TestEmitDuringDispatchLandsNextCycle(t *testing.T) {
	b := NewBus()
	var depth int
	Subscribe(b, func(ev testEvent) {
		depth = ev.N
		if ev.N < 3 {
			Emit(b, testEvent{N: ev.N + 1})
		}
	})

	Emit(b, testEvent{N: 1})
	for i := 0; i < 5; i++ {
		b.SwapBuffers()
		b.DispatchAll()
	}
	if depth != 3 {
		t.Errorf("cascade depth = %d, want 3", depth)
	}
}
