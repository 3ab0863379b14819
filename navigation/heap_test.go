package navigation

import (
	"math/rand"
	"testing"
)

type testItem struct {
	f, h float64
	slot int
}

func (t *testItem) Better(o *testItem) bool {
	if t.f != o.f {
		return t.f < o.f
	}
	return t.h < o.h
}

func (t *testItem) HeapSlot() int        { return t.slot }
func (t *testItem) SetHeapSlot(slot int) { t.slot = slot }

func checkHeap(t *testing.T, h *Heap[*testItem]) {
	t.Helper()
	for i, it := range h.items {
		if it.slot != i {
			t.Fatalf("Expected item at %d to record slot %d, got %d", i, i, it.slot)
		}
		if i == 0 {
			continue
		}
		parent := h.items[(i-1)/2]
		if it.Better(parent) {
			t.Fatalf("Heap order violated at %d: child (%v,%v) better than parent (%v,%v)",
				i, it.f, it.h, parent.f, parent.h)
		}
	}
}

func TestHeap_PopOrder(t *testing.T) {
	h := NewHeap[*testItem](8)
	for _, f := range []float64{5, 3, 8, 1, 9, 2, 7} {
		h.Add(&testItem{f: f})
	}

	prev := -1.0
	for h.Len() > 0 {
		it, ok := h.Pop()
		if !ok {
			t.Fatal("Expected Pop to succeed on non-empty heap")
		}
		if it.f < prev {
			t.Errorf("Expected non-decreasing pops, got %v after %v", it.f, prev)
		}
		prev = it.f
	}

	if _, ok := h.Pop(); ok {
		t.Error("Expected Pop on empty heap to fail")
	}
}

func TestHeap_TieBreaksOnHeuristic(t *testing.T) {
	h := NewHeap[*testItem](4)
	far := &testItem{f: 10, h: 6}
	near := &testItem{f: 10, h: 2}
	h.Add(far)
	h.Add(near)

	it, _ := h.Pop()
	if it != near {
		t.Errorf("Expected equal-f tie to favor lower h, got h=%v", it.h)
	}
}

func TestHeap_Contains(t *testing.T) {
	h := NewHeap[*testItem](4)
	a := &testItem{f: 1}
	b := &testItem{f: 2}
	outsider := &testItem{f: 0, slot: 0}

	h.Add(a)
	h.Add(b)
	if !h.Contains(a) || !h.Contains(b) {
		t.Fatal("Expected added items to be contained")
	}
	if h.Contains(outsider) {
		t.Error("Expected item never added to be absent even with a matching slot")
	}

	h.Pop()
	if h.Contains(a) {
		t.Error("Expected popped item to be absent")
	}
	if !h.Contains(b) {
		t.Error("Expected remaining item to be contained")
	}
}

func TestHeap_UpdatePriority(t *testing.T) {
	h := NewHeap[*testItem](4)
	items := []*testItem{{f: 4}, {f: 5}, {f: 6}, {f: 7}}
	for _, it := range items {
		h.Add(it)
	}

	items[3].f = 1
	h.UpdatePriority(items[3])
	checkHeap(t, h)

	top, _ := h.Peek()
	if top != items[3] {
		t.Errorf("Expected improved item at root, got f=%v", top.f)
	}
}

func TestHeap_RandomInterleaving(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHeap[*testItem](64)
	var live []*testItem

	for step := 0; step < 5000; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			it := &testItem{f: float64(rng.Intn(100)), h: float64(rng.Intn(10))}
			h.Add(it)
			live = append(live, it)
		case op == 1:
			it, ok := h.Pop()
			if !ok {
				t.Fatal("Expected Pop to succeed while items are live")
			}
			for i, l := range live {
				if l == it {
					live = append(live[:i], live[i+1:]...)
					break
				}
			}
			for _, l := range live {
				if l.Better(it) {
					t.Fatalf("Popped (%v,%v) but (%v,%v) was better", it.f, it.h, l.f, l.h)
				}
			}
		default:
			it := live[rng.Intn(len(live))]
			it.f -= float64(rng.Intn(5) + 1)
			h.UpdatePriority(it)
		}
		checkHeap(t, h)
		if h.Len() != len(live) {
			t.Fatalf("Expected heap size %d, got %d", len(live), h.Len())
		}
	}
}

func TestHeap_Reset(t *testing.T) {
	h := NewHeap[*testItem](4)
	it := &testItem{f: 1}
	h.Add(it)
	h.Reset()

	if h.Len() != 0 {
		t.Errorf("Expected empty heap after reset, got %d", h.Len())
	}
	if h.Contains(it) {
		t.Error("Expected reset heap to drop membership")
	}
}
