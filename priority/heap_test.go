package priority

import "testing"

func TestHeap_MinOrder(t *testing.T) {
	h := NewHeap[int](func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		h.Push(v)
	}

	var got []int
	for {
		v, ok := h.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}

	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHeap_FIFOWithinEqualPriority(t *testing.T) {
	type item struct {
		priority int
		order    int
	}
	h := NewHeap[item](func(a, b item) bool { return a.priority < b.priority })

	for i := 0; i < 5; i++ {
		h.Push(item{priority: 1, order: i})
	}

	for i := 0; i < 5; i++ {
		v, ok := h.Pop()
		if !ok || v.order != i {
			t.Fatalf("Pop() = %+v, want order %d", v, i)
		}
	}
}

func TestHeap_Remove(t *testing.T) {
	h := NewHeap[int](func(a, b int) bool { return a < b })
	h.Push(1)
	h.Push(2)
	h.Push(3)

	if !h.Remove(func(v int) bool { return v == 2 }) {
		t.Fatal("expected Remove to find 2")
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Remove(func(v int) bool { return v == 2 }) {
		t.Fatal("expected second Remove of 2 to fail")
	}
}
