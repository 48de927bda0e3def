package priority

import "testing"

func TestLockFree_ScansLowestFirst(t *testing.T) {
	lf := NewLockFree[string](3)

	if err := lf.Enqueue(2, "low"); err != nil {
		t.Fatal(err)
	}
	if err := lf.Enqueue(0, "high"); err != nil {
		t.Fatal(err)
	}
	if err := lf.Enqueue(1, "mid"); err != nil {
		t.Fatal(err)
	}

	want := []string{"high", "mid", "low"}
	for _, w := range want {
		v, ok := lf.Dequeue()
		if !ok || v != w {
			t.Fatalf("Dequeue() = (%q, %v), want (%q, true)", v, ok, w)
		}
	}
	if !lf.IsEmpty() {
		t.Fatal("expected priority queue to be empty")
	}
}

func TestLockFree_RangeCheck(t *testing.T) {
	lf := NewLockFree[int](2)
	if err := lf.Enqueue(-1, 1); err == nil {
		t.Fatal("expected error for negative level")
	}
	if err := lf.Enqueue(2, 1); err == nil {
		t.Fatal("expected error for out-of-range level")
	}
}
