package uart

import (
	"bytes"
	"testing"
)

func TestRingRoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 8, 64} {
		r := newRing(64)
		for i := 0; i < n; i++ {
			if !r.tryPush(byte(i)) {
				t.Fatalf("tryPush(%d) failed with %d/%d used", i, r.len(), r.cap())
			}
		}
		if r.len() != n {
			t.Errorf("Expected count %d, got %d", n, r.len())
		}
		for i := 0; i < n; i++ {
			b, ok := r.tryPop()
			if !ok {
				t.Fatalf("tryPop %d failed", i)
			}
			if b != byte(i) {
				t.Errorf("Expected byte %d, got %d", i, b)
			}
		}
		if r.len() != 0 {
			t.Errorf("Expected empty ring, got count %d", r.len())
		}
	}
}

func TestRingBoundaries(t *testing.T) {
	r := newRing(4)

	// Empty pops and peeks leave state unchanged
	if b, ok := r.tryPop(); ok || b != 0 {
		t.Errorf("tryPop on empty ring = (%d, %v), want (0, false)", b, ok)
	}
	if n := r.peek(make([]byte, 2)); n != 0 {
		t.Errorf("peek on empty ring copied %d bytes, want 0", n)
	}

	for i := 0; i < 4; i++ {
		if !r.tryPush(byte('a' + i)) {
			t.Fatalf("tryPush %d failed", i)
		}
	}

	// Full push is rejected without mutation
	if r.tryPush('x') {
		t.Error("tryPush on full ring succeeded")
	}
	if r.len() != 4 {
		t.Errorf("Expected count 4 after rejected push, got %d", r.len())
	}
	if b, _ := r.tryPop(); b != 'a' {
		t.Errorf("Expected 'a' after rejected push, got %q", b)
	}
}

func TestRingWraparound(t *testing.T) {
	r := newRing(4)

	// Walk the indices past the end a few times
	for round := 0; round < 3; round++ {
		for i := 0; i < 3; i++ {
			r.tryPush(byte(round*10 + i))
		}
		for i := 0; i < 3; i++ {
			b, ok := r.tryPop()
			if !ok || b != byte(round*10+i) {
				t.Fatalf("round %d: got (%d, %v), want (%d, true)", round, b, ok, round*10+i)
			}
		}
	}
}

func TestRingForcePushOverwrite(t *testing.T) {
	r := newRing(4)
	for _, b := range []byte{1, 2, 3, 4, 5} {
		r.forcePush(b)
	}

	if r.len() != 4 {
		t.Errorf("Expected count capped at 4, got %d", r.len())
	}

	got := make([]byte, 4)
	for i := range got {
		got[i], _ = r.tryPop()
	}
	if !bytes.Equal(got, []byte{2, 3, 4, 5}) {
		t.Errorf("Expected {2 3 4 5} after overwrite, got %v", got)
	}
}

func TestRingPeekNonDestructive(t *testing.T) {
	r := newRing(8)
	r.tryPush('A')
	r.tryPush('B')

	dst := make([]byte, 2)
	if n := r.peek(dst); n != 2 {
		t.Fatalf("peek copied %d bytes, want 2", n)
	}
	if !bytes.Equal(dst, []byte("AB")) {
		t.Errorf("Expected peek \"AB\", got %q", dst)
	}
	if r.len() != 2 {
		t.Errorf("Expected count 2 after peek, got %d", r.len())
	}

	// A second peek sees the same bytes
	if n := r.peek(dst); n != 2 || !bytes.Equal(dst, []byte("AB")) {
		t.Errorf("Second peek = %q (%d bytes), want \"AB\"", dst[:n], n)
	}
}

func TestRingResetIdempotent(t *testing.T) {
	r := newRing(4)
	r.tryPush(1)
	r.tryPush(2)

	r.reset()
	if r.len() != 0 || r.head != 0 || r.tail != 0 {
		t.Errorf("After reset: count=%d head=%d tail=%d, want all zero", r.len(), r.head, r.tail)
	}

	r.reset()
	if r.len() != 0 || r.head != 0 || r.tail != 0 {
		t.Errorf("After second reset: count=%d head=%d tail=%d, want all zero", r.len(), r.head, r.tail)
	}
}

func TestRingCountStaysBounded(t *testing.T) {
	r := newRing(4)

	// Scripted interleave of pushes and pops; count must stay in [0, 4].
	script := "pppxpxxppppppxxxxx"
	for i, op := range script {
		switch op {
		case 'p':
			r.tryPush(byte(i))
		case 'x':
			r.tryPop()
		}
		if c := r.len(); c < 0 || c > 4 {
			t.Fatalf("step %d: count %d out of bounds", i, c)
		}
	}
}
