package uart

import "sync/atomic"

// ring is a fixed-capacity FIFO byte buffer with wraparound indices.
//
// head is the next write position and is touched only by the producer side;
// tail is the next read position and is touched only by the consumer side
// (forcePush is the one exception: on overflow it advances tail to discard
// the oldest byte). count is read concurrently by the blocking waits in the
// transport engine, so it is atomic; every other field access is serialized
// by the engine's event-masking critical sections.
type ring struct {
	buf   []byte
	head  int
	tail  int
	count atomic.Int32
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]byte, capacity)}
}

// cap returns the total capacity of the ring in bytes.
func (r *ring) cap() int {
	return len(r.buf)
}

// len returns the number of buffered bytes.
func (r *ring) len() int {
	return int(r.count.Load())
}

// tryPush appends one byte. It returns false without mutation when the ring
// is full.
func (r *ring) tryPush(b byte) bool {
	if r.len() == len(r.buf) {
		return false
	}
	r.buf[r.head] = b
	if r.head++; r.head == len(r.buf) {
		r.head = 0
	}
	r.count.Add(1)
	return true
}

// forcePush appends one byte unconditionally. When the ring is full the
// oldest byte is overwritten: tail advances past it and count stays capped
// at capacity. This is the receive-event path, which favours fresh line data
// over retention when the consumer falls behind.
func (r *ring) forcePush(b byte) {
	full := r.len() == len(r.buf)
	r.buf[r.head] = b
	if r.head++; r.head == len(r.buf) {
		r.head = 0
	}
	if full {
		if r.tail++; r.tail == len(r.buf) {
			r.tail = 0
		}
		return
	}
	r.count.Add(1)
}

// tryPop removes and returns the oldest byte. It returns (0, false) without
// mutation when the ring is empty.
func (r *ring) tryPop() (byte, bool) {
	if r.len() == 0 {
		return 0, false
	}
	b := r.buf[r.tail]
	if r.tail++; r.tail == len(r.buf) {
		r.tail = 0
	}
	r.count.Add(-1)
	return b, true
}

// peek copies up to len(dst) bytes starting at tail into dst without
// consuming them. The caller is responsible for ensuring enough bytes are
// buffered; peek copies at most len() bytes and returns the number copied.
func (r *ring) peek(dst []byte) int {
	n := len(dst)
	if avail := r.len(); n > avail {
		n = avail
	}
	pos := r.tail
	for i := 0; i < n; i++ {
		dst[i] = r.buf[pos]
		if pos++; pos == len(r.buf) {
			pos = 0
		}
	}
	return n
}

// first returns the oldest buffered byte without consuming it. The caller
// must ensure the ring is non-empty.
func (r *ring) first() byte {
	return r.buf[r.tail]
}

// reset drops all buffered bytes and rewinds both indices.
func (r *ring) reset() {
	r.head = 0
	r.tail = 0
	r.count.Store(0)
}
