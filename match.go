package uart

import "sync/atomic"

// Pattern matching limits. MatchMax patterns of up to MaxSeqLen bytes each
// can be registered per UART instance; longer sequences are silently
// truncated to MaxSeqLen at registration.
const (
	MaxSeqLen = 8
	MatchMax  = 8
)

// MatchFunc is invoked by SweepMatches for every pattern observed in the
// receive stream since the previous sweep. It always runs in the caller's
// context, never in the asynchronous receive path.
type MatchFunc func(data any)

type matchEntry struct {
	seq      [MaxSeqLen]byte
	length   int
	progress int
	handler  MatchFunc
	data     any
}

// matcher tracks partial matches of all registered sequences against the
// live receive stream. inspectByte runs in the receive-event context; the
// triggered mask is the only state shared with the cooperative context, so
// it is atomic. Bit i of the mask corresponds to table slot i at the time
// the bit was set; slots are reused after deregistration.
type matcher struct {
	entries   [MatchMax]matchEntry
	n         int
	triggered atomic.Uint32
}

// register copies up to MaxSeqLen bytes of seq into the next free table
// slot. It reports ErrMatchTableFull when all slots are taken and
// ErrNilMatchFunc when fn is nil.
func (m *matcher) register(seq []byte, fn MatchFunc, data any) error {
	if fn == nil {
		return ErrNilMatchFunc
	}
	if m.n == MatchMax {
		return ErrMatchTableFull
	}

	e := &m.entries[m.n]
	e.length = copy(e.seq[:], seq)
	e.progress = 0
	e.handler = fn
	e.data = data
	m.n++

	return nil
}

// deregister removes the first entry whose stored sequence matches the
// leading bytes of seq. Comparison covers exactly the stored entry's length,
// so an argument longer than a truncated registration still matches it. A
// sequence that is not registered is a no-op.
func (m *matcher) deregister(seq []byte) {
	if seq == nil {
		return
	}

	found := -1
	for i := 0; i < m.n; i++ {
		e := &m.entries[i]
		if len(seq) < e.length {
			continue
		}
		equal := true
		for j := 0; j < e.length; j++ {
			if e.seq[j] != seq[j] {
				equal = false
				break
			}
		}
		if equal {
			found = i
			break
		}
	}
	if found < 0 {
		return
	}

	for i := found; i < m.n-1; i++ {
		m.entries[i] = m.entries[i+1]
	}
	m.entries[m.n-1] = matchEntry{}
	m.n--
}

// inspectByte advances the match progress of every registered entry against
// one received byte, in table order. At most one pattern completes per byte:
// the first entry to reach its full length sets its triggered bit and ends
// the scan, so on a tie the earlier registration wins. A mismatch while a
// partial match is in progress restarts at 1 when the byte equals the
// entry's first byte, which keeps overlapping occurrences matchable.
//
// Runs in the receive-event context; must stay short.
func (m *matcher) inspectByte(b byte) {
	if m.n == 0 {
		return
	}

	for i := 0; i < m.n; i++ {
		e := &m.entries[i]
		if e.length == 0 {
			continue
		}

		if b == e.seq[e.progress] {
			if e.progress++; e.progress == e.length {
				e.progress = 0
				m.triggered.Or(1 << uint(i))
				return
			}
		} else if e.progress > 0 {
			if b == e.seq[0] {
				e.progress = 1
			} else {
				e.progress = 0
			}
		}
	}
}

// sweep invokes the handler of every triggered entry, in table order, and
// clears its bit. Safe to call with nothing triggered.
func (m *matcher) sweep() {
	mask := m.triggered.Load()
	if mask == 0 {
		return
	}

	for i := 0; i < m.n; i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			continue
		}
		e := &m.entries[i]
		if e.handler != nil {
			e.handler(e.data)
		}
		m.triggered.And(^bit)
	}
}
