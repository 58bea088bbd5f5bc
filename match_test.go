package uart

import "testing"

func feed(m *matcher, s string) {
	for i := 0; i < len(s); i++ {
		m.inspectByte(s[i])
	}
}

func TestMatcherRegisterValidation(t *testing.T) {
	var m matcher

	if err := m.register([]byte("x"), nil, nil); err != ErrNilMatchFunc {
		t.Errorf("register with nil handler = %v, want ErrNilMatchFunc", err)
	}

	fn := func(any) {}
	for i := 0; i < MatchMax; i++ {
		if err := m.register([]byte{byte('a' + i)}, fn, nil); err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}
	if err := m.register([]byte("overflow"), fn, nil); err != ErrMatchTableFull {
		t.Errorf("register beyond MatchMax = %v, want ErrMatchTableFull", err)
	}
}

func TestMatcherSimpleTrigger(t *testing.T) {
	var m matcher
	hits := 0
	if err := m.register([]byte("cmd"), func(any) { hits++ }, nil); err != nil {
		t.Fatal(err)
	}

	feed(&m, "cmd")
	if m.triggered.Load() != 1 {
		t.Errorf("triggered mask = %b, want 1", m.triggered.Load())
	}

	m.sweep()
	if hits != 1 {
		t.Errorf("Expected 1 callback, got %d", hits)
	}
	if m.triggered.Load() != 0 {
		t.Errorf("triggered mask not cleared after sweep: %b", m.triggered.Load())
	}

	// Sweep with nothing triggered is a no-op
	m.sweep()
	if hits != 1 {
		t.Errorf("Sweep on empty mask invoked a callback, hits=%d", hits)
	}
}

func TestMatcherRestartOnMismatch(t *testing.T) {
	var m matcher
	hits := 0
	m.register([]byte("cmd"), func(any) { hits++ }, nil)

	// Mismatching byte that is not the first byte resets progress fully:
	// the "md" tail must not complete the pattern.
	feed(&m, "cmxmd")
	m.sweep()
	if hits != 0 {
		t.Errorf("Expected no trigger after hard mismatch, got %d", hits)
	}

	// A clean occurrence after the garbage still matches.
	feed(&m, "cmd")
	m.sweep()
	if hits != 1 {
		t.Errorf("Expected 1 trigger, got %d", hits)
	}

	// Mismatching byte equal to the first byte restarts the partial match:
	// after "cmc" progress sits at 1, so "md" completes it.
	feed(&m, "cmcmd")
	m.sweep()
	if hits != 2 {
		t.Errorf("Expected restart-on-first-byte to recover, hits=%d", hits)
	}
}

func TestMatcherRestartProgress(t *testing.T) {
	var m matcher
	m.register([]byte("AAB"), func(any) {}, nil)

	// Failing to extend "AA" on a third 'A' restarts at 1, not 0.
	feed(&m, "AAA")
	if got := m.entries[0].progress; got != 1 {
		t.Errorf("progress after AAA = %d, want 1", got)
	}
}

func TestMatcherTieBreak(t *testing.T) {
	var m matcher
	var fired []string
	m.register([]byte("ab"), func(any) { fired = append(fired, "ab") }, nil)
	m.register([]byte("abc"), func(any) { fired = append(fired, "abc") }, nil)

	feed(&m, "ab")
	if m.triggered.Load() != 1 {
		t.Errorf("triggered mask after \"ab\" = %b, want only bit 0", m.triggered.Load())
	}
	// The early exit starves "abc" of the 'b', leaving its progress at 1;
	// historically it still completes once the stream supplies "bc".
	feed(&m, "bc")
	m.sweep()
	if len(fired) != 2 || fired[0] != "ab" || fired[1] != "abc" {
		t.Errorf("fired = %v, want [ab abc]", fired)
	}
}

func TestMatcherTieBreakProgressKept(t *testing.T) {
	var m matcher
	var fired []string
	m.register([]byte("xyz"), func(any) { fired = append(fired, "xyz") }, nil)
	m.register([]byte("xy"), func(any) { fired = append(fired, "xy") }, nil)

	// "xyz" sits earlier in the table, so it sees the 'y' before "xy"
	// completes and ends the scan: its progress stays at 2, poised to
	// complete on the next 'z'.
	feed(&m, "xy")
	if m.triggered.Load() != 1<<1 {
		t.Errorf("triggered mask after \"xy\" = %b, want only bit 1", m.triggered.Load())
	}
	if got := m.entries[0].progress; got != 2 {
		t.Errorf("\"xyz\" progress after tie = %d, want 2", got)
	}

	feed(&m, "z")
	m.sweep()
	if len(fired) != 2 || fired[0] != "xyz" || fired[1] != "xy" {
		t.Errorf("fired = %v, want [xyz xy]", fired)
	}
}

func TestMatcherDeregister(t *testing.T) {
	var m matcher
	hits := map[string]int{}
	reg := func(s string) {
		if err := m.register([]byte(s), func(d any) { hits[d.(string)]++ }, s); err != nil {
			t.Fatal(err)
		}
	}
	reg("x")
	reg("y")
	reg("z")

	m.deregister([]byte("y"))
	if m.n != 2 {
		t.Fatalf("Expected 2 entries after deregister, got %d", m.n)
	}

	feed(&m, "xyz")
	m.sweep()
	if hits["x"] != 1 || hits["z"] != 1 || hits["y"] != 0 {
		t.Errorf("hits after deregister = %v, want x and z only", hits)
	}

	// The freed slot is reused by the next registration.
	reg("w")
	if m.n != 3 {
		t.Errorf("Expected 3 entries after re-registration, got %d", m.n)
	}
	feed(&m, "w")
	m.sweep()
	if hits["w"] != 1 {
		t.Errorf("Reused slot did not match, hits=%v", hits)
	}

	// Deregistering an unknown sequence is a no-op.
	m.deregister([]byte("missing"))
	if m.n != 3 {
		t.Errorf("Deregister of absent pattern changed count to %d", m.n)
	}
	m.deregister(nil)
	if m.n != 3 {
		t.Errorf("Deregister of nil changed count to %d", m.n)
	}
}

func TestMatcherDeregisterPrefixQuirk(t *testing.T) {
	var m matcher
	m.register([]byte("abc"), func(any) {}, nil)

	// Comparison covers only the stored length, so a longer argument whose
	// prefix matches still removes the entry.
	m.deregister([]byte("abcd"))
	if m.n != 0 {
		t.Errorf("Expected prefix-quirk removal, still %d entries", m.n)
	}
}

func TestMatcherTruncation(t *testing.T) {
	var m matcher
	hits := 0
	long := []byte("0123456789ab") // longer than MaxSeqLen
	m.register(long, func(any) { hits++ }, nil)

	if m.entries[0].length != MaxSeqLen {
		t.Fatalf("stored length = %d, want %d", m.entries[0].length, MaxSeqLen)
	}

	// Only the retained prefix is required to trigger.
	feed(&m, "01234567")
	m.sweep()
	if hits != 1 {
		t.Errorf("Expected truncated pattern to trigger, hits=%d", hits)
	}

	// The original long sequence still deregisters it.
	m.deregister(long)
	if m.n != 0 {
		t.Errorf("Deregister with untruncated sequence left %d entries", m.n)
	}
}

func TestMatcherSweepOrder(t *testing.T) {
	var m matcher
	var order []int
	m.register([]byte("aa"), func(d any) { order = append(order, d.(int)) }, 0)
	m.register([]byte("bb"), func(d any) { order = append(order, d.(int)) }, 1)

	// Trigger the second pattern first; sweep still runs in table order.
	feed(&m, "bb")
	feed(&m, "aa")
	m.sweep()
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Errorf("sweep order = %v, want [0 1]", order)
	}
}
