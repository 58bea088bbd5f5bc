package simport_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/simport"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestSendReachesWire(t *testing.T) {
	port := simport.New()
	defer port.Close()

	u, err := uart.New(port)
	if err != nil {
		t.Fatal(err)
	}

	u.Send([]byte("hello"))
	waitFor(t, func() bool { return bytes.Equal(port.Sent(), []byte("hello")) })

	u.FlushTx()
	if u.TxPending() != 0 {
		t.Errorf("TxPending after FlushTx = %d, want 0", u.TxPending())
	}
}

func TestFeedReachesApplication(t *testing.T) {
	port := simport.New()
	defer port.Close()

	u, err := uart.New(port)
	if err != nil {
		t.Fatal(err)
	}

	port.Feed([]byte("world")...)
	waitFor(t, func() bool { return u.Buffered() == 5 })

	got := make([]byte, 5)
	u.Recv(got)
	if !bytes.Equal(got, []byte("world")) {
		t.Errorf("Recv = %q, want \"world\"", got)
	}
}

func TestRecvByteBlocksUntilData(t *testing.T) {
	port := simport.New()
	defer port.Close()

	u, err := uart.New(port)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan byte, 1)
	go func() {
		done <- u.RecvByte()
	}()

	select {
	case b := <-done:
		t.Fatalf("RecvByte returned %d on an idle line", b)
	case <-time.After(20 * time.Millisecond):
	}

	port.Feed('z')
	select {
	case b := <-done:
		if b != 'z' {
			t.Errorf("RecvByte = %q, want 'z'", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RecvByte did not wake after Feed")
	}
}

func TestLoopback(t *testing.T) {
	port := simport.New(simport.WithLoopback())
	defer port.Close()

	u, err := uart.New(port, uart.WithBaudRate(115200))
	if err != nil {
		t.Fatal(err)
	}

	u.Send([]byte("ping"))
	waitFor(t, func() bool { return u.Buffered() == 4 })

	got := make([]byte, 4)
	u.Recv(got)
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("loopback Recv = %q, want \"ping\"", got)
	}
}

func TestMatcherOverTheWire(t *testing.T) {
	port := simport.New()
	defer port.Close()

	u, err := uart.New(port)
	if err != nil {
		t.Fatal(err)
	}

	hits := make(chan any, 1)
	if err := u.RegisterMatch([]byte("OK\r\n"), func(d any) { hits <- d }, "at-ok"); err != nil {
		t.Fatal(err)
	}

	port.Feed([]byte("AT\r\nOK\r\n")...)
	waitFor(t, func() bool { return u.Buffered() == 8 })

	u.SweepMatches()
	select {
	case d := <-hits:
		if d != "at-ok" {
			t.Errorf("match data = %v, want at-ok", d)
		}
	default:
		t.Fatal("pattern did not trigger")
	}
}

func TestConfigForwarded(t *testing.T) {
	port := simport.New()
	defer port.Close()

	_, err := uart.New(port,
		uart.WithBaudRate(57600),
		uart.WithParity(uart.ParityOdd),
		uart.WithStopBits(2),
	)
	if err != nil {
		t.Fatal(err)
	}

	cfg := port.Config()
	if cfg.BaudRate != 57600 || cfg.Parity != uart.ParityOdd || cfg.StopBits != 2 {
		t.Errorf("driver config = %+v", cfg)
	}
}
