package uart

import (
	"runtime"

	"tinygo.org/x/drivers"
)

// UART is a buffered serial transport over a PortDriver. Application code
// enqueues and dequeues bytes through the methods below; the driver's
// asynchronous events move one byte at a time between the software rings and
// the hardware, in strict FIFO order in both directions.
//
// A UART is meant to be used from a single application goroutine; the only
// concurrency it is designed for is between that goroutine and the driver's
// event context.
type UART struct {
	drv   PortDriver
	cfg   Config
	rx    *ring
	tx    *ring
	match matcher
}

// The engine satisfies the TinyGo driver UART contract, so it can be handed
// directly to drivers that expect one.
var _ drivers.UART = (*UART)(nil)

// New binds a transport engine to drv, applies the configuration, flushes
// both rings and enables receive events. A zero baud rate selects
// DefaultBaudRate.
func New(drv PortDriver, opts ...Option) (*UART, error) {
	if drv == nil {
		return nil, ErrDriverUnavailable
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	u := &UART{
		drv: drv,
		cfg: cfg,
		rx:  newRing(cfg.RxBufferSize),
		tx:  newRing(cfg.TxBufferSize),
	}

	drv.SetEventHandlers(u.handleRxReady, u.handleTxReady)
	if err := drv.Configure(cfg); err != nil {
		return nil, err
	}

	u.rx.reset()
	u.tx.reset()
	drv.EnableRxEvents()

	return u, nil
}

// Config returns the configuration the instance was created with.
func (u *UART) Config() Config {
	return u.cfg
}

// Configure reapplies the line settings, optionally with a new baud rate.
// It exists to satisfy the TinyGo driver UART contract; Go code should set
// the baud rate through WithBaudRate at construction instead.
func (u *UART) Configure(config drivers.UARTConfig) error {
	if config.BaudRate != 0 {
		u.cfg.BaudRate = int(config.BaudRate)
	}
	return u.drv.Configure(u.cfg)
}

// SendByte enqueues one byte for transmission, spinning while the TX ring is
// full, then makes sure transmit events are enabled so the byte eventually
// reaches the wire. It can spin indefinitely if the hardware is stalled.
func (u *UART) SendByte(b byte) {
	for u.tx.len() == u.tx.cap() {
		runtime.Gosched()
	}

	u.drv.DisableTxEvents()
	u.tx.tryPush(b)
	u.drv.EnableTxEvents()
}

// TrySendByte enqueues one byte without blocking. It returns false and
// leaves the ring untouched when the TX ring is full.
func (u *UART) TrySendByte(b byte) bool {
	if u.tx.len() == u.tx.cap() {
		return false
	}

	u.drv.DisableTxEvents()
	ok := u.tx.tryPush(b)
	u.drv.EnableTxEvents()
	return ok
}

// Send enqueues every byte of p, blocking as needed.
func (u *UART) Send(p []byte) {
	for _, b := range p {
		u.SendByte(b)
	}
}

// RecvByte dequeues one byte, spinning until at least one byte has been
// received.
func (u *UART) RecvByte() byte {
	for u.rx.len() == 0 {
		runtime.Gosched()
	}

	u.drv.DisableRxEvents()
	b, _ := u.rx.tryPop()
	u.drv.EnableRxEvents()
	return b
}

// TryRecvByte dequeues one byte without blocking. It returns 0 when the RX
// ring is empty; a genuine NUL byte is indistinguishable from that sentinel,
// so callers that care must check Buffered or use Peek first. ReadByte
// reports emptiness explicitly instead.
func (u *UART) TryRecvByte() byte {
	if u.rx.len() == 0 {
		return 0
	}

	u.drv.DisableRxEvents()
	b, _ := u.rx.tryPop()
	u.drv.EnableRxEvents()
	return b
}

// PeekByte returns the oldest pending byte without consuming it, or 0 when
// the RX ring is empty (same sentinel caveat as TryRecvByte).
func (u *UART) PeekByte() byte {
	if u.rx.len() == 0 {
		return 0
	}

	u.drv.DisableRxEvents()
	b := u.rx.first()
	u.drv.EnableRxEvents()
	return b
}

// Recv fills p completely, blocking until len(p) bytes have been received,
// and returns len(p).
func (u *UART) Recv(p []byte) int {
	for i := range p {
		p[i] = u.RecvByte()
	}
	return len(p)
}

// Peek copies len(p) pending bytes into p without consuming them, spinning
// until that many are buffered. Requests beyond the ring capacity are
// clamped to it. Returns the number of bytes copied.
func (u *UART) Peek(p []byte) int {
	n := len(p)
	if n > u.rx.cap() {
		n = u.rx.cap()
	}

	for u.rx.len() < n {
		runtime.Gosched()
	}

	u.drv.DisableRxEvents()
	copied := u.rx.peek(p[:n])
	u.drv.EnableRxEvents()
	return copied
}

// FlushRx empties the RX ring. Bytes already latched by the hardware are not
// affected: anything the line delivers after the reset is buffered as usual.
func (u *UART) FlushRx() {
	u.drv.DisableRxEvents()
	u.rx.reset()
	u.drv.EnableRxEvents()
}

// FlushTx waits until every enqueued byte has been handed to the hardware,
// then rewinds the TX ring. Unlike FlushRx this is a true drain.
func (u *UART) FlushTx() {
	for u.tx.len() > 0 {
		runtime.Gosched()
	}

	u.drv.DisableTxEvents()
	u.tx.reset()
	u.drv.EnableTxEvents()
}

// RegisterMatch watches the receive stream for seq and arranges for fn(data)
// to be called by the next SweepMatches after a complete occurrence. seq is
// truncated to MaxSeqLen bytes. At most MatchMax patterns can be registered.
func (u *UART) RegisterMatch(seq []byte, fn MatchFunc, data any) error {
	return u.match.register(seq, fn, data)
}

// DeregisterMatch removes the first registered pattern matching seq, if any.
func (u *UART) DeregisterMatch(seq []byte) {
	u.match.deregister(seq)
}

// SweepMatches fires the callback of every pattern observed since the last
// sweep and clears its trigger. Call it from the application's main loop;
// callbacks never run in the receive-event context.
func (u *UART) SweepMatches() {
	u.match.sweep()
}

// handleRxReady is the byte-received entry point invoked by the driver. The
// byte is inspected for pattern matches before it is buffered, so the
// matcher sees every byte exactly once in arrival order, including bytes a
// later FlushRx may discard. The push never rejects: when the ring is full
// the oldest byte is overwritten.
func (u *UART) handleRxReady() {
	b := u.drv.ReadRegister()
	u.match.inspectByte(b)
	u.rx.forcePush(b)
}

// handleTxReady is the ready-to-transmit entry point invoked by the driver.
// It moves at most one byte to the hardware per invocation and reports
// whether more are pending; the driver masks transmit events when it returns
// false.
func (u *UART) handleTxReady() bool {
	b, ok := u.tx.tryPop()
	if !ok {
		return false
	}
	u.drv.WriteRegister(b)
	return u.tx.len() > 0
}
