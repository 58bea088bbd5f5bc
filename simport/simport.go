// Package simport provides an in-memory implementation of uart.PortDriver.
//
// A Port models a serial line without any hardware behind it: bytes fed with
// Feed appear to the transport engine as receive events, and bytes the engine
// writes to the data register are captured for inspection (or echoed back
// when loopback is enabled). A single dispatch goroutine delivers events one
// at a time, so the serialization guarantees of the PortDriver contract hold
// by construction.
//
// The package exists for tests, examples and the loopback demo command, but
// it is a complete driver and can back a UART anywhere one is needed without
// a physical port.
package simport

import (
	"sync"

	"github.com/allbin/go-uart"
)

// Option configures a Port.
type Option func(*Port)

// WithLoopback wires the transmit side back into the receive side, so every
// byte the engine sends arrives back as received data.
func WithLoopback() Option {
	return func(p *Port) {
		p.loopback = true
	}
}

// Port is a simulated serial port. The zero value is not usable; call New.
type Port struct {
	mu   sync.Mutex
	cond *sync.Cond

	cfg     uart.Config
	rxReady func()
	txReady func() bool

	rxEnabled bool
	txEnabled bool
	busy      bool
	closed    bool

	pending []byte // far-end bytes not yet latched
	rxReg   byte
	sent    []byte

	loopback bool
}

var _ uart.PortDriver = (*Port)(nil)

// New creates a simulated port and starts its event dispatcher.
func New(opts ...Option) *Port {
	p := &Port{}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	go p.dispatch()
	return p
}

// Configure records the line settings. A simulated line accepts anything the
// engine's own validation let through.
func (p *Port) Configure(cfg uart.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	return nil
}

// Config returns the most recently applied line settings.
func (p *Port) Config() uart.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Port) SetEventHandlers(rxReady func(), txReady func() bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxReady = rxReady
	p.txReady = txReady
}

func (p *Port) EnableRxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxEnabled = true
	p.cond.Broadcast()
}

// DisableRxEvents masks receive events. It does not return while a handler
// is in flight, so after it returns the caller owns the engine's shared
// state until the matching enable.
func (p *Port) DisableRxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxEnabled = false
	for p.busy {
		p.cond.Wait()
	}
}

func (p *Port) EnableTxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txEnabled = true
	p.cond.Broadcast()
}

func (p *Port) DisableTxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txEnabled = false
	for p.busy {
		p.cond.Wait()
	}
}

// ReadRegister returns the latched receive byte.
func (p *Port) ReadRegister() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rxReg
}

// WriteRegister captures one transmitted byte. With loopback enabled the byte
// is also queued on the receive side.
func (p *Port) WriteRegister(b byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, b)
	if p.loopback {
		p.pending = append(p.pending, b)
		p.cond.Broadcast()
	}
}

// Feed queues bytes as if the far end had transmitted them. Each byte is
// latched and delivered as its own receive event.
func (p *Port) Feed(data ...byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, data...)
	p.cond.Broadcast()
}

// Sent returns a copy of every byte written to the data register so far.
func (p *Port) Sent() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.sent))
	copy(out, p.sent)
	return out
}

// Close stops the dispatcher. The port must not be used afterwards.
func (p *Port) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
}

func (p *Port) dispatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for !p.closed && !p.deliverable() {
			p.cond.Wait()
		}
		if p.closed {
			return
		}
		switch {
		case p.rxEnabled && len(p.pending) > 0 && p.rxReady != nil:
			p.rxReg = p.pending[0]
			p.pending = p.pending[1:]
			handler := p.rxReady
			p.busy = true
			p.mu.Unlock()
			handler()
			p.mu.Lock()
			p.busy = false
			p.cond.Broadcast()
		case p.txEnabled && p.txReady != nil:
			handler := p.txReady
			p.busy = true
			p.mu.Unlock()
			more := handler()
			p.mu.Lock()
			p.busy = false
			if !more {
				p.txEnabled = false
			}
			p.cond.Broadcast()
		}
	}
}

// deliverable reports whether an event can fire now. Callers hold p.mu.
func (p *Port) deliverable() bool {
	if p.rxEnabled && len(p.pending) > 0 && p.rxReady != nil {
		return true
	}
	return p.txEnabled && p.txReady != nil
}
