//go:build linux

// Package hostport implements uart.PortDriver on top of a Linux tty device.
//
// The kernel does not deliver per-byte interrupts to user space, so the
// driver emulates them: a reader goroutine pulls one byte at a time off the
// file descriptor and raises a receive event for each, and a transmit
// goroutine raises ready-to-transmit events for as long as they are enabled.
// Masking an event class parks the corresponding goroutine, which gives the
// engine the same exclusion guarantees a hardware interrupt mask would.
package hostport

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/allbin/go-uart"
)

var (
	// ErrPortClosed is returned when operating on a closed port.
	ErrPortClosed = errors.New("serial port is closed")
	// ErrDeviceNotFound is returned when the device path is not a character device.
	ErrDeviceNotFound = errors.New("device not found")
)

// baudRates maps integer baud rates to their termios constants.
var baudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

// Port drives a tty character device. Create one with Open and hand it to
// uart.New; the event goroutines start on Open and stop on Close.
type Port struct {
	mu   sync.Mutex
	cond *sync.Cond

	// dispatchMu serializes handler invocations across both event
	// classes, as the driver contract requires.
	dispatchMu sync.Mutex

	fd     int
	device string
	closed bool

	rxReady func()
	txReady func() bool

	rxEnabled bool
	txEnabled bool
	rxBusy    bool
	txBusy    bool

	rxReg byte
}

var _ uart.PortDriver = (*Port)(nil)

// Open opens the tty at device and starts the event goroutines. Line
// settings are not touched until the transport engine calls Configure.
func Open(device string) (*Port, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", device, err)
	}

	// Poll-friendly read timeouts from the start, so the reader goroutine
	// never blocks indefinitely on a line still in canonical mode;
	// Configure applies the rest of the settings.
	if t, err := unix.IoctlGetTermios(fd, unix.TCGETS); err == nil {
		t.Lflag &^= unix.ICANON | unix.ECHO
		t.Cc[unix.VMIN] = 0
		t.Cc[unix.VTIME] = 1
		unix.IoctlSetTermios(fd, unix.TCSETS, t)
	}

	p := &Port{
		fd:     fd,
		device: device,
	}
	p.cond = sync.NewCond(&p.mu)
	go p.readLoop()
	go p.txLoop()
	return p, nil
}

// Device returns the path the port was opened with.
func (p *Port) Device() string {
	return p.device
}

// Configure applies the line settings with raw-mode termios.
func (p *Port) Configure(cfg uart.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}

	termios, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	// Raw mode: no input, output or line processing.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0/VTIME=1 turns the blocking read in readLoop into a 100ms
	// poll, so Close does not hang on an idle line.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 1

	baud, ok := baudRates[cfg.BaudRate]
	if !ok {
		return uart.ErrInvalidBaudRate
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	switch cfg.CharSize {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return uart.ErrInvalidConfig
	}

	if cfg.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch cfg.Parity {
	case uart.ParityEven:
		termios.Cflag |= unix.PARENB
	case uart.ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	}

	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

func (p *Port) SetEventHandlers(rxReady func(), txReady func() bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxReady = rxReady
	p.txReady = txReady
	p.cond.Broadcast()
}

func (p *Port) EnableRxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxEnabled = true
	p.cond.Broadcast()
}

// DisableRxEvents masks receive events and waits out any handler already
// running, so the caller holds exclusive access until the matching enable.
func (p *Port) DisableRxEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxEnabled = false
	for p.rxBusy {
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
	for p.txBusy {
		p.cond.Wait()
	}
}

// ReadRegister returns the latched receive byte.
func (p *Port) ReadRegister() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rxReg
}

// WriteRegister pushes one byte onto the wire. Write errors are swallowed
// here since the register interface has no error path; a broken line shows
// up on the next Configure or through Drain.
func (p *Port) WriteRegister(b byte) {
	p.mu.Lock()
	fd := p.fd
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	unix.Write(fd, []byte{b})
}

// Drain blocks until the kernel has transmitted everything written so far.
func (p *Port) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// Close stops the event goroutines and closes the device.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	p.closed = true
	p.cond.Broadcast()
	return unix.Close(p.fd)
}

// readLoop emulates the byte-received interrupt. Each byte read off the fd
// is latched and held until receive events are enabled, then delivered. The
// next read does not start until the handler returns, which models the
// single-byte hardware register.
func (p *Port) readLoop() {
	buf := make([]byte, 1)
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		fd := p.fd
		p.mu.Unlock()

		n, err := unix.Read(fd, buf)
		if err != nil || n == 0 {
			if err != nil && err != unix.EINTR && err != unix.EAGAIN {
				return
			}
			continue
		}

		p.mu.Lock()
		p.rxReg = buf[0]
		for !p.closed && (!p.rxEnabled || p.rxReady == nil) {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		handler := p.rxReady
		p.rxBusy = true
		p.mu.Unlock()
		p.dispatchMu.Lock()
		handler()
		p.dispatchMu.Unlock()
		p.mu.Lock()
		p.rxBusy = false
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// txLoop emulates the ready-to-transmit interrupt, firing for as long as
// transmit events stay enabled. The handler reports whether more data is
// pending; when it reports false the event class masks itself, matching
// what the engine expects from hardware.
func (p *Port) txLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for !p.closed && (!p.txEnabled || p.txReady == nil) {
			p.cond.Wait()
		}
		if p.closed {
			return
		}
		handler := p.txReady
		p.txBusy = true
		p.mu.Unlock()
		p.dispatchMu.Lock()
		more := handler()
		p.dispatchMu.Unlock()
		p.mu.Lock()
		p.txBusy = false
		if !more {
			p.txEnabled = false
		}
		p.cond.Broadcast()
	}
}
