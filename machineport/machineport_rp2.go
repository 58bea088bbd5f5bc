//go:build rp2040 || rp2350

package machineport

import (
	"device/rp"
	"runtime/interrupt"

	"machine"

	"github.com/allbin/go-uart"
)

// Port drives one PL011 instance. Use the package-level UART0 and UART1
// rather than constructing values directly.
type Port struct {
	Bus *rp.UART0_Type
	TX  machine.Pin
	RX  machine.Pin

	intr    interrupt.Interrupt
	rxReady func()
	txReady func() bool
}

var _ uart.PortDriver = (*Port)(nil)

var (
	UART0 = &_UART0
	UART1 = &_UART1

	_UART0 = Port{
		Bus: rp.UART0,
		TX:  machine.UART_TX_PIN,
		RX:  machine.UART_RX_PIN,
	}
	_UART1 = Port{
		Bus: rp.UART1,
		TX:  machine.NoPin,
		RX:  machine.NoPin,
	}
)

// Configure resets the peripheral and applies the line settings. Event
// delivery stays masked until the engine enables it.
func (p *Port) Configure(cfg uart.Config) error {
	p.resetAndUnreset()

	p.setBaudRate(uint32(cfg.BaudRate))
	if err := p.setFormat(uint8(cfg.CharSize), uint8(cfg.StopBits), cfg.Parity); err != nil {
		return err
	}

	p.Bus.UARTCR.SetBits(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)

	if p.TX != machine.NoPin {
		p.TX.Configure(machine.PinConfig{Mode: machine.PinUART})
	}
	if p.RX != machine.NoPin {
		p.RX.Configure(machine.PinConfig{Mode: machine.PinUART})
	}

	// Lazily install the IRQ handler, no package-level init().
	if p.intr == (interrupt.Interrupt{}) {
		irqNum := map[*rp.UART0_Type]int{
			rp.UART0: rp.IRQ_UART0_IRQ,
			rp.UART1: rp.IRQ_UART1_IRQ,
		}[p.Bus]
		p.intr = interrupt.New(irqNum, p.handleInterrupt)
		p.intr.SetPriority(0x80)
		p.intr.Enable()
	}

	return nil
}

func (p *Port) SetEventHandlers(rxReady func(), txReady func() bool) {
	p.rxReady = rxReady
	p.txReady = txReady
}

func (p *Port) EnableRxEvents() {
	p.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_RXIM | rp.UART0_UARTIMSC_RTIM)
}

func (p *Port) DisableRxEvents() {
	p.Bus.UARTIMSC.ClearBits(rp.UART0_UARTIMSC_RXIM | rp.UART0_UARTIMSC_RTIM)
}

func (p *Port) EnableTxEvents() {
	p.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_TXIM)
}

func (p *Port) DisableTxEvents() {
	p.Bus.UARTIMSC.ClearBits(rp.UART0_UARTIMSC_TXIM)
}

func (p *Port) ReadRegister() byte {
	return byte(p.Bus.UARTDR.Get() & 0xFF)
}

func (p *Port) WriteRegister(b byte) {
	p.Bus.UARTDR.Set(uint32(b))
}

func (p *Port) resetAndUnreset() {
	var mask uint32
	switch p.Bus {
	case rp.UART0:
		mask = rp.RESETS_RESET_UART0
	case rp.UART1:
		mask = rp.RESETS_RESET_UART1
	}
	rp.RESETS.RESET.SetBits(mask)
	rp.RESETS.RESET.ClearBits(mask)
	for !rp.RESETS.RESET_DONE.HasBits(mask) {
	}
}

func (p *Port) setBaudRate(br uint32) {
	if br == 0 {
		br = uart.DefaultBaudRate
	}
	div := 8 * machine.CPUFrequency() / br
	ibrd := div >> 7
	var fbrd uint32
	switch {
	case ibrd == 0:
		ibrd, fbrd = 1, 0
	case ibrd >= 65535:
		ibrd, fbrd = 65535, 0
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}
	p.Bus.UARTIBRD.Set(ibrd)
	p.Bus.UARTFBRD.Set(fbrd)
	p.Bus.UARTLCR_H.SetBits(0) // dummy write per PL011 quirk
}

func (p *Port) setFormat(databits, stopbits uint8, parity uart.Parity) error {
	if databits < 5 || databits > 8 || stopbits < 1 || stopbits > 2 {
		return uart.ErrInvalidConfig
	}
	var pen, pev uint8
	if parity != uart.ParityNone {
		pen = rp.UART0_UARTLCR_H_PEN
	}
	if parity == uart.ParityEven {
		pev = rp.UART0_UARTLCR_H_EPS
	}
	p.Bus.UARTLCR_H.SetBits(uint32(
		(databits-5)<<rp.UART0_UARTLCR_H_WLEN_Pos |
			(stopbits-1)<<rp.UART0_UARTLCR_H_STP2_Pos |
			pen | pev,
	))
	return nil
}

func (p *Port) handleInterrupt(interrupt.Interrupt) {
	// Each buffered byte raises one receive event; the handler pulls it
	// out of UARTDR through ReadRegister.
	for !p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE) {
		if p.rxReady == nil {
			break
		}
		p.rxReady()
	}

	if p.Bus.UARTMIS.HasBits(rp.UART0_UARTMIS_TXMIS) && p.txReady != nil {
		if !p.txReady() {
			p.DisableTxEvents()
		}
	}
}
