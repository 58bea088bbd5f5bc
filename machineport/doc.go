// Package machineport implements uart.PortDriver on RP2040/RP2350 hardware.
//
// The driver programs the PL011 peripheral directly: Configure sets baud
// rate, frame format and pin muxing, the event mask methods write the RXIM
// and TXIM bits of UARTIMSC, and the register methods access UARTDR. The
// engine's event handlers run in interrupt context, so masking an event
// class through UARTIMSC gives the engine the exclusion it needs around its
// ring buffers.
//
// The implementation only builds for the rp2040 and rp2350 targets under
// TinyGo. On other platforms the package compiles to just this
// documentation; use the hostport or simport drivers there.
package machineport
