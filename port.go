package uart

// PortDriver is the capability surface the transport engine needs from a
// UART port. Implementations wrap real hardware (see the machineport
// package), a host operating system device (hostport) or a simulated line
// (simport).
//
// The driver owns the asynchronous context: it invokes the two event
// handlers installed with SetEventHandlers whenever the corresponding
// hardware condition holds and the event class is enabled. The engine relies
// on the following contract:
//
//   - Invocations of a given handler are serialized; a handler never runs
//     concurrently with itself.
//   - DisableRxEvents/DisableTxEvents do not return while an invocation of
//     the corresponding handler is in flight, and no further invocations
//     happen until the matching enable call. The engine uses these pairs as
//     minimal critical sections around ring index updates, so the masked
//     window must only ever span a few loads and stores.
//   - Enable and disable calls are idempotent mask writes, not balanced
//     lock pairs.
//   - A byte already latched by the hardware while receive events are
//     masked is delivered once events are re-enabled, not dropped.
//
// The transmit-ready handler returns whether more data is pending: the
// driver keeps raising transmit events while it returns true and masks them
// itself when it returns false. This is the one place the original
// disable-from-interrupt idiom is expressed as a return value instead of a
// call, so that drivers never have to cope with re-entrant masking.
type PortDriver interface {
	// Configure applies baud rate, character size, stop bits and parity.
	Configure(cfg Config) error

	// SetEventHandlers installs the engine's asynchronous entry points.
	// It is called exactly once, before Configure.
	SetEventHandlers(rxReady func(), txReady func() bool)

	// EnableRxEvents and DisableRxEvents gate byte-received notifications.
	EnableRxEvents()
	DisableRxEvents()

	// EnableTxEvents and DisableTxEvents gate ready-to-transmit
	// notifications.
	EnableTxEvents()
	DisableTxEvents()

	// ReadRegister fetches the most recently received byte from the
	// hardware. Only meaningful inside the byte-received handler.
	ReadRegister() byte

	// WriteRegister hands one byte to the hardware for transmission. Only
	// called from inside the transmit-ready handler.
	WriteRegister(b byte)
}
