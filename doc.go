// Package uart provides an interrupt-driven, buffered UART transport engine
// with circular receive/transmit buffers and streaming pattern matching.
//
// The engine sits between application code and a hardware port driver. The
// driver delivers two asynchronous events: a byte-received event when data
// arrives on the line, and a ready-to-transmit event when the output
// register can accept another byte. The engine's handlers for those events
// move bytes between the hardware data register and fixed-size software
// rings, so the application never touches the hardware directly.
//
// # Basic Usage
//
// Create an engine over a port driver (here the Linux tty driver) with
// default configuration (9600 8N1, 64-byte buffers):
//
//	port, err := hostport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	u, err := uart.New(port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	u.Send([]byte("AT\r\n"))
//	b := u.RecvByte() // blocks until a byte arrives
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	u, err := uart.New(port,
//	    uart.WithBaudRate(115200),
//	    uart.WithParity(uart.ParityEven),
//	    uart.WithStopBits(2),
//	    uart.WithRxBufferSize(256),
//	)
//
// # Blocking and Non-Blocking I/O
//
// SendByte, Send, RecvByte, Recv and Peek block until the rings can satisfy
// them. TrySendByte, TryRecvByte and PeekByte never block; the receive-side
// Try variants return 0 both for an empty ring and for a genuine NUL byte,
// so callers who need to tell those apart should use ReadByte, which
// reports ErrBufferEmpty instead:
//
//	if b, err := u.ReadByte(); err == nil {
//	    process(b)
//	}
//
// When the receive ring is full, the newest incoming byte overwrites the
// oldest buffered one; the engine favors recent data over old.
//
// # Pattern Matching
//
// Byte sequences of up to eight bytes can be registered against the receive
// stream. Matching happens as bytes arrive, before they are buffered, and
// completed matches are recorded. The registered handlers run when the
// application calls SweepMatches:
//
//	u.RegisterMatch([]byte("OK\r\n"), func(data any) {
//	    fmt.Println("modem ready:", data)
//	}, "init")
//
//	// later, from the application's own goroutine
//	u.SweepMatches()
//
// # Port Drivers
//
// Three drivers ship with the module: hostport (Linux tty devices via
// termios), machineport (PL011 register access on RP2040/RP2350 under
// TinyGo), and simport (a fully simulated port for tests and demos). Any
// type implementing PortDriver works.
package uart
