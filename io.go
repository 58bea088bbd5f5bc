package uart

// Stream-style adaptation of the transport. Read is non-blocking and Write
// is blocking, matching the behaviour TinyGo drivers expect from a UART.

// Read copies up to len(p) buffered bytes into p without blocking. It
// returns (0, nil) when nothing is buffered; an idle line is not an EOF.
func (u *UART) Read(p []byte) (int, error) {
	n := u.Buffered()
	if n == 0 || len(p) == 0 {
		return 0, nil
	}
	if len(p) < n {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = u.RecvByte()
	}
	return n, nil
}

// ReadByte dequeues a single buffered byte. Unlike TryRecvByte it
// distinguishes a real NUL from an empty ring by returning ErrBufferEmpty.
func (u *UART) ReadByte() (byte, error) {
	if u.Buffered() == 0 {
		return 0, ErrBufferEmpty
	}
	return u.RecvByte(), nil
}

// Write enqueues all of p, blocking until the TX ring has accepted every
// byte. It does not wait for the line to drain; use FlushTx for that.
func (u *UART) Write(p []byte) (int, error) {
	u.Send(p)
	return len(p), nil
}

// WriteByte enqueues a single byte, blocking while the TX ring is full.
func (u *UART) WriteByte(b byte) error {
	u.SendByte(b)
	return nil
}

// WriteString enqueues s, expanding "\n" to "\r\n" for terminal-style
// consumers on the far end.
func (u *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.SendByte('\r')
		}
		u.SendByte(s[i])
	}
	return len(s), nil
}

// Newline sends a CRLF pair.
func (u *UART) Newline() {
	u.Send([]byte{'\r', '\n'})
}

// Buffered returns the number of bytes waiting in the RX ring.
func (u *UART) Buffered() int {
	return u.rx.len()
}

// TxPending returns the number of bytes still queued for transmission.
func (u *UART) TxPending() int {
	return u.tx.len()
}
