package uart

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// Defaults match a plain 9600 8N1 line with 64-byte software buffers.
const (
	DefaultBaudRate     = 9600
	DefaultCharSize     = 8
	DefaultStopBits     = 1
	DefaultRxBufferSize = 64
	DefaultTxBufferSize = 64
)

// Config holds the configuration for a UART instance. BaudRate, CharSize,
// StopBits and Parity are forwarded verbatim to the port driver; the buffer
// sizes fix the capacity of the software RX/TX rings for the lifetime of the
// instance.
type Config struct {
	BaudRate     int
	CharSize     int
	StopBits     int
	Parity       Parity
	RxBufferSize int
	TxBufferSize int
}

// Option is a functional option for configuring a UART instance
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:     DefaultBaudRate,
		CharSize:     DefaultCharSize,
		StopBits:     DefaultStopBits,
		Parity:       ParityNone,
		RxBufferSize: DefaultRxBufferSize,
		TxBufferSize: DefaultTxBufferSize,
	}
}

// WithBaudRate sets the baud rate. A rate of zero selects DefaultBaudRate,
// mirroring hardware setups where an unset rate falls back to the standard one.
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate < 0 {
			return ErrInvalidBaudRate
		}
		if rate == 0 {
			rate = DefaultBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithCharSize sets the character size in bits (5, 6, 7, or 8)
func WithCharSize(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.CharSize = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParityOdd {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithRxBufferSize sets the receive ring capacity in bytes (1-65535)
func WithRxBufferSize(n int) Option {
	return func(c *Config) error {
		if n < 1 || n > 65535 {
			return ErrInvalidConfig
		}
		c.RxBufferSize = n
		return nil
	}
}

// WithTxBufferSize sets the transmit ring capacity in bytes (1-65535)
func WithTxBufferSize(n int) Option {
	return func(c *Config) error {
		if n < 1 || n > 65535 {
			return ErrInvalidConfig
		}
		c.TxBufferSize = n
		return nil
	}
}
