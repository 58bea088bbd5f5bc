package uart

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaudRate != 9600 {
		t.Errorf("Expected baud rate 9600, got %d", cfg.BaudRate)
	}
	if cfg.CharSize != 8 {
		t.Errorf("Expected char size 8, got %d", cfg.CharSize)
	}
	if cfg.StopBits != 1 {
		t.Errorf("Expected 1 stop bit, got %d", cfg.StopBits)
	}
	if cfg.Parity != ParityNone {
		t.Errorf("Expected no parity, got %v", cfg.Parity)
	}
	if cfg.RxBufferSize != 64 || cfg.TxBufferSize != 64 {
		t.Errorf("Expected 64-byte buffers, got rx=%d tx=%d", cfg.RxBufferSize, cfg.TxBufferSize)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr error
		check   func(Config) bool
	}{
		{
			name:  "valid baud rate",
			opt:   WithBaudRate(115200),
			check: func(c Config) bool { return c.BaudRate == 115200 },
		},
		{
			name:  "zero baud rate falls back to default",
			opt:   WithBaudRate(0),
			check: func(c Config) bool { return c.BaudRate == DefaultBaudRate },
		},
		{
			name:    "negative baud rate",
			opt:     WithBaudRate(-9600),
			wantErr: ErrInvalidBaudRate,
		},
		{
			name:  "char size 5",
			opt:   WithCharSize(5),
			check: func(c Config) bool { return c.CharSize == 5 },
		},
		{
			name:    "char size too small",
			opt:     WithCharSize(4),
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "char size too large",
			opt:     WithCharSize(9),
			wantErr: ErrInvalidConfig,
		},
		{
			name:  "two stop bits",
			opt:   WithStopBits(2),
			check: func(c Config) bool { return c.StopBits == 2 },
		},
		{
			name:    "invalid stop bits",
			opt:     WithStopBits(3),
			wantErr: ErrInvalidConfig,
		},
		{
			name:  "even parity",
			opt:   WithParity(ParityEven),
			check: func(c Config) bool { return c.Parity == ParityEven },
		},
		{
			name:  "odd parity",
			opt:   WithParity(ParityOdd),
			check: func(c Config) bool { return c.Parity == ParityOdd },
		},
		{
			name:    "invalid parity",
			opt:     WithParity(Parity(42)),
			wantErr: ErrInvalidConfig,
		},
		{
			name:  "receive buffer size",
			opt:   WithRxBufferSize(256),
			check: func(c Config) bool { return c.RxBufferSize == 256 },
		},
		{
			name:    "zero receive buffer",
			opt:     WithRxBufferSize(0),
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "oversized transmit buffer",
			opt:     WithTxBufferSize(1 << 20),
			wantErr: ErrInvalidConfig,
		},
		{
			name:  "transmit buffer size",
			opt:   WithTxBufferSize(1),
			check: func(c Config) bool { return c.TxBufferSize == 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := tt.opt(&cfg)
			if err != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Option did not apply, config = %+v", cfg)
			}
		})
	}
}
