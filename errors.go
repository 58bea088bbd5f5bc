package uart

import "errors"

// Predefined error types for robust error handling
var (
	ErrInvalidBaudRate   = errors.New("invalid baud rate")
	ErrInvalidConfig     = errors.New("invalid UART configuration")
	ErrBufferEmpty       = errors.New("UART buffer empty")
	ErrMatchTableFull    = errors.New("pattern match table full")
	ErrNilMatchFunc      = errors.New("pattern match handler is nil")
	ErrDriverUnavailable = errors.New("port driver not available")
)
