package models

import (
	"context"
	"sync"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/hostport"
	"github.com/allbin/go-uart/internal/tui/components"
)

// LineStatusMsg reports the outcome of opening the port.
type LineStatusMsg struct {
	Open  bool
	Error error
}

// UARTModel holds the shared state the TUI commands build on: the transport
// engine, its underlying port, and the raw data received so far.
type UARTModel struct {
	mu     sync.RWMutex
	engine *uart.UART
	port   *hostport.Port
	device string

	open    bool
	rawData []components.DataReceivedMsg
	err     error
	ready   bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewUARTModel(device string) *UARTModel {
	ctx, cancel := context.WithCancel(context.Background())
	return &UARTModel{
		device:  device,
		rawData: make([]components.DataReceivedMsg, 0),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *UARTModel) Engine() *uart.UART {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

func (m *UARTModel) SetLine(engine *uart.UART, port *hostport.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine = engine
	m.port = port
}

func (m *UARTModel) Device() string {
	return m.device
}

func (m *UARTModel) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

func (m *UARTModel) SetOpen(open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = open
}

func (m *UARTModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *UARTModel) IsReady() bool {
	return m.ready
}

func (m *UARTModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *UARTModel) RawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *UARTModel) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *UARTModel) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *UARTModel) Context() context.Context {
	return m.ctx
}

func (m *UARTModel) Cleanup() {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.port != nil {
		m.port.Close()
		m.port = nil
	}
	m.engine = nil
}
