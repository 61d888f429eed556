package core

import "errors"

// Direction bit appended to a 7-bit device address
const (
	I2CWrite byte = 0
	I2CRead  byte = 1
)

// DefaultExpanderAddress is the 7-bit address of chip 0; chip n sits at +n
const DefaultExpanderAddress = 0x20

var (
	ErrBusState   = errors.New("bus: operation out of sequence")
	ErrTxOverflow = errors.New("bus: transaction buffer full")
	ErrNoDevice   = errors.New("bus: no device acknowledged")
)

// TwoWireBus is the byte-oriented bus contract the expander layer drives.
// Platform code or an adapter (see TxBus) supplies the implementation.
type TwoWireBus interface {
	// Start issues a (repeated) start followed by the address byte
	// (7-bit address shifted left, direction in bit 0).
	Start(address byte) error

	// Write transmits one byte and checks for acknowledge
	Write(b byte) error

	// ReadAck reads one byte and acknowledges it (more bytes follow)
	ReadAck() byte

	// ReadNak reads one byte without acknowledge (last byte of the transfer)
	ReadNak() byte

	// Stop releases the bus. Always succeeds from the caller's view.
	Stop()
}

// BusConfigurer is implemented by buses that need initialization before use.
// Init calls it between loading the mapping and configuring the expanders.
type BusConfigurer interface {
	Configure() error
}

// BufferedBus is implemented by buses that only transfer on Stop.
// Err reports the outcome of the last transfer issued by Stop.
type BufferedBus interface {
	Err() error
}
