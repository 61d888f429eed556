package core

import (
	"tinygo.org/x/drivers"
)

// txBufSize bounds the bytes written in one transaction
const txBufSize = 8

// TxBus adapts a transaction-style I2C bus (TinyGo machine.I2C, periph
// i2c.Bus, anything with Tx) to the byte-oriented TwoWireBus contract.
//
// Written bytes are buffered until Stop or a repeated start. A repeated start
// addressed for read issues the whole write+read transfer at once and
// prefetches ReadLen bytes, which ReadAck/ReadNak then hand out in order.
// Transfers issued by Stop report their result through Err.
type TxBus struct {
	dev drivers.I2C

	// ReadLen is the number of bytes prefetched per read transfer
	ReadLen int

	// Configure hook run by Init before the expanders are set up
	ConfigureFunc func() error

	addr    uint16
	open    bool
	reading bool

	w  [txBufSize]byte
	wn int

	r    [MaxPorts]byte
	rpos int

	err error
}

// NewTxBus wraps dev; readLen is the expander port count (2 for PCA9555)
func NewTxBus(dev drivers.I2C, readLen int) *TxBus {
	if readLen <= 0 || readLen > MaxPorts {
		readLen = MaxPorts
	}
	return &TxBus{dev: dev, ReadLen: readLen}
}

// Configure runs ConfigureFunc, if set
func (t *TxBus) Configure() error {
	if t.ConfigureFunc == nil {
		return nil
	}
	return t.ConfigureFunc()
}

func (t *TxBus) Start(address byte) error {
	addr := uint16(address >> 1)

	if address&I2CRead == 0 {
		// Start (or repeated start) for write: flush anything pending first
		if err := t.flush(); err != nil {
			t.reset()
			return err
		}
		t.addr = addr
		t.open = true
		t.reading = false
		return nil
	}

	// Read direction: combine with the buffered register command
	if !t.open || t.reading {
		return ErrBusState
	}
	if addr != t.addr {
		if err := t.flush(); err != nil {
			t.reset()
			return err
		}
		t.addr = addr
	}
	for i := range t.r {
		t.r[i] = 0xFF
	}
	err := t.dev.Tx(t.addr, t.w[:t.wn], t.r[:t.ReadLen])
	t.wn = 0
	t.rpos = 0
	if err != nil {
		t.reset()
		return err
	}
	t.reading = true
	return nil
}

func (t *TxBus) Write(b byte) error {
	if !t.open || t.reading {
		return ErrBusState
	}
	if t.wn == len(t.w) {
		return ErrTxOverflow
	}
	t.w[t.wn] = b
	t.wn++
	return nil
}

// ReadAck returns the next prefetched byte, 0xFF past the end
func (t *TxBus) ReadAck() byte {
	return t.next()
}

// ReadNak returns the next prefetched byte, 0xFF past the end
func (t *TxBus) ReadNak() byte {
	return t.next()
}

func (t *TxBus) next() byte {
	if !t.reading || t.rpos >= t.ReadLen {
		return 0xFF
	}
	b := t.r[t.rpos]
	t.rpos++
	return b
}

// Stop issues any buffered write and closes the transaction
func (t *TxBus) Stop() {
	t.err = t.flush()
	t.reset()
}

// Err reports the result of the transfer issued by the last Stop
func (t *TxBus) Err() error {
	return t.err
}

func (t *TxBus) flush() error {
	if !t.open || t.reading || t.wn == 0 {
		return nil
	}
	err := t.dev.Tx(t.addr, t.w[:t.wn], nil)
	t.wn = 0
	return err
}

func (t *TxBus) reset() {
	t.open = false
	t.reading = false
	t.wn = 0
	t.rpos = 0
}
