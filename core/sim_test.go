package core

import "errors"

// simChip is the register file of one simulated PCA955x chip, indexed by
// command byte
type simChip struct {
	regs [8]byte
}

// simBank simulates a bank of expanders wired as a key matrix, seen through
// the byte-level TwoWireBus contract. Keys connect a row pin to a column pin;
// a column input reads low while its key is pressed and the row pin drives low.
type simBank struct {
	layout  Layout
	base    uint8
	chips   []simChip
	pressed map[[2]PinIndex]bool

	// Chips that do not acknowledge their address
	nack map[uint8]bool

	cur       int
	reading   bool
	first     bool
	ptr       byte
	ops       []string
	starts    int
	stops     int
	configure int
}

func newSimBank(layout Layout) *simBank {
	b := &simBank{
		layout:  layout,
		base:    DefaultExpanderAddress,
		chips:   make([]simChip, layout.Chips),
		pressed: make(map[[2]PinIndex]bool),
		nack:    make(map[uint8]bool),
		cur:     -1,
	}
	ports := int(layout.Ports())
	for i := range b.chips {
		// Power-on state: outputs high, no inversion, all inputs
		for p := 0; p < ports; p++ {
			b.chips[i].regs[1*ports+p] = 0xFF
			b.chips[i].regs[2*ports+p] = 0x00
			b.chips[i].regs[3*ports+p] = 0xFF
		}
	}
	return b
}

func (b *simBank) press(row, col PinIndex)   { b.pressed[[2]PinIndex{row, col}] = true }
func (b *simBank) release(row, col PinIndex) { delete(b.pressed, [2]PinIndex{row, col}) }

// reg returns register group g (0 input, 1 output, 2 inversion, 3 config)
// of port p of chip c
func (b *simBank) reg(c uint8, g, p int) byte {
	ports := int(b.layout.Ports())
	if g == 0 {
		return b.input(c, p)
	}
	return b.chips[c].regs[g*ports+p]
}

func (b *simBank) bit(loc Location, g int) bool {
	return b.reg(loc.Chip, g, int(loc.Port))&(1<<loc.Bit) != 0
}

// level is the electrical level on pin
func (b *simBank) level(pin PinIndex) bool {
	loc, _ := b.layout.Decompose(pin)
	if !b.bit(loc, 3) {
		// Output: the latch drives the pin
		return b.bit(loc, 1)
	}
	for key := range b.pressed {
		if key[1] != pin {
			continue
		}
		rowLoc, ok := b.layout.Decompose(key[0])
		if ok && !b.bit(rowLoc, 3) && !b.bit(rowLoc, 1) {
			return false
		}
	}
	return true // Pulled up
}

func (b *simBank) input(c uint8, p int) byte {
	ports := int(b.layout.Ports())
	var v byte
	for bit := 0; bit < 8; bit++ {
		pin := PinIndex(int(c)*int(b.layout.PinsPerChip()) + p*8 + bit)
		if b.level(pin) {
			v |= 1 << uint(bit)
		}
	}
	return v ^ b.chips[c].regs[2*ports+p]
}

func (b *simBank) advance() {
	if b.layout.Ports() == 2 {
		b.ptr ^= 1
	}
}

func (b *simBank) Start(address byte) error {
	b.starts++
	b.ops = append(b.ops, "start "+hex8(address))
	chip := int(address>>1) - int(b.base)
	if chip < 0 || chip >= len(b.chips) || b.nack[uint8(chip)] {
		b.cur = -1
		return ErrNoDevice
	}
	b.cur = chip
	b.reading = address&I2CRead != 0
	if !b.reading {
		b.first = true
	}
	return nil
}

func (b *simBank) Write(v byte) error {
	b.ops = append(b.ops, "write "+hex8(v))
	if b.cur < 0 || b.reading {
		return ErrNoDevice
	}
	if b.first {
		b.ptr = v
		b.first = false
		return nil
	}
	ports := int(b.layout.Ports())
	if int(b.ptr) >= ports && int(b.ptr) < 4*ports {
		b.chips[b.cur].regs[b.ptr] = v
	}
	b.advance()
	return nil
}

func (b *simBank) read() byte {
	if b.cur < 0 || !b.reading {
		return 0xFF
	}
	ports := int(b.layout.Ports())
	v := b.reg(uint8(b.cur), int(b.ptr)/ports, int(b.ptr)%ports)
	b.advance()
	return v
}

func (b *simBank) ReadAck() byte {
	b.ops = append(b.ops, "ack")
	return b.read()
}

func (b *simBank) ReadNak() byte {
	b.ops = append(b.ops, "nak")
	return b.read()
}

func (b *simBank) Stop() {
	b.ops = append(b.ops, "stop")
	b.stops++
	b.cur = -1
	b.reading = false
}

func (b *simBank) Configure() error {
	b.ops = append(b.ops, "configure")
	b.configure++
	return nil
}

// regsOf returns the port bytes of group g of chip c
func (b *simBank) regsOf(c uint8, g int) []byte {
	out := make([]byte, b.layout.Ports())
	for p := range out {
		out[p] = b.reg(c, g, p)
	}
	return out
}

// simTx exposes a simBank through the Tx-style drivers.I2C interface
type simTx struct {
	bank *simBank
	txs  int
}

func (s *simTx) Tx(addr uint16, w, r []byte) error {
	s.txs++
	b := s.bank
	defer b.Stop()
	if len(w) > 0 {
		if err := b.Start(byte(addr<<1) | I2CWrite); err != nil {
			return err
		}
		for _, v := range w {
			if err := b.Write(v); err != nil {
				return err
			}
		}
	}
	if len(r) > 0 {
		if err := b.Start(byte(addr<<1) | I2CRead); err != nil {
			return err
		}
		for i := range r {
			r[i] = b.read()
		}
	}
	return nil
}

var errEEPROMNoAck = errors.New("eeprom: no ack")

// fakeEEPROM emulates an AT24Cxx: two address bytes, then data
type fakeEEPROM struct {
	mem  [4096]byte
	fail bool
	txs  int
}

func newFakeEEPROM() *fakeEEPROM {
	e := &fakeEEPROM{}
	for i := range e.mem {
		e.mem[i] = 0xFF
	}
	return e
}

func (e *fakeEEPROM) Tx(addr uint16, w, r []byte) error {
	e.txs++
	if e.fail || len(w) < 2 {
		return errEEPROMNoAck
	}
	a := int(w[0])<<8 | int(w[1])
	if len(r) > 0 {
		copy(r, e.mem[a:])
		return nil
	}
	copy(e.mem[a:], w[2:])
	return nil
}
