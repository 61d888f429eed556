package core

// RegisterFile is the in-memory shadow of one register group across the bank.
// It is scratch: refilled before every expander-wide operation.
type RegisterFile struct {
	data  [MaxChips][MaxPorts]byte
	chips uint8
	ports uint8
}

func newRegisterFile(l Layout) RegisterFile {
	return RegisterFile{chips: l.Chips, ports: l.Ports()}
}

// Fill sets every port of every chip to v
func (r *RegisterFile) Fill(v byte) {
	for chip := uint8(0); chip < r.chips; chip++ {
		for port := uint8(0); port < r.ports; port++ {
			r.data[chip][port] = v
		}
	}
}

// Chip returns the port bytes of one chip, backed by the register file
func (r *RegisterFile) Chip(chip uint8) []byte {
	return r.data[chip][:r.ports]
}

// Clear clears the bit at loc
func (r *RegisterFile) Clear(loc Location) {
	r.data[loc.Chip][loc.Port] &^= 1 << loc.Bit
}

// Test reports whether the bit at loc is set
func (r *RegisterFile) Test(loc Location) bool {
	return r.data[loc.Chip][loc.Port]&(1<<loc.Bit) != 0
}
