package core

import (
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"
)

// DefaultWriteCycle is the AT24Cxx self-timed write cycle
const DefaultWriteCycle = 5 * time.Millisecond

// EEPROMStore is a ConfigStore on an AT24Cxx serial EEPROM
type EEPROMStore struct {
	dev *at24cx.Device

	// WriteCycle is waited after every byte write; the chip ignores the
	// bus while it programs
	WriteCycle time.Duration
}

// NewEEPROMStore returns a store on the AT24Cxx at its default address on bus
func NewEEPROMStore(bus drivers.I2C) *EEPROMStore {
	dev := at24cx.New(bus)
	return &EEPROMStore{dev: &dev, WriteCycle: DefaultWriteCycle}
}

func (s *EEPROMStore) LoadByte(addr uint16) (byte, error) {
	return s.dev.ReadByte(addr)
}

func (s *EEPROMStore) StoreByte(addr uint16, v byte) error {
	if err := s.dev.WriteByte(addr, v); err != nil {
		return err
	}
	if s.WriteCycle > 0 {
		time.Sleep(s.WriteCycle)
	}
	return nil
}
