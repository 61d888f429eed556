package core

import "errors"

// ErrStoreRange is returned for addresses past the end of a store
var ErrStoreRange = errors.New("store: address out of range")

// ConfigStore is byte-addressable non-volatile storage.
// No transactional guarantees; every byte is read and written on its own.
type ConfigStore interface {
	LoadByte(addr uint16) (byte, error)
	StoreByte(addr uint16, v byte) error
}

// MemStore is a RAM-backed ConfigStore, erased to 0xFF like a blank EEPROM
type MemStore struct {
	data   []byte
	Writes int // Number of StoreByte calls
}

// NewMemStore returns an erased store of the given size
func NewMemStore(size int) *MemStore {
	s := &MemStore{data: make([]byte, size)}
	for i := range s.data {
		s.data[i] = 0xFF
	}
	return s
}

func (s *MemStore) LoadByte(addr uint16) (byte, error) {
	if int(addr) >= len(s.data) {
		return 0, ErrStoreRange
	}
	return s.data[addr], nil
}

func (s *MemStore) StoreByte(addr uint16, v byte) error {
	if int(addr) >= len(s.data) {
		return ErrStoreRange
	}
	s.data[addr] = v
	s.Writes++
	return nil
}

// Bytes exposes the backing array (for inspection in tests and tools)
func (s *MemStore) Bytes() []byte {
	return s.data
}
