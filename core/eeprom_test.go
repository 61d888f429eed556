package core

import (
	"errors"
	"testing"
)

func newTestEEPROMStore() (*EEPROMStore, *fakeEEPROM) {
	chip := newFakeEEPROM()
	s := NewEEPROMStore(chip)
	s.WriteCycle = 0
	return s, chip
}

func TestEEPROMStoreByte(t *testing.T) {
	s, chip := newTestEEPROMStore()

	if err := s.StoreByte(0x0123, 0x42); err != nil {
		t.Fatalf("StoreByte failed: %v", err)
	}
	if chip.mem[0x0123] != 0x42 {
		t.Errorf("Expected 0x42 at 0x123, got %#x", chip.mem[0x0123])
	}

	v, err := s.LoadByte(0x0123)
	if err != nil {
		t.Fatalf("LoadByte failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("Expected 0x42, got %#x", v)
	}
	if v, _ := s.LoadByte(0x0124); v != 0xFF {
		t.Errorf("Expected erased byte 0xff, got %#x", v)
	}
}

func TestEEPROMStoreFailure(t *testing.T) {
	s, chip := newTestEEPROMStore()
	chip.fail = true

	if err := s.StoreByte(0, 1); !errors.Is(err, errEEPROMNoAck) {
		t.Errorf("Expected no-ack error storing, got %v", err)
	}
	if _, err := s.LoadByte(0); !errors.Is(err, errEEPROMNoAck) {
		t.Errorf("Expected no-ack error loading, got %v", err)
	}
}

func TestEEPROMStoreMapping(t *testing.T) {
	s, _ := newTestEEPROMStore()

	cfg := DefaultConfig()
	cfg.StoreBase = 0x200
	m := NewMatrix(newSimBank(DefaultLayout), s, cfg)
	if err := m.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	var back Mapping
	if n := back.Load(s, 0x200); n != 0 {
		t.Fatalf("Expected stored mapping to load, got %d errors", n)
	}
	if back != DefaultMapping() {
		t.Error("Expected default mapping in EEPROM")
	}
}

func TestEEPROMStoreUnavailableAtBoot(t *testing.T) {
	s, chip := newTestEEPROMStore()
	chip.fail = true

	cfg := DefaultConfig()
	cfg.SeedDefaults = false
	m := NewMatrix(newSimBank(DefaultLayout), s, cfg)
	err := m.Init()
	if err == nil {
		t.Fatal("Expected store errors to be reported")
	}

	// Scanning still works on defaults
	if m.Mapping() != DefaultMapping() {
		t.Error("Expected defaults with no store")
	}
	if m.Faults() != 0 {
		t.Errorf("Expected no bus faults, got %d", m.Faults())
	}
}
