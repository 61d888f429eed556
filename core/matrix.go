// Matrix scan primitives
// Row selection, row deselection and column sampling on top of the expander
// register I/O and the mapping table. Expander outputs are active low.
package core

import "errors"

// MatrixRow is a column bitmask: bit c set means logical column c is active
type MatrixRow uint32

// ErrRowRange is returned when a logical row index is past the table
var ErrRowRange = errors.New("matrix: row index out of range")

// Config holds the board description for a Matrix
type Config struct {
	Layout Layout

	// Address is the 7-bit I2C address of chip 0
	Address uint8

	// StoreBase is the first store address of the persisted mapping
	StoreBase uint16

	// SeedDefaults persists the compiled-in defaults at every boot before
	// loading, giving a known baseline while bringing up a board
	SeedDefaults bool

	// Exclusive runs every bus transaction with interrupts disabled
	Exclusive bool

	// Defaults is the mapping restored when the stored one is invalid
	Defaults Mapping
}

// DefaultConfig returns the configuration of the reference board
func DefaultConfig() Config {
	return Config{
		Layout:       DefaultLayout,
		Address:      DefaultExpanderAddress,
		StoreBase:    0,
		SeedDefaults: true,
		Defaults:     DefaultMapping(),
	}
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	cfg.Layout = cfg.Layout.clamp()
	if cfg.Address == 0 {
		cfg.Address = DefaultExpanderAddress
	}
	if cfg.Defaults.RowCount == 0 && cfg.Defaults.ColCount == 0 {
		cfg.Defaults = DefaultMapping()
	}
}

// Matrix owns the expander bank, the mapping and its backing store
type Matrix struct {
	cfg     Config
	exp     *Expanders
	bus     TwoWireBus
	store   ConfigStore
	mapping Mapping
}

// NewMatrix creates a matrix over bus and store. The live mapping starts as
// cfg.Defaults until Init or LoadMapping replaces it.
func NewMatrix(bus TwoWireBus, store ConfigStore, cfg Config) *Matrix {
	applyDefaults(&cfg)

	exp := NewExpanders(bus, cfg.Address, cfg.Layout)
	exp.SetExclusive(cfg.Exclusive)

	return &Matrix{
		cfg:     cfg,
		exp:     exp,
		bus:     bus,
		store:   store,
		mapping: cfg.Defaults,
	}
}

// Config returns the effective configuration
func (m *Matrix) Config() Config {
	return m.cfg
}

// Mapping returns a copy of the live mapping
func (m *Matrix) Mapping() Mapping {
	return m.mapping
}

// Expanders returns the underlying expander bank
func (m *Matrix) Expanders() *Expanders {
	return m.exp
}

// Faults returns the number of bus faults since boot
func (m *Matrix) Faults() uint32 {
	return m.exp.Faults().Count()
}

// LoadMapping reads the live mapping from the store and returns the number
// of validation errors (0 = valid)
func (m *Matrix) LoadMapping() int {
	return m.mapping.Load(m.store, m.cfg.StoreBase)
}

// PersistMapping writes the live mapping to the store
func (m *Matrix) PersistMapping() error {
	return m.mapping.Persist(m.store, m.cfg.StoreBase)
}

// UnselectRows drives every output high, deselecting all rows at once.
// Every chip is attempted; failures are joined.
func (m *Matrix) UnselectRows() error {
	regs := m.exp.Scratch(0xFF)

	var errs []error
	for chip := uint8(0); chip < m.cfg.Layout.Chips; chip++ {
		if err := m.exp.WriteOutput(chip, regs.Chip(chip)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SelectRow drives the pin of logical row low. Only the chip owning the pin
// is written; callers unselect between rows. A row without a pin selects
// nothing and touches no chip.
func (m *Matrix) SelectRow(row uint8) error {
	if int(row) >= PXCount {
		return ErrRowRange
	}

	regs := m.exp.Scratch(0xFF)
	pin, ok := m.mapping.Row(int(row))
	if !ok {
		return nil
	}
	loc, ok := m.cfg.Layout.Decompose(pin)
	if !ok {
		return nil
	}
	regs.Clear(loc)
	return m.exp.WriteOutput(loc.Chip, regs.Chip(loc.Chip))
}

// ReadCols samples every chip's input register and returns the column
// bitmask. Inputs are inverted at the chip, so a pressed key reads 1.
// A chip that fails to read contributes zeros; the mask is still returned.
func (m *Matrix) ReadCols() (MatrixRow, error) {
	regs := m.exp.Scratch(0x00)

	var errs []error
	for chip := uint8(0); chip < m.cfg.Layout.Chips; chip++ {
		if err := m.exp.ReadInput(chip, regs.Chip(chip)); err != nil {
			errs = append(errs, err)
		}
	}

	var cols MatrixRow
	for col := 0; col < m.mapping.colLimit(); col++ {
		pin, ok := m.mapping.Col(col)
		if !ok {
			continue
		}
		loc, ok := m.cfg.Layout.Decompose(pin)
		if !ok {
			continue
		}
		if regs.Test(loc) {
			cols |= 1 << uint(col)
		}
	}
	return cols, errors.Join(errs...)
}
