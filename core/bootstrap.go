package core

import "errors"

// Init brings the matrix up: load and repair the mapping, initialize the bus,
// then set every expander's inversion and direction registers.
//
// No step is fatal. Failures are logged, counted in the fault log and joined
// into the returned error; the matrix is usable (possibly degraded) either way.
func (m *Matrix) Init() error {
	var errs []error

	// Mapping
	if m.cfg.SeedDefaults {
		m.mapping = m.cfg.Defaults
		if err := m.PersistMapping(); err != nil {
			errs = append(errs, err)
		}
	}
	if n := m.LoadMapping(); n != 0 {
		DebugPrintln("[KIMERA] mapping invalid (" + itoa(n) + " errors), restoring defaults")
		m.mapping = m.cfg.Defaults
		if err := m.PersistMapping(); err != nil {
			errs = append(errs, err)
		}
	}

	// Bus
	if c, ok := m.bus.(BusConfigurer); ok {
		if err := c.Configure(); err != nil {
			DebugPrintln("[KIMERA] bus configure failed: " + err.Error())
			errs = append(errs, err)
		}
	}

	// Expanders
	if err := m.initExpanders(); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		DebugPrintln("[KIMERA] init degraded: " + err.Error())
	}
	return err
}

// initExpanders inverts every input and makes row pins outputs, all other
// pins inputs
func (m *Matrix) initExpanders() error {
	chips := m.cfg.Layout.Chips
	regs := m.exp.Scratch(0xFF)

	var errs []error
	for chip := uint8(0); chip < chips; chip++ {
		if err := m.exp.WriteInversion(chip, regs.Chip(chip)); err != nil {
			errs = append(errs, err)
		}
	}

	for row := 0; row < m.mapping.rowLimit(); row++ {
		pin, ok := m.mapping.Row(row)
		if !ok {
			continue
		}
		if loc, ok := m.cfg.Layout.Decompose(pin); ok {
			regs.Clear(loc)
		}
	}

	for chip := uint8(0); chip < chips; chip++ {
		if err := m.exp.WriteConfig(chip, regs.Chip(chip)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
