// Matrix mapping table
// Logical row/column to expander pin tables, persisted in a ConfigStore as
// [row_count][col_count][row pins...][col pins...]
package core

import "errors"

// Mapping holds the row and column pin tables with their configured lengths.
// Entries at or past the count are always Unconfigured.
type Mapping struct {
	Rows     [PXCount]PinIndex
	Cols     [PXCount]PinIndex
	RowCount uint8
	ColCount uint8
}

// DefaultMapping returns the compiled-in mapping: rows 0-7 on pins 0-7,
// columns 0-23 on pins 8-31
func DefaultMapping() Mapping {
	var m Mapping
	m.clear()
	m.RowCount = 8
	m.ColCount = 24
	for i := 0; i < int(m.RowCount); i++ {
		m.Rows[i] = PinIndex(i)
	}
	for i := 0; i < int(m.ColCount); i++ {
		m.Cols[i] = PinIndex(int(m.RowCount) + i)
	}
	return m
}

func (m *Mapping) clear() {
	for i := range m.Rows {
		m.Rows[i] = Unconfigured
		m.Cols[i] = Unconfigured
	}
}

// SetRows replaces the row table with pins, in logical order
func (m *Mapping) SetRows(pins []PinIndex) {
	m.RowCount = fill(&m.Rows, pins)
}

// SetCols replaces the column table with pins, in logical order
func (m *Mapping) SetCols(pins []PinIndex) {
	m.ColCount = fill(&m.Cols, pins)
}

func fill(table *[PXCount]PinIndex, pins []PinIndex) uint8 {
	n := copy(table[:], pins)
	for i := n; i < PXCount; i++ {
		table[i] = Unconfigured
	}
	return uint8(n)
}

// Row returns the pin of logical row r, false if none is assigned
func (m *Mapping) Row(r int) (PinIndex, bool) {
	if r < 0 || r >= PXCount || !m.Rows[r].Configured() {
		return Unconfigured, false
	}
	return m.Rows[r], true
}

// Col returns the pin of logical column c, false if none is assigned
func (m *Mapping) Col(c int) (PinIndex, bool) {
	if c < 0 || c >= PXCount || !m.Cols[c].Configured() {
		return Unconfigured, false
	}
	return m.Cols[c], true
}

// rowLimit and colLimit clamp the counts to the table size
func (m *Mapping) rowLimit() int { return clampCount(m.RowCount) }
func (m *Mapping) colLimit() int { return clampCount(m.ColCount) }

func clampCount(n uint8) int {
	if int(n) > PXCount {
		return PXCount
	}
	return int(n)
}

// Load reads the mapping from s at base and returns the number of
// validation errors found; 0 means the stored mapping is fully valid.
// Invalid entries are kept as read so they can be inspected.
func (m *Mapping) Load(s ConfigStore, base uint16) int {
	errs := 0

	// Row and column counts
	var err error
	if m.RowCount, err = s.LoadByte(base); err != nil {
		m.RowCount = uint8(Unconfigured)
		errs++
	}
	if m.ColCount, err = s.LoadByte(base + 1); err != nil {
		m.ColCount = uint8(Unconfigured)
		errs++
	}
	errs += countErrors(m.RowCount)
	errs += countErrors(m.ColCount)
	if int(m.RowCount)+int(m.ColCount) > PXCount {
		errs++
	}

	// Pin tables follow the counts back to back
	addr := base + 2
	errs += loadTable(s, &m.Rows, m.RowCount, &addr)
	errs += loadTable(s, &m.Cols, m.ColCount, &addr)

	return errs
}

func countErrors(n uint8) int {
	errs := 0
	if n == 0 {
		errs++
	}
	if PinIndex(n) == Unconfigured {
		errs++
	}
	return errs
}

func loadTable(s ConfigStore, table *[PXCount]PinIndex, count uint8, addr *uint16) int {
	errs := 0
	for i := 0; i < PXCount; i++ {
		if i >= int(count) {
			table[i] = Unconfigured
			continue
		}
		v, err := s.LoadByte(*addr)
		*addr++
		if err != nil {
			table[i] = Unconfigured
			errs++
			continue
		}
		table[i] = PinIndex(v)
		if v >= PXCount {
			errs++
		}
	}
	return errs
}

// Persist writes the counts and the configured part of both tables to s at
// base. The mapping is written as is; callers persist known-good state.
func (m *Mapping) Persist(s ConfigStore, base uint16) error {
	var errs []error
	store := func(addr uint16, v byte) {
		if err := s.StoreByte(addr, v); err != nil {
			errs = append(errs, err)
		}
	}

	store(base, m.RowCount)
	store(base+1, m.ColCount)

	addr := base + 2
	for i := 0; i < m.rowLimit(); i++ {
		store(addr, byte(m.Rows[i]))
		addr++
	}
	for i := 0; i < m.colLimit(); i++ {
		store(addr, byte(m.Cols[i]))
		addr++
	}

	return errors.Join(errs...)
}
