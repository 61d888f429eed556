package core

import "errors"

// Scan runs one pass over the matrix: every configured row is selected,
// given settle() to let the lines settle, sampled into rows[r], and
// deselected again. Rows without a pin (or past len(rows)) are left at 0.
func (m *Matrix) Scan(rows []MatrixRow, settle func()) error {
	for i := range rows {
		rows[i] = 0
	}

	var errs []error
	if err := m.UnselectRows(); err != nil {
		errs = append(errs, err)
	}

	for row := 0; row < m.mapping.rowLimit() && row < len(rows); row++ {
		if _, ok := m.mapping.Row(row); !ok {
			continue
		}
		if err := m.SelectRow(uint8(row)); err != nil {
			errs = append(errs, err)
		}
		if settle != nil {
			settle()
		}
		cols, err := m.ReadCols()
		if err != nil {
			errs = append(errs, err)
		}
		rows[row] = cols
		if err := m.UnselectRows(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
