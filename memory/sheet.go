package memory

import (
	"fmt"
	"unicode/utf8"
)

type cell struct{ row, col int }

// Sheet is a worksheet held in memory. Cells that were never written, or
// were written nil, are empty.
type Sheet struct {
	book   *Book
	name   string
	cells  map[cell]any
	fitted map[int]int
}

func checkBounds(row, col int) error {
	if row < 1 || row > MaxRows || col < 1 || col > MaxCols {
		return fmt.Errorf("(%d, %d): %w", row, col, ErrOutOfBounds)
	}
	return nil
}

// Name returns the sheet name.
func (s *Sheet) Name() (string, error) {
	return s.name, nil
}

// Cell returns the value at (row, col), or nil if the cell is empty.
func (s *Sheet) Cell(row, col int) (any, error) {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Cell", e.faults.Read); err != nil {
		return nil, err
	}
	if err := checkBounds(row, col); err != nil {
		return nil, err
	}
	return s.cells[cell{row, col}], nil
}

// SetCell stores value at (row, col). A nil value empties the cell.
func (s *Sheet) SetCell(row, col int, value any) error {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetCell", e.faults.Write); err != nil {
		return err
	}
	if err := checkBounds(row, col); err != nil {
		return err
	}
	if value == nil {
		delete(s.cells, cell{row, col})
		return nil
	}
	s.cells[cell{row, col}] = value
	return nil
}

// usedRange returns the bounding box of populated cells. An empty sheet
// reports the single cell A1, as Excel does.
func (s *Sheet) usedRange() (top, left, bottom, right int) {
	if len(s.cells) == 0 {
		return 1, 1, 1, 1
	}
	top, left = MaxRows, MaxCols
	for c := range s.cells {
		top = min(top, c.row)
		left = min(left, c.col)
		bottom = max(bottom, c.row)
		right = max(right, c.col)
	}
	return top, left, bottom, right
}

// UsedRows returns the height of the used range.
func (s *Sheet) UsedRows() (int, error) {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("UsedRows", e.faults.UsedRange); err != nil {
		return 0, err
	}
	top, _, bottom, _ := s.usedRange()
	return bottom - top + 1, nil
}

// UsedCols returns the width of the used range.
func (s *Sheet) UsedCols() (int, error) {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("UsedCols", e.faults.UsedRange); err != nil {
		return 0, err
	}
	_, left, _, right := s.usedRange()
	return right - left + 1, nil
}

// AutoFit fits column col to its content, or every populated column if
// col < 1.
func (s *Sheet) AutoFit(col int) error {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("AutoFit", e.faults.AutoFit); err != nil {
		return err
	}
	if col > MaxCols {
		return fmt.Errorf("column %d: %w", col, ErrOutOfBounds)
	}
	if col < 1 {
		for c := range s.cells {
			s.fit(c.col)
		}
		return nil
	}
	s.fit(col)
	return nil
}

// fit sets the width of col to the longest rendered value in it.
func (s *Sheet) fit(col int) {
	width := 0
	for c, v := range s.cells {
		if c.col == col {
			width = max(width, utf8.RuneCountInString(fmt.Sprint(v)))
		}
	}
	s.fitted[col] = width
}

// Width returns the width set for col by the last autofit, in characters,
// and whether the column has been fitted at all.
func (s *Sheet) Width(col int) (int, bool) {
	e := s.book.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := s.fitted[col]
	return w, ok
}
