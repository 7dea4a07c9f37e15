package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotWorkbook   = errors.New("catalog: not an xlsx workbook")
	ErrTooLarge      = errors.New("catalog: workbook too large")
	ErrNotAllowed    = errors.New("catalog: source not allowed")
	ErrMissingSheet  = errors.New("catalog: workbook has none of the expected sheets")
	ErrMissingColumn = errors.New("catalog: missing column")
	ErrInvalidCell   = errors.New("catalog: invalid cell")
)

// CellError points at the spreadsheet cell that could not be converted.
type CellError struct {
	Sheet  string
	Row    int // 1-based, as shown by spreadsheet software
	Column string
	Value  string
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("catalog: sheet %q row %d column %q: value %q: %s", e.Sheet, e.Row, e.Column, e.Value, e.Reason)
}

func (e *CellError) Unwrap() error { return ErrInvalidCell }
