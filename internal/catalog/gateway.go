package catalog

import "context"

// Gateway is the narrow spreadsheet surface the catalog needs.
//
// Implemented by [sheets.Client]; tests substitute in-memory fakes.
type Gateway interface {
	// ReadRange fetches the rows of sheet!rangeSpec.
	ReadRange(ctx context.Context, sheet, rangeSpec string) ([][]string, error)

	// AppendRow appends one row after the last data row of sheet!rangeSpec.
	AppendRow(ctx context.Context, sheet, rangeSpec string, row []string) error

	// WriteCell overwrites the single cell at sheet!cellAddress.
	WriteCell(ctx context.Context, sheet, cellAddress, value string) error

	// WriteColumn overwrites a vertical run of cells at sheet!cellRange.
	WriteColumn(ctx context.Context, sheet, cellRange string, cells []string) error
}
