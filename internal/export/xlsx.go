package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"docrepo/internal/browse"
)

// SheetName is the worksheet holding the export.
const SheetName = "Documents"

// WriteXLSX writes rows as a single-sheet workbook. Sizes are numeric cells.
func WriteXLSX(out io.Writer, rows []browse.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range rows {
		rec := rowToRecord(&rows[i])
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		if rows[i].Size != nil {
			values[5] = *rows[i].Size
		}
		values[0] = rows[i].Doc.ID

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
