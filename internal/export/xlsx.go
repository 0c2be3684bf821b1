package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// SheetName is the worksheet holding the records in an XLSX export.
const SheetName = "Records"

// ToXLSX writes the same columns as ToCSV into a single worksheet.
// Revenue, guests and duration are stored as numbers.
func ToXLSX(records []domain.TourRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("export.ToXLSX: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("export.ToXLSX: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export.ToXLSX: %w", err)
		}
		values := []any{r.Date, r.Type.String(), r.Guide, r.Revenue, r.Guests, r.Duration}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("export.ToXLSX: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export.ToXLSX: %w", err)
	}
	return buf.Bytes(), nil
}
