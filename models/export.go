package models

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildInventoryWorkbook renders the caller's product catalog into an
// xlsx sheet, one row per product.
func BuildInventoryWorkbook(ctx context.Context) (*excelize.File, error) {

	products, err := ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "Name")
	f.SetCellValue("Sheet1", "B1", "Description")
	f.SetCellValue("Sheet1", "C1", "Quantity")
	f.SetCellValue("Sheet1", "D1", "Threshold")
	f.SetCellValue("Sheet1", "E1", "LowStock")
	f.SetCellValue("Sheet1", "F1", "CreatedAt")

	for i, p := range products {
		row := fmt.Sprint(i + 2)
		f.SetCellValue("Sheet1", "A"+row, p.Name)
		f.SetCellValue("Sheet1", "B"+row, p.Description)
		f.SetCellValue("Sheet1", "C"+row, p.Quantity)
		f.SetCellValue("Sheet1", "D"+row, p.Threshold)
		f.SetCellValue("Sheet1", "E"+row, p.IsLowStock)
		f.SetCellValue("Sheet1", "F"+row, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return f, nil
}
