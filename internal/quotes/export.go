package quotes

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"ID", "Дата", "Район", "Глубина, м",
	"Комплект", "Оборудование", "Услуги",
	"Бурение, руб.", "Оборудование, руб.", "Услуги, руб.", "Итого, руб.",
}

// ExportExcel renders quotes into an xlsx workbook.
func ExportExcel(list []Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Расчеты"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for rowIdx, q := range list {
		values := []interface{}{
			q.ID,
			q.CreatedAt.Format("2006-01-02 15:04"),
			q.District,
			q.Depth,
			q.EquipmentSet,
			strings.Join(q.Equipment, ", "),
			strings.Join(q.Services, ", "),
			q.DrillingCost,
			q.EquipmentCost,
			q.ServicesCost,
			q.TotalCost,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
