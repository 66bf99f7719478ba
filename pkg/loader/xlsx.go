package loader

import (
	"context"
	"fmt"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/xuri/excelize/v2"
)

func readXLSX(ctx context.Context, path string, cfg *config, b *domain.TableBuilder) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fmt.Errorf("workbook %q has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	codeIdx, descIdx := -1, -1
	header := true
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}
		if header {
			if codeIdx, descIdx, err = columnIndex(row, cfg); err != nil {
				return err
			}
			header = false
			continue
		}
		b.Add(cell(row, codeIdx), cell(row, descIdx))
	}
	if header {
		return fmt.Errorf("%w: sheet %q is empty", domain.ErrMissingColumns, sheet)
	}
	return rows.Error()
}
