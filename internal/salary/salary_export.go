package salary

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	salaryerrors "go-courier/internal/salary/errors"
	"go-courier/internal/shared/dateutil"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// Export renders the driver's unsettled days plus a total row as a
// downloadable file. The range matches GetUnpaidTotal: day after the last
// payout (or joining date) through today.
func (s *service) Export(ctx context.Context, adminID, driverID, format string) (*ExportFile, error) {
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, salaryerrors.ErrInvalidExportFormat
	}

	driver, err := s.findScopedDriver(ctx, adminID, driverID)
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.ListOverrides(ctx, driverID)
	if err != nil {
		return nil, err
	}
	lastPaidAt, err := s.lastPaidAt(ctx, driverID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	entries := UnpaidBreakdown(driver.JoiningDate, lastPaidAt, driver.BaseSalary, overrides, today)

	var total int64
	for _, e := range entries {
		total += e.Amount
	}

	baseName := fmt.Sprintf("salary_%s_%s", driver.Name, dateutil.DayKey(today))

	if format == ExportFormatCSV {
		content, err := renderCSV(entries, total)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			FileName:    baseName + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}

	content, err := renderXLSX(driver.Name, entries, total)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		FileName:    baseName + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func renderCSV(entries []BreakdownEntry, total int64) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "amount", "overridden"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			dateutil.DayKey(e.Date),
			strconv.FormatInt(e.Amount, 10),
			strconv.FormatBool(e.Overridden),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"total", strconv.FormatInt(total, 10), ""}); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(driverName string, entries []BreakdownEntry, total int64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Salary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Amount", "Overridden"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, e := range entries {
		values := []any{dateutil.DayKey(e.Date), e.Amount, e.Overridden}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(entries) + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total for "+driverName); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), total); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
