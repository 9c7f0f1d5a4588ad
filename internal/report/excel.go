// Package report renders monthly payroll workbooks for download, so the
// accountant no longer copies month sheets out of the backing spreadsheet
// by hand.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/domain/entity"
)

// Builder renders payroll workbooks.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

var headers = []string{
	"員工ID", "姓名", "發薪日期",
	"底薪", "伙食津貼", "小計(A)",
	"加班費", "獎金", "小計(B)",
	"勞保費", "健保費", "小計(C)",
	"實發金額",
}

// MonthlyPayroll builds a one-sheet workbook listing every payslip of an
// ROC year-month with a totals row. The caller owns closing the file.
func (b *Builder) MonthlyPayroll(year, month int, records []entity.PayrollRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := fmt.Sprintf("%d年%02d月", year, month)

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		b.logger.Warn("failed to drop default sheet", zap.Error(err))
	}

	for col, h := range headers {
		b.setCell(f, sheet, cellRef(col, 1), h)
	}

	var totalA, totalB, totalC, totalPay int64
	for i, rec := range records {
		row := i + 2
		overtime := rec.OvertimeWeekday + rec.OvertimeHoliday + rec.OvertimeRestday + rec.OvertimeNational
		values := []any{
			rec.EmployeeID, rec.Name, rec.PayDate,
			rec.BaseSalary, rec.MealAllowance, rec.SubtotalA,
			overtime, rec.Bonus, rec.SubtotalB,
			rec.LaborInsurance, rec.HealthInsurance, rec.SubtotalC,
			rec.Total(),
		}
		for col, v := range values {
			b.setCell(f, sheet, cellRef(col, row), v)
		}
		totalA += rec.SubtotalA
		totalB += rec.SubtotalB
		totalC += rec.SubtotalC
		totalPay += rec.Total()
	}

	sumRow := len(records) + 2
	b.setCell(f, sheet, cellRef(0, sumRow), "合計")
	b.setCell(f, sheet, cellRef(5, sumRow), totalA)
	b.setCell(f, sheet, cellRef(8, sumRow), totalB)
	b.setCell(f, sheet, cellRef(11, sumRow), totalC)
	b.setCell(f, sheet, cellRef(12, sumRow), totalPay)

	b.logger.Info("monthly payroll workbook built",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("records", len(records)))
	return f, nil
}

func (b *Builder) setCell(f *excelize.File, sheet, cell string, value any) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		b.logger.Warn("failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func cellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col+1, row)
	return ref
}
