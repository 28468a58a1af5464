package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	incomeSheet  = "Income"
	expenseSheet = "Expenses"
)

// ExportXLSX writes s as a workbook with one sheet per side of the ledger, each ending
// in a total row, plus the profit or loss under the income total.
func ExportXLSX(w io.Writer, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", incomeSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(expenseSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Income and Expense for %s", s.Label())

	rows := [][]any{{title}, {"Date", "Customer", "Items", "Session / Time", "Amount"}}
	for _, b := range s.Bookings {
		rows = append(rows, []any{bookingDate(b), deref(b.CustomerName), strings.Join(b.Schedule.Items, ", "), bookingSlot(b), amount(b.Amount)})
	}
	totalRow := len(rows) + 1
	rows = append(rows, []any{"Total income", "", "", "", s.TotalIncome})
	rows = append(rows, []any{"Profit or loss", "", "", "", s.ProfitOrLoss})
	if err := writeRows(f, incomeSheet, rows); err != nil {
		return err
	}
	if err := styleRows(f, incomeSheet, header, bold, totalRow, 5); err != nil {
		return err
	}

	rows = [][]any{{title}, {"Date", "Description", "Amount"}}
	for _, e := range s.Expenses {
		rows = append(rows, []any{clock.FormatDate(e.Date), e.Description, e.Amount})
	}
	totalRow = len(rows) + 1
	rows = append(rows, []any{"Total expense", "", s.TotalExpense})
	if err := writeRows(f, expenseSheet, rows); err != nil {
		return err
	}
	if err := styleRows(f, expenseSheet, header, bold, totalRow, 3); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// styleRows marks the title, the column header row and everything from totalRow on.
func styleRows(f *excelize.File, sheet string, header, bold, totalRow, cols int) error {
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", lastCol+"2", header); err != nil {
		return err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, len(rows)), bold)
}

func bookingDate(b model.Booking) string {
	if b.Kind() == model.KindDaily {
		return clock.FormatDate(b.Schedule.Range.Start) + " to " + clock.FormatDate(b.Schedule.Range.End)
	}
	return clock.FormatDate(b.Schedule.Date)
}

func bookingSlot(b model.Booking) string {
	if b.Kind() == model.KindDaily {
		return b.Schedule.Session
	}
	return clock.FormatWallClock(b.Schedule.Time.Start) + " - " + clock.FormatWallClock(b.Schedule.Time.End)
}

func amount(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
