package render

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"daylog/internal/report"
)

// xlsxRenderer lays the report out as a workbook: a summary sheet plus a
// tabular daily log.
type xlsxRenderer struct{}

func (r *xlsxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (r *xlsxRenderer) Ext() string { return "xlsx" }

func (r *xlsxRenderer) Render(_ context.Context, doc *report.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	row := 1
	setCell := func(sheet string, col string, r int, value any) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r), value)
	}

	setCell(summary, "A", row, doc.Title)
	row++
	setCell(summary, "A", row, doc.UserName)
	if doc.Role != "" {
		setCell(summary, "B", row, doc.Role)
	}
	row++
	setCell(summary, "A", row, doc.PeriodLabel)
	row += 2

	if len(doc.Roles) > 0 {
		setCell(summary, "A", row, "Roles & Positions")
		row++
		for _, role := range doc.Roles {
			setCell(summary, "B", row, role)
			row++
		}
		row++
	}

	if len(doc.WorkSchedule) > 0 {
		setCell(summary, "A", row, "Work Schedule")
		row++
		setCell(summary, "B", row, "Days")
		setCell(summary, "C", row, "Time In")
		setCell(summary, "D", row, "Time Out")
		row++
		for _, p := range doc.WorkSchedule {
			days := p.StartDay
			if p.EndDay != "" && p.EndDay != p.StartDay {
				days += " - " + p.EndDay
			}
			setCell(summary, "B", row, days)
			setCell(summary, "C", row, p.ExpectedTimeIn)
			setCell(summary, "D", row, p.ExpectedTimeOut)
			row++
		}
		row++
	}

	if doc.Responsibilities != "" {
		setCell(summary, "A", row, "Summary of Responsibilities")
		setCell(summary, "B", row, doc.Responsibilities)
		row += 2
	}

	if len(doc.Contributions) > 0 {
		setCell(summary, "A", row, "Key Contributions")
		row++
		for _, contribution := range doc.Contributions {
			setCell(summary, "B", row, contribution.Title)
			setCell(summary, "C", row, contribution.Content)
			row++
		}
		row++
	}

	if doc.Conclusions != "" {
		setCell(summary, "A", row, "Conclusions")
		setCell(summary, "B", row, doc.Conclusions)
	}

	if doc.HasDailyLog() {
		const log = "Daily Log"
		if _, err := f.NewSheet(log); err != nil {
			return nil, fmt.Errorf("create daily log sheet: %w", err)
		}

		headers := []string{"Date", "Time In", "Time Out", "Activity", "Category", "Special"}
		for i, h := range headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			setCell(log, col, 1, h)
		}

		logRow := 2
		for _, day := range doc.DailyLog {
			writeLine := func(content string, category *string, start, end *string, special bool) {
				setCell(log, "A", logRow, day.Date)
				setCell(log, "B", logRow, clockOrPlaceholder(day.TimeIn))
				setCell(log, "C", logRow, clockOrPlaceholder(day.TimeOut))
				setCell(log, "D", logRow, timeRangePrefix(start, end)+content)
				if category != nil {
					setCell(log, "E", logRow, *category)
				}
				if special {
					setCell(log, "F", logRow, "yes")
				}
				logRow++
			}

			for _, a := range day.Activities {
				writeLine(a.Content, a.Category, a.TimeStart, a.TimeEnd, false)
			}
			for _, a := range day.SpecialActivities {
				writeLine(a.Content, a.Category, a.TimeStart, a.TimeEnd, true)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
