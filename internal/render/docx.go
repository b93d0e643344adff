package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fumiama/go-docx"

	"daylog/internal/report"
)

// docxRenderer writes the document with native word-processor paragraph
// and heading primitives, mirroring the print path's section ordering.
type docxRenderer struct{}

func (r *docxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *docxRenderer) Ext() string { return "docx" }

// Run sizes are half-points.
const (
	docxTitleSize   = "40"
	docxHeadingSize = "28"
	docxMetaColor   = "595959"
)

func (r *docxRenderer) Render(_ context.Context, doc *report.Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph()
	title.AddText(doc.Title).Size(docxTitleSize).Bold()
	title.Justification("center")

	meta := w.AddParagraph()
	metaText := doc.UserName
	if doc.Role != "" {
		metaText += " - " + doc.Role
	}
	meta.AddText(metaText).Color(docxMetaColor)
	meta.Justification("center")

	period := w.AddParagraph()
	period.AddText(doc.PeriodLabel).Color(docxMetaColor)
	period.Justification("center")

	if len(doc.Roles) > 0 {
		addDocxHeading(w, "Roles & Positions")
		for _, role := range doc.Roles {
			w.AddParagraph().AddText("- " + role)
		}
	}

	if len(doc.WorkSchedule) > 0 {
		addDocxHeading(w, "Work Schedule")
		for _, p := range doc.WorkSchedule {
			days := p.StartDay
			if p.EndDay != "" && p.EndDay != p.StartDay {
				days += " - " + p.EndDay
			}
			line := fmt.Sprintf("%s: %s to %s", days, p.ExpectedTimeIn, p.ExpectedTimeOut)
			w.AddParagraph().AddText(line)
		}
	}

	if doc.Responsibilities != "" {
		addDocxHeading(w, "Summary of Responsibilities")
		w.AddParagraph().AddText(doc.Responsibilities)
	}

	if len(doc.Contributions) > 0 {
		addDocxHeading(w, "Key Contributions")
		for _, contribution := range doc.Contributions {
			w.AddParagraph().AddText(contribution.Title).Bold()
			w.AddParagraph().AddText(contribution.Content)
		}
	}

	if doc.HasDailyLog() {
		addDocxHeading(w, "Daily Log")
		for _, day := range doc.DailyLog {
			w.AddParagraph().AddText(longDate(day.Date)).Bold()

			times := fmt.Sprintf("Time in: %s, Time out: %s",
				clockOrPlaceholder(day.TimeIn), clockOrPlaceholder(day.TimeOut))
			w.AddParagraph().AddText(times).Color(docxMetaColor)

			for _, a := range day.Activities {
				w.AddParagraph().AddText("- " + timeRangePrefix(a.TimeStart, a.TimeEnd) + a.Content)
			}
			if len(day.SpecialActivities) > 0 {
				w.AddParagraph().AddText("Special Activities").Bold().Color(docxMetaColor)
				for _, a := range day.SpecialActivities {
					w.AddParagraph().AddText("- " + timeRangePrefix(a.TimeStart, a.TimeEnd) + a.Content)
				}
			}
		}
	}

	if doc.Conclusions != "" {
		addDocxHeading(w, "Conclusions")
		w.AddParagraph().AddText(doc.Conclusions)
	}

	w.AddParagraph() // spacer before the signature block
	w.AddParagraph().AddText("____________________________")
	w.AddParagraph().AddText(doc.UserName)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addDocxHeading(w *docx.Docx, text string) {
	h := w.AddParagraph()
	h.AddText(text).Size(docxHeadingSize).Bold()
}
