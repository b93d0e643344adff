package render

import (
	"testing"

	"daylog/internal/report"
)

func strPtr(s string) *string { return &s }

func TestFileName_SanitizesUserName(t *testing.T) {
	doc := &report.Document{
		UserName:    "Dr. Jane O'Neil-Smith",
		PeriodStart: "2025-07-01",
		PeriodEnd:   "2025-07-31",
	}

	got := FileName(doc, "pdf")
	want := "DrJaneONeilSmith_Report_01Jul2025_to_31Jul2025.pdf"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestFileName_EmptyNameFallsBack(t *testing.T) {
	doc := &report.Document{
		UserName:    "  ...  ",
		PeriodStart: "2025-07-01",
		PeriodEnd:   "2025-07-01",
	}
	got := FileName(doc, "docx")
	want := "User_Report_01Jul2025_to_01Jul2025.docx"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestTimeRangePrefix(t *testing.T) {
	cases := []struct {
		name  string
		start *string
		end   *string
		want  string
	}{
		{"both times", strPtr("09:15:00"), strPtr("09:30:00"), "09:15 - 09:30: "},
		{"start only", strPtr("14:00:00"), nil, "From 14:00: "},
		{"start with empty end", strPtr("14:00:00"), strPtr(""), "From 14:00: "},
		{"neither", nil, nil, ""},
		{"end only", nil, strPtr("17:00:00"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeRangePrefix(tc.start, tc.end); got != tc.want {
				t.Fatalf("prefix = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClockOrPlaceholder(t *testing.T) {
	if got := clockOrPlaceholder(nil); got != "not recorded" {
		t.Errorf("nil = %q", got)
	}
	if got := clockOrPlaceholder(strPtr("08:05:00")); got != "08:05" {
		t.Errorf("08:05:00 = %q", got)
	}
}

func TestLongDate(t *testing.T) {
	if got := longDate("2025-07-07"); got != "Monday, July 7, 2025" {
		t.Fatalf("longDate = %q", got)
	}
}

func TestFor_FallsBackOnUnknownInputs(t *testing.T) {
	r := For(Output("txt"), Style("gothic"))
	if r.Ext() != "pdf" {
		t.Errorf("unknown output ext = %q, want pdf", r.Ext())
	}
	pdf, ok := r.(*pdfRenderer)
	if !ok {
		t.Fatalf("unknown output renderer = %T", r)
	}
	if pdf.style != StyleProfessional {
		t.Errorf("unknown style normalized to %q", pdf.style)
	}

	if For(OutputWord, StyleSimple).Ext() != "docx" {
		t.Error("word renderer ext != docx")
	}
	if For(OutputExcel, StyleSimple).Ext() != "xlsx" {
		t.Error("excel renderer ext != xlsx")
	}
}
