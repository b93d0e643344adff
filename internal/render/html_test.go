package render

import (
	"strings"
	"testing"

	"daylog/internal/database"
	"daylog/internal/report"
)

func sampleDocument() *report.Document {
	return &report.Document{
		Title:       "July Activity Report",
		UserName:    "Jane Doe",
		Role:        "Engineer",
		PeriodLabel: "July 1, 2025 to July 31, 2025",
		PeriodStart: "2025-07-01",
		PeriodEnd:   "2025-07-31",
		Roles:       []string{"Engineer", "Mentor"},
		WorkSchedule: []database.SchedulePeriod{
			{StartDay: "Monday", EndDay: "Friday", ExpectedTimeIn: "09:00", ExpectedTimeOut: "17:30"},
		},
		Responsibilities: "Keep the lights on.",
		Contributions: []report.Contribution{
			{Title: "Migration", Content: "Moved the data without downtime."},
		},
		DailyLog: []report.DayDetail{
			{
				Date:    "2025-07-07",
				TimeIn:  strPtr("09:00:00"),
				TimeOut: strPtr("17:30:00"),
				Activities: []database.Activity{
					{Content: "Standup", TimeStart: strPtr("09:15:00"), TimeEnd: strPtr("09:30:00")},
					{Content: "Code review"},
				},
				SpecialActivities: []database.SpecialActivity{
					{Content: "Incident response", TimeStart: strPtr("14:00:00")},
				},
			},
		},
		Conclusions: "A productive month.",
	}
}

func TestBuildHTML_RendersAllSections(t *testing.T) {
	html, err := BuildHTML(sampleDocument(), StyleProfessional)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}

	for _, want := range []string{
		"July Activity Report",
		"Roles &amp; Positions",
		"Work Schedule",
		"Summary of Responsibilities",
		"Key Contributions",
		"Daily Log",
		"Monday, July 7, 2025",
		"09:15 - 09:30: Standup",
		"From 14:00: Incident response",
		"Special Activities",
		"Conclusions",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestBuildHTML_OmitsEmptySections(t *testing.T) {
	doc := sampleDocument()
	doc.Conclusions = ""
	doc.Roles = nil
	doc.WorkSchedule = nil

	html, err := BuildHTML(doc, StyleSimple)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}

	for _, absent := range []string{"Conclusions", "Roles &amp; Positions", "Work Schedule"} {
		if strings.Contains(html, absent) {
			t.Errorf("html contains %q for an empty section", absent)
		}
	}
	// Populated sections still render.
	if !strings.Contains(html, "Daily Log") {
		t.Error("html missing daily log")
	}
}

func TestBuildHTML_TimePlaceholders(t *testing.T) {
	doc := sampleDocument()
	doc.DailyLog[0].TimeOut = nil

	html, err := BuildHTML(doc, StyleMonotone)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if !strings.Contains(html, "Time out: not recorded") {
		t.Error("missing placeholder for absent time out")
	}
	if !strings.Contains(html, "Time in: 09:00") {
		t.Error("missing trimmed time in")
	}
}

func TestBuildHTML_UnknownStyleFallsBack(t *testing.T) {
	html, err := BuildHTML(sampleDocument(), Style("gothic"))
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	// The professional stylesheet carries the double-rule header.
	if !strings.Contains(html, "3px double") {
		t.Error("fallback style is not professional")
	}
}
