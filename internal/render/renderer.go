package render

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"daylog/internal/daylog"
	"daylog/internal/report"
)

// Output selects the target file family.
type Output string

const (
	OutputPDF   Output = "pdf"
	OutputWord  Output = "word"
	OutputExcel Output = "excel"
)

// Style selects the visual treatment of the print path.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleMonotone     Style = "monotone"
	StyleSimple       Style = "simple"
	StyleCreative     Style = "creative"
)

// Renderer turns a report document into file bytes. Implementations share
// the same section ordering and only vary presentation primitives.
type Renderer interface {
	Render(ctx context.Context, doc *report.Document) ([]byte, error)
	ContentType() string
	Ext() string
}

// For returns the renderer for an output/style pair. Unknown styles fall
// back to professional; unknown outputs fall back to the PDF path.
func For(output Output, style Style) Renderer {
	style = normalizeStyle(style)
	switch output {
	case OutputWord:
		return &docxRenderer{}
	case OutputExcel:
		return &xlsxRenderer{}
	default:
		return &pdfRenderer{style: style}
	}
}

func normalizeStyle(style Style) Style {
	switch style {
	case StyleProfessional, StyleMonotone, StyleSimple, StyleCreative:
		return style
	default:
		return StyleProfessional
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds the export file name:
// {sanitizedUserName}_Report_{start}_to_{end}.{ext} with short dates.
func FileName(doc *report.Document, ext string) string {
	name := nonAlphanumeric.ReplaceAllString(doc.UserName, "")
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("%s_Report_%s_to_%s.%s",
		name,
		shortDate(doc.PeriodStart),
		shortDate(doc.PeriodEnd),
		ext,
	)
}

func shortDate(date string) string {
	t, err := time.Parse(daylog.DateLayout, date)
	if err != nil {
		return nonAlphanumeric.ReplaceAllString(date, "")
	}
	return t.Format("02Jan2006")
}

// timeRangePrefix renders the smart activity prefix: both times give
// "{start} - {end}: ", a lone start gives "From {start}: ", neither gives
// nothing.
func timeRangePrefix(start, end *string) string {
	switch {
	case start != nil && *start != "" && end != nil && *end != "":
		return fmt.Sprintf("%s - %s: ", clock(*start), clock(*end))
	case start != nil && *start != "":
		return fmt.Sprintf("From %s: ", clock(*start))
	default:
		return ""
	}
}

// clock trims HH:MM:SS down to HH:MM for display.
func clock(t string) string {
	if parsed, err := time.Parse(daylog.TimeLayout, t); err == nil {
		return parsed.Format("15:04")
	}
	return t
}

// clockOrPlaceholder renders an optional recorded time.
func clockOrPlaceholder(t *string) string {
	if t == nil || *t == "" {
		return "not recorded"
	}
	return clock(*t)
}

// longDate renders "Monday, January 2, 2006" for a day block heading.
func longDate(date string) string {
	t, err := time.Parse(daylog.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
