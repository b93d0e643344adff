package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDocxRenderer_ProducesValidArchive(t *testing.T) {
	r := &docxRenderer{}
	data, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render docx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty docx output")
	}
	// OOXML files are zip archives.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("docx output is not a zip archive: % x", data[:4])
	}
}

func TestXlsxRenderer_WritesDailyLogSheet(t *testing.T) {
	r := &xlsxRenderer{}
	data, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue("Summary", "A1")
	if err != nil {
		t.Fatalf("read summary title: %v", err)
	}
	if title != "July Activity Report" {
		t.Errorf("summary title = %q", title)
	}

	rows, err := f.GetRows("Daily Log")
	if err != nil {
		t.Fatalf("read daily log sheet: %v", err)
	}
	// Header plus two activities and one special activity.
	if len(rows) != 4 {
		t.Fatalf("daily log rows = %d, want 4", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[3][5] != "yes" {
		t.Errorf("special marker missing: %v", rows[3])
	}
}

func TestXlsxRenderer_OmitsDailyLogSheetWhenEmpty(t *testing.T) {
	doc := sampleDocument()
	doc.DailyLog = nil

	r := &xlsxRenderer{}
	data, err := r.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("render xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Daily Log"); idx != -1 {
		t.Error("daily log sheet present for empty log")
	}
}
