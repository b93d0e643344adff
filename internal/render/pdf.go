package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"daylog/internal/report"
)

// pdfRenderer prints the styled HTML page through a headless browser.
type pdfRenderer struct {
	style Style
}

func (r *pdfRenderer) ContentType() string { return "application/pdf" }
func (r *pdfRenderer) Ext() string         { return "pdf" }

func (r *pdfRenderer) Render(ctx context.Context, doc *report.Document) ([]byte, error) {
	html, err := BuildHTML(doc, r.style)
	if err != nil {
		return nil, err
	}
	return printToPDF(ctx, html)
}

// printToPDF renders HTML in headless chromium and returns the PDF bytes.
func printToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	launch := launcher.New().
		Headless(true).
		NoSandbox(true)

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Timeout(30 * time.Second).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(30 * time.Second)
	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}

	return data, nil
}
