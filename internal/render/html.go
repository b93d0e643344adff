package render

import (
	"bytes"
	"fmt"
	"html/template"

	"daylog/internal/report"
)

// styleSpec is what actually differs between the four print styles: a
// stylesheet and a couple of presentation switches consumed by the shared
// body template.
type styleSpec struct {
	CSS           template.CSS
	UppercaseHead bool
}

var styleSpecs = map[Style]styleSpec{
	StyleProfessional: {CSS: professionalCSS, UppercaseHead: true},
	StyleMonotone:     {CSS: monotoneCSS},
	StyleSimple:       {CSS: simpleCSS},
	StyleCreative:     {CSS: creativeCSS, UppercaseHead: true},
}

type htmlPage struct {
	*report.Document
	Style styleSpec
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"prefix":   timeRangePrefix,
	"clockOr":  clockOrPlaceholder,
	"longDate": longDate,
}).Parse(pageTemplateText))

// BuildHTML renders the shared section pipeline (header, roles, schedule,
// responsibilities, contributions, daily log, conclusions, signature) with
// the given style's presentation.
func BuildHTML(doc *report.Document, style Style) (string, error) {
	spec, ok := styleSpecs[normalizeStyle(style)]
	if !ok {
		spec = styleSpecs[StyleProfessional]
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, htmlPage{Document: doc, Style: spec}); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

// The one body template all print styles share. Section order is fixed;
// sections absent from the document emit nothing.
const pageTemplateText = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
@page { size: A4; margin: 1.6cm; }
body { margin: 0; }
{{.Style.CSS}}
</style>
</head>
<body{{if .Style.UppercaseHead}} class="upper-head"{{end}}>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">{{.UserName}}{{if .Role}} &mdash; {{.Role}}{{end}}</p>
  <p class="meta">{{.PeriodLabel}}</p>
</header>

{{if .Roles}}
<section class="roles">
  <h2>Roles &amp; Positions</h2>
  <ul>{{range .Roles}}<li>{{.}}</li>{{end}}</ul>
</section>
{{end}}

{{if .WorkSchedule}}
<section class="schedule">
  <h2>Work Schedule</h2>
  <table>
    <tr><th>Days</th><th>Time In</th><th>Time Out</th></tr>
    {{range .WorkSchedule}}
    <tr>
      <td>{{.StartDay}}{{if ne .EndDay .StartDay}} &ndash; {{.EndDay}}{{end}}</td>
      <td>{{.ExpectedTimeIn}}</td>
      <td>{{.ExpectedTimeOut}}</td>
    </tr>
    {{end}}
  </table>
</section>
{{end}}

{{if .Responsibilities}}
<section class="responsibilities">
  <h2>Summary of Responsibilities</h2>
  <p>{{.Responsibilities}}</p>
</section>
{{end}}

{{if .Contributions}}
<section class="contributions">
  <h2>Key Contributions</h2>
  {{range .Contributions}}
  <div class="contribution">
    <h3>{{.Title}}</h3>
    <p>{{.Content}}</p>
  </div>
  {{end}}
</section>
{{end}}

{{if .DailyLog}}
<section class="daily-log">
  <h2>Daily Log</h2>
  {{range .DailyLog}}
  <div class="day">
    <h3>{{longDate .Date}}</h3>
    <p class="times">Time in: {{clockOr .TimeIn}} &middot; Time out: {{clockOr .TimeOut}}</p>
    {{if .Activities}}
    <ul>
      {{range .Activities}}<li>{{prefix .TimeStart .TimeEnd}}{{.Content}}{{if .Category}} <span class="category">[{{.Category}}]</span>{{end}}</li>{{end}}
    </ul>
    {{end}}
    {{if .SpecialActivities}}
    <div class="special">
      <h4>Special Activities</h4>
      <ul>
        {{range .SpecialActivities}}<li>{{prefix .TimeStart .TimeEnd}}{{.Content}}</li>{{end}}
      </ul>
    </div>
    {{end}}
  </div>
  {{end}}
</section>
{{end}}

{{if .Conclusions}}
<section class="conclusions">
  <h2>Conclusions</h2>
  <p>{{.Conclusions}}</p>
</section>
{{end}}

<footer class="signature">
  <div class="line"></div>
  <p>{{.UserName}}</p>
</footer>
</body>
</html>
`

const professionalCSS = template.CSS(`
body { font-family: Georgia, 'Times New Roman', serif; color: #1a1a2e; font-size: 11pt; line-height: 1.5; }
header { border-bottom: 3px double #1a1a2e; padding-bottom: 12px; margin-bottom: 20px; }
h1 { font-size: 20pt; margin: 0 0 6px; }
body.upper-head h2 { text-transform: uppercase; letter-spacing: 1px; }
h2 { font-size: 13pt; border-bottom: 1px solid #9aa0b5; padding-bottom: 3px; margin: 18px 0 8px; }
h3 { font-size: 11pt; margin: 10px 0 4px; }
.meta { margin: 2px 0; color: #44475a; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #9aa0b5; padding: 4px 8px; text-align: left; }
.times { font-style: italic; color: #44475a; margin: 2px 0; }
.category { color: #6b7280; }
.special { margin-left: 14px; }
.signature { margin-top: 40px; }
.signature .line { width: 220px; border-top: 1px solid #1a1a2e; }
`)

const monotoneCSS = template.CSS(`
body { font-family: 'Courier New', monospace; color: #000; font-size: 10pt; line-height: 1.4; }
header { border-bottom: 1px solid #000; padding-bottom: 8px; margin-bottom: 16px; }
h1 { font-size: 16pt; margin: 0 0 4px; }
h2 { font-size: 12pt; margin: 16px 0 6px; }
h3 { font-size: 10pt; margin: 8px 0 2px; }
.meta { margin: 1px 0; }
table { border-collapse: collapse; }
th, td { border: 1px solid #000; padding: 3px 6px; text-align: left; }
.times { margin: 1px 0; }
.category { }
.special { margin-left: 12px; }
.signature { margin-top: 36px; }
.signature .line { width: 200px; border-top: 1px solid #000; }
`)

const simpleCSS = template.CSS(`
body { font-family: Arial, Helvetica, sans-serif; color: #222; font-size: 11pt; line-height: 1.5; }
header { margin-bottom: 16px; }
h1 { font-size: 18pt; margin: 0 0 4px; font-weight: normal; }
h2 { font-size: 13pt; margin: 16px 0 6px; font-weight: bold; }
h3 { font-size: 11pt; margin: 8px 0 2px; }
.meta { margin: 1px 0; color: #555; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.times { color: #555; margin: 2px 0; }
.category { color: #888; }
.special { margin-left: 14px; }
.signature { margin-top: 40px; }
.signature .line { width: 220px; border-top: 1px solid #222; }
`)

const creativeCSS = template.CSS(`
body { font-family: 'Trebuchet MS', Verdana, sans-serif; color: #2d2a4a; font-size: 11pt; line-height: 1.6; }
header { background: #f1effc; border-left: 6px solid #6c5ce7; padding: 14px; margin-bottom: 20px; }
h1 { font-size: 20pt; margin: 0 0 6px; color: #6c5ce7; }
body.upper-head h2 { text-transform: uppercase; letter-spacing: 2px; }
h2 { font-size: 12pt; color: #6c5ce7; margin: 18px 0 8px; }
h3 { font-size: 11pt; margin: 10px 0 4px; }
.meta { margin: 2px 0; color: #5b5877; }
table { border-collapse: collapse; width: 100%; }
th { background: #f1effc; }
th, td { border: 1px solid #cfc9f2; padding: 5px 9px; text-align: left; }
.day { border-left: 3px solid #cfc9f2; padding-left: 10px; margin-bottom: 10px; }
.times { color: #5b5877; margin: 2px 0; }
.category { color: #6c5ce7; }
.special { margin-left: 14px; }
.signature { margin-top: 40px; }
.signature .line { width: 220px; border-top: 2px solid #6c5ce7; }
`)
