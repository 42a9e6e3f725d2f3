package report

import _ "embed"

//go:embed templates/report.html
var htmlTemplate string
