package pdf

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/bill.html
var templateFS embed.FS

var billTemplate = template.Must(template.ParseFS(templateFS, "templates/bill.html"))

// RenderHTML renders the bill layout as a standalone HTML page.
func RenderHTML(doc BillDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := billTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
