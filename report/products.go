package report

import (
	"bytes"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockbook-app/stockbook/internal/products"
)

var productListTmpl = template.Must(template.New("product-list").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Product List</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 2px; }
.meta { color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
td.price { text-align: right; }
tr.archived td { color: #999; }
</style>
</head>
<body>
<h1>Product List</h1>
<p class="meta">Generated {{.GeneratedAt}} &middot; {{.Count}} product(s){{if .IncludeArchived}} (archived included){{end}}</p>
<table>
<thead>
<tr><th>Code</th><th>Description</th><th>Unit</th><th>Current Price</th><th>Status</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr{{if .Archived}} class="archived"{{end}}><td>{{.Code}}</td><td>{{.Description}}</td><td>{{.Unit}}</td><td class="price">{{.Price}}</td><td>{{.Status}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type productRow struct {
	Code        string
	Description string
	Unit        string
	Price       string
	Status      string
	Archived    bool
}

type productListData struct {
	GeneratedAt     string
	Count           string
	IncludeArchived bool
	Rows            []productRow
}

// BuildProductListHTML renders the printable product list document. Prices
// are rendered from the stored decimal so the report shows the exact value.
func BuildProductListHTML(list []products.Product, includeArchived bool, now time.Time) (string, error) {
	printer := message.NewPrinter(language.English)
	data := productListData{
		GeneratedAt:     now.Format("2006-01-02 15:04 MST"),
		IncludeArchived: includeArchived,
	}
	for _, p := range list {
		if p.IsDeleted && !includeArchived {
			continue
		}
		status := "Active"
		if p.IsDeleted {
			status = "Archived"
		}
		data.Rows = append(data.Rows, productRow{
			Code:        p.Code,
			Description: p.Description,
			Unit:        p.Unit,
			Price:       p.CurrentPrice.StringFixed(2),
			Status:      status,
			Archived:    p.IsDeleted,
		})
	}
	data.Count = printer.Sprintf("%d", len(data.Rows))

	var buf bytes.Buffer
	if err := productListTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
