package report

import (
	"bytes"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockbook-app/stockbook/internal/products"
)

var priceHistoryTmpl = template.Must(template.New("price-history").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Price History {{.Code}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 2px; }
.meta { color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
td.price { text-align: right; }
tr.deleted td { color: #999; text-decoration: line-through; }
</style>
</head>
<body>
<h1>Price History: {{.Code}}</h1>
<p class="meta">Generated {{.GeneratedAt}} &middot; {{.Count}} entr{{if .Plural}}ies{{else}}y{{end}}</p>
<table>
<thead>
<tr><th>Effectivity Date</th><th>Unit Price</th><th>Operation</th><th>Modified By</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr{{if .Deleted}} class="deleted"{{end}}><td>{{.Effectivity}}</td><td class="price">{{.Price}}</td><td>{{.Operation}}</td><td>{{.ModifiedBy}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type historyRow struct {
	Effectivity string
	Price       string
	Operation   string
	ModifiedBy  string
	Deleted     bool
}

type priceHistoryData struct {
	Code        string
	GeneratedAt string
	Count       string
	Plural      bool
	Rows        []historyRow
}

// BuildPriceHistoryHTML renders the printable price history for one product.
// Entries arrive newest first; soft-deleted entries stay visible but struck
// through because the document is an audit view.
func BuildPriceHistoryHTML(code string, entries []products.PriceEntry, now time.Time) (string, error) {
	printer := message.NewPrinter(language.English)
	data := priceHistoryData{
		Code:        code,
		GeneratedAt: now.Format("2006-01-02 15:04 MST"),
		Count:       printer.Sprintf("%d", len(entries)),
		Plural:      len(entries) != 1,
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, historyRow{
			Effectivity: e.EffectivityDate.Format("2006-01-02"),
			Price:       e.UnitPrice.StringFixed(2),
			Operation:   string(e.OperationKind),
			ModifiedBy:  e.ModifiedBy,
			Deleted:     e.IsDeleted,
		})
	}

	var buf bytes.Buffer
	if err := priceHistoryTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
