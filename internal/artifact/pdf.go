package artifact

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"quoteguard/internal/invoice/canonical"
)

// PDFRenderer renders invoice PDFs via headless Chromium. If Chromium is
// unavailable the render fails; the dispatcher logs and moves on.
type PDFRenderer struct {
	dir          string
	baseURL      string
	chromiumPath string
	timeout      time.Duration
}

func NewPDFRenderer(dir, baseURL, chromiumPath string, timeout time.Duration) *PDFRenderer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PDFRenderer{dir: dir, baseURL: baseURL, chromiumPath: chromiumPath, timeout: timeout}
}

func (r *PDFRenderer) Render(ctx context.Context, job Job) error {
	html, err := r.renderHTML(job)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.chromiumPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.chromiumPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, r.timeout)
	defer cancelTimeout()

	var pdfBuf []byte
	dataURL := "data:text/html," + url.PathEscape(html)
	err = chromedp.Run(runCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, perr := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if perr == nil {
				pdfBuf = buf
			}
			return perr
		}),
	)
	if err != nil {
		return fmt.Errorf("chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(r.dir, "invoice-"+job.Record.PublicID.String()+".pdf")
	if err := os.WriteFile(path, pdfBuf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

var pdfTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; margin-top: 1em; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
.totals { margin-top: 1em; text-align: right; }
.verify { margin-top: 2em; font-size: 0.8em; color: #555; }
</style></head>
<body>
<h1>Invoice {{.Number}}</h1>
<p>From: {{.OwnerName}}<br>To: {{.ClientName}}</p>
<p>Issued: {{.IssueDate}} &mdash; Due: {{.DueDate}}</p>
<table>
<tr><th>Product</th><th>Qty</th><th>Unit price</th></tr>
{{range .Items}}<tr><td>{{.Product}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td></tr>{{end}}
</table>
<div class="totals">
Subtotal: {{.Subtotal}} {{.Currency}}<br>
Tax: {{.Tax}} {{.Currency}}<br>
<strong>Total: {{.Total}} {{.Currency}}</strong>
</div>
<p class="verify">Verify this invoice at {{.VerifyURL}}</p>
</body>
</html>`))

type pdfItem struct {
	Product   string
	Quantity  int
	UnitPrice string
}

type pdfData struct {
	Number     string
	OwnerName  string
	ClientName string
	IssueDate  string
	DueDate    string
	Currency   string
	Subtotal   string
	Tax        string
	Total      string
	Items      []pdfItem
	VerifyURL  string
}

func (r *PDFRenderer) renderHTML(job Job) (string, error) {
	rec := job.Record
	data := pdfData{
		Number:     rec.Number,
		OwnerName:  job.OwnerName,
		ClientName: job.ClientName,
		IssueDate:  rec.IssueDate.Format("2006-01-02"),
		DueDate:    rec.DueDate.Format("2006-01-02"),
		Currency:   rec.Currency,
		Subtotal:   canonical.Money(rec.Subtotal),
		Tax:        canonical.Money(rec.Tax),
		Total:      canonical.Money(rec.Total),
		VerifyURL:  VerifyURL(r.baseURL, rec.PublicID),
	}
	for _, item := range rec.Items {
		data.Items = append(data.Items, pdfItem{
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: canonical.Money(item.UnitPrice),
		})
	}

	var buf bytes.Buffer
	if err := pdfTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
