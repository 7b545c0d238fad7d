package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// QRRenderer writes a PNG QR code encoding only the verification URL for the
// record's public identifier.
type QRRenderer struct {
	baseURL string
	dir     string
}

func NewQRRenderer(baseURL, dir string) *QRRenderer {
	return &QRRenderer{baseURL: baseURL, dir: dir}
}

func (r *QRRenderer) Render(_ context.Context, job Job) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(r.dir, "invoice-"+job.Record.PublicID.String()+".png")
	if err := qrcode.WriteFile(VerifyURL(r.baseURL, job.Record.PublicID), qrcode.Medium, 256, path); err != nil {
		return fmt.Errorf("write qr code: %w", err)
	}
	return nil
}
