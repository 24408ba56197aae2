// Package qr turns a checkout quote into something a payer can scan.
package qr

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// Request describes one quote to render.
type Request struct {
	Payload    string
	MerchantID string
	Amount     decimal.Decimal
}

// Image is either inline bytes or a URL the client fetches itself.
type Image struct {
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
	URL         string `json:"url,omitempty"`
}

// Inline reports whether the image bytes are carried in Data.
func (i Image) Inline() bool {
	return len(i.Data) > 0
}

type Renderer interface {
	Render(ctx context.Context, req Request) (Image, error)
}

// PNGRenderer encodes the payload into a PNG QR code.
type PNGRenderer struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func NewPNGRenderer(size int) PNGRenderer {
	return PNGRenderer{Size: size, Level: qrcode.Medium}
}

func (r PNGRenderer) Render(_ context.Context, req Request) (Image, error) {
	if req.Payload == "" {
		return Image{}, fmt.Errorf("qr: empty payload")
	}
	png, err := qrcode.Encode(req.Payload, r.Level, r.Size)
	if err != nil {
		return Image{}, fmt.Errorf("qr encode failed: %w", err)
	}
	return Image{ContentType: "image/png", Data: png}, nil
}

// URLRenderer points at a hosted PromptPay QR service that builds the
// image from merchant id and amount, e.g. https://promptpay.io/0837951132/3950.00.png.
type URLRenderer struct {
	BaseURL string
}

func NewURLRenderer(baseURL string) URLRenderer {
	return URLRenderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (r URLRenderer) Render(_ context.Context, req Request) (Image, error) {
	id := strings.NewReplacer(" ", "", "-", "").Replace(req.MerchantID)
	if id == "" {
		return Image{}, fmt.Errorf("qr: empty merchant id")
	}
	return Image{
		ContentType: "image/png",
		URL:         fmt.Sprintf("%s/%s/%s.png", r.BaseURL, id, req.Amount.StringFixed(2)),
	}, nil
}
