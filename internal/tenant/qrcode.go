package tenant

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const externalQRBase = "https://api.qrserver.com/v1/create-qr-code/"

// GuestLink builds the guest menu URL for one table, preserving the r/t query
// parameter convention of the guest pages.
func GuestLink(baseURL, restaurantID, tableID string) string {
	v := url.Values{}
	v.Set("r", restaurantID)
	v.Set("t", tableID)
	return strings.TrimRight(baseURL, "/") + "/karte?" + v.Encode()
}

// ExternalQRURL returns the third-party QR image URL for a guest link. This is
// a plain GET against a public image service, not a protocol we implement.
func ExternalQRURL(link string, size int) string {
	if size <= 0 {
		size = 300
	}
	v := url.Values{}
	v.Set("size", fmt.Sprintf("%dx%d", size, size))
	v.Set("data", link)
	return externalQRBase + "?" + v.Encode()
}

// QRCodePNG renders a guest link as a PNG locally, for deployments that do not
// want to depend on the external image service.
func QRCodePNG(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("cannot encode qr code: %w", err)
	}
	return png, nil
}

// TableQR describes one table's QR material as shown on the superadmin page.
type TableQR struct {
	Table    string `json:"table"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url"`
}

// TableQRs builds the QR listing for all of a restaurant's tables.
func TableQRs(baseURL string, rest *Restaurant) []TableQR {
	tables := rest.Tables()
	out := make([]TableQR, len(tables))
	for i, table := range tables {
		link := GuestLink(baseURL, rest.ID, table)
		out[i] = TableQR{
			Table:    table,
			Link:     link,
			ImageURL: ExternalQRURL(link, 300),
		}
	}
	return out
}
