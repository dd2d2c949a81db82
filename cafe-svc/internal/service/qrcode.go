package service

import (
	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator renders payment URIs as PNG QR codes.
type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(uri string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}
