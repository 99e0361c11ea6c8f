package utils

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// GenerateQRCode renders a barcode token into a base64-encoded PNG.
func GenerateQRCode(data string) (string, error) {
	png, err := qrcode.Encode(data, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
