package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Barcode tokens are the wire contract for physical items:
// "<ownerId>|<productId>|<itemInstanceId>", pipe-delimited, exactly 3
// fields. The instance id is an opaque random string minted at receive
// time; it is NOT the database row id.

type BarcodeParts struct {
	UserId         int
	ProductId      int
	ItemInstanceId string
}

func GenerateBarcodeData(userId int, productId int, itemInstanceId string) string {
	return fmt.Sprintf("%d|%d|%s", userId, productId, itemInstanceId)
}

func ParseBarcodeData(barcodeData string) (*BarcodeParts, error) {
	parts := strings.Split(barcodeData, "|")
	if len(parts) != 3 {
		return nil, ErrorInvalidBarcode
	}
	userId, err := strconv.Atoi(parts[0])
	if err != nil || userId < 0 {
		return nil, ErrorInvalidBarcode
	}
	productId, err := strconv.Atoi(parts[1])
	if err != nil || productId < 0 {
		return nil, ErrorInvalidBarcode
	}
	if parts[2] == "" {
		return nil, ErrorInvalidBarcode
	}
	return &BarcodeParts{
		UserId:         userId,
		ProductId:      productId,
		ItemInstanceId: parts[2],
	}, nil
}
