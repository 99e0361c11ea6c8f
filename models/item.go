package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Item struct {
	ID           int        `gorm:"primary_key" json:"id"`
	ProductId    int        `gorm:"index;not null" json:"product_id"`
	UserId       int        `gorm:"index;not null" json:"-"`
	Status       ItemStatus `gorm:"type:enum('received','dispatched');default:received" json:"status"`
	Barcode      string     `gorm:"uniqueIndex;size:100;not null" json:"barcode"`
	ReceivedAt   time.Time  `gorm:"autoCreateTime" json:"received_at"`
	DispatchedAt *time.Time `json:"dispatched_at"`
}

type ReceiveResult struct {
	ItemId      int    `json:"item_id"`
	BarcodeData string `json:"barcode_data"`
	QRImage     string `json:"qr_image"`
	ProductName string `json:"product_name"`
	NewQuantity int    `json:"new_quantity"`
}

type DispatchResult struct {
	ProductName string `json:"product_name"`
	NewQuantity int    `json:"new_quantity"`
}

// obtainProductLock takes a best-effort redis lock around same-product
// mutations to shorten row-lock contention windows. Correctness never
// depends on it: the FOR UPDATE lock on the product row is authoritative,
// and everything proceeds when redis is absent.
func obtainProductLock(ctx context.Context, productId int) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("lock:product:%d", productId), 10*time.Second, nil)
	if err != nil {
		return nil
	}
	return lock
}

func releaseProductLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(ctx); err != nil {
		config.GetLogger().Warn("failed to release product lock: " + err.Error())
	}
}

// ReceiveItem books one physical unit into stock: it mints a fresh
// barcode, inserts the item in `received` state and increments the
// product quantity, all inside one transaction holding the product row
// lock. Both writes commit or roll back as a unit.
func ReceiveItem(ctx context.Context, productId int) (*ReceiveResult, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	// The instance id is a random opaque identifier, deliberately not the
	// database row id; the barcode stays valid no matter how rows migrate.
	barcodeData := utils.GenerateBarcodeData(userId, productId, uuid.NewString())
	qrImage, err := utils.GenerateQRCode(barcodeData)
	if err != nil {
		return nil, err
	}

	lock := obtainProductLock(ctx, productId)
	defer releaseProductLock(ctx, lock)

	db := config.GetDB()
	var result ReceiveResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", productId, userId).
			Take(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		item := Item{
			ProductId: productId,
			UserId:    userId,
			Status:    ItemStatusReceived,
			Barcode:   barcodeData,
		}
		// A barcode unique-index collision here is a storage-level
		// failure, not a caller mistake; no conflict translation.
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		if err := tx.Model(&Product{}).Where("id = ?", productId).
			UpdateColumn("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
			return err
		}

		result = ReceiveResult{
			ItemId:      item.ID,
			BarcodeData: barcodeData,
			QRImage:     qrImage,
			ProductName: product.Name,
			NewQuantity: product.Quantity + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// DispatchItem moves one unit out of stock by its barcode. The status
// flip and the quantity decrement happen inside one transaction holding
// the product row lock, so the stock check and the decrement cannot be
// split by a concurrent dispatch. Not idempotent: re-dispatching a
// dispatched item is a conflict.
func DispatchItem(ctx context.Context, barcodeData string) (*DispatchResult, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	// Malformed tokens and tokens minted for another owner fail the same
	// way; a caller learns nothing about foreign barcodes.
	parts, err := utils.ParseBarcodeData(barcodeData)
	if err != nil {
		return nil, utils.ErrorInvalidBarcode
	}
	if parts.UserId != userId {
		return nil, utils.ErrorInvalidBarcode
	}

	lock := obtainProductLock(ctx, parts.ProductId)
	defer releaseProductLock(ctx, lock)

	db := config.GetDB()
	var result DispatchResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", parts.ProductId, userId).
			Take(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		var item Item
		if err := tx.Where("barcode = ? AND user_id = ?", barcodeData, userId).
			Take(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		if !item.Status.CanDispatch() {
			return utils.ErrorAlreadyDispatched
		}

		// Guard against quantity/item-count drift: never let the counter
		// go negative even if an item row claims to be dispatchable.
		if product.Quantity <= 0 {
			return utils.ErrorOutOfStock
		}

		now := time.Now()
		if err := tx.Model(&Item{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"status":        ItemStatusDispatched,
				"dispatched_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&Product{}).Where("id = ?", product.ID).
			UpdateColumn("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
			return err
		}

		result = DispatchResult{
			ProductName: product.Name,
			NewQuantity: product.Quantity - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
