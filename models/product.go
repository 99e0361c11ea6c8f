package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

type Product struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      int       `gorm:"not null;uniqueIndex:idx_products_user_name" json:"-"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_products_user_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImagePath   string    `gorm:"size:255" json:"image_path"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	Threshold   int       `gorm:"not null;default:0" json:"threshold"`
	IsLowStock  bool      `gorm:"-" json:"is_low_stock"`
	Items       []Item    `gorm:"foreignKey:ProductId" json:"items"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	ImagePath   string `json:"-"`
}

// ComputeLowStock derives the alert flag. A zero threshold means
// alerting is disabled for the product, not "always in stock".
func (p *Product) ComputeLowStock() {
	p.IsLowStock = p.Threshold > 0 && p.Quantity < p.Threshold
}

func (input *NewProduct) validate(ctx context.Context, userId int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.NewValidationError("product name is required")
	}
	if len(input.Name) > 255 {
		return utils.NewValidationError("product name too long (max 255 characters)")
	}
	if input.Threshold < 0 {
		return utils.NewValidationError("threshold cannot be negative")
	}
	if err := utils.ValidateUnique[Product](ctx, "user_id = ? AND name = ?", userId, input.Name); err != nil {
		return err
	}
	return nil
}

// CreateProduct persists a catalog entry for the caller. Quantity always
// starts at 0; only receive/dispatch may move it.
func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	product := Product{
		UserId:      userId,
		Name:        input.Name,
		Description: input.Description,
		Threshold:   input.Threshold,
		ImagePath:   input.ImagePath,
		Quantity:    0,
		Items:       []Item{},
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		if isDuplicateEntry(err) {
			return nil, utils.ErrorDuplicateRecord
		}
		return nil, err
	}
	product.ComputeLowStock()
	return &product, nil
}

// ListProducts returns the caller's products with nested items, newest first.
func ListProducts(ctx context.Context) ([]*Product, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var products []*Product
	if err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Preload("Items").
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}

	for _, product := range products {
		product.ComputeLowStock()
		if product.Items == nil {
			product.Items = []Item{}
		}
	}
	return products, nil
}

// GetProduct fetches one product owned by the caller. Products of other
// owners report not-found, never forbidden.
func GetProduct(ctx context.Context, productId int) (*Product, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", productId, userId).
		Preload("Items").
		Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	product.ComputeLowStock()
	if product.Items == nil {
		product.Items = []Item{}
	}
	return &product, nil
}

type StockAlert struct {
	ProductId       int          `json:"product_id"`
	ProductName     string       `json:"product_name"`
	CurrentQuantity int          `json:"current_quantity"`
	Threshold       int          `json:"threshold"`
	Urgency         AlertUrgency `json:"urgency"`
}

// GetLowStockAlerts lists products below their alert threshold, most
// urgent (lowest quantity) first.
func GetLowStockAlerts(ctx context.Context) ([]*StockAlert, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var products []*Product
	if err := db.WithContext(ctx).
		Where("user_id = ? AND threshold > 0 AND quantity < threshold", userId).
		Order("quantity ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}

	alerts := make([]*StockAlert, 0, len(products))
	for _, product := range products {
		urgency := AlertUrgencyWarning
		if product.Quantity == 0 {
			urgency = AlertUrgencyCritical
		}
		alerts = append(alerts, &StockAlert{
			ProductId:       product.ID,
			ProductName:     product.Name,
			CurrentQuantity: product.Quantity,
			Threshold:       product.Threshold,
			Urgency:         urgency,
		})
	}
	return alerts, nil
}

type DashboardStats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

func GetDashboardStats(ctx context.Context) (*DashboardStats, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	sql := `
SELECT
    COUNT(*) AS total_products,
    COALESCE(SUM(quantity), 0) AS total_stock,
    COALESCE(SUM(threshold > 0 AND quantity < threshold), 0) AS low_stock_count,
    COALESCE(SUM(quantity = 0), 0) AS out_of_stock_count
FROM products
WHERE user_id = ?
`

	var stats DashboardStats
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, userId).Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
