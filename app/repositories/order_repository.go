package repositories

import (
	"time"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/pagination"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for the order ledger.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// FindByID loads an order with its items and their product references.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Items.Product").First(&order, id).Error
	return order, err
}

// ByBuyer returns a buyer's orders, newest first, paginated.
func (r *OrderRepository) ByBuyer(buyerID uint, page, perPage int) ([]models.Order, pagination.Pagination, error) {
	query := r.db.Model(&models.Order{}).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at desc")

	var orders []models.Order
	p, err := pagination.Paginate(query, page, perPage, &orders)
	return orders, p, err
}

// BySeller returns orders containing at least one of the seller's
// products, newest first, paginated.
func (r *OrderRepository) BySeller(sellerID uint, page, perPage int) ([]models.Order, pagination.Pagination, error) {
	query := r.db.Model(&models.Order{}).
		Preload("Items").
		Where("id IN (?)", r.db.Model(&models.OrderItem{}).
			Select("order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("products.seller_id = ?", sellerID),
		).
		Order("created_at desc")

	var orders []models.Order
	p, err := pagination.Paginate(query, page, perPage, &orders)
	return orders, p, err
}

// Create persists a new order header.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// Update persists changes to an existing order.
func (r *OrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// UpdateStatus writes only the status column.
func (r *OrderRepository) UpdateStatus(order *models.Order, status string) error {
	order.Status = status
	return r.db.Model(order).Update("status", status).Error
}

// AddItem attaches an item to an order. If the order is already CANCELED
// or REFUNDED the item's quantity is restored to the product immediately,
// an explicit compensating step for out-of-order writes.
func (r *OrderRepository) AddItem(order *models.Order, item *models.OrderItem) error {
	item.OrderID = order.ID
	if err := r.db.Create(item).Error; err != nil {
		return err
	}

	if models.TerminalStatus(order.Status) && item.ProductID != nil {
		return r.db.Model(&models.Product{}).
			Where("id = ?", *item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
	}
	return nil
}

// StalePending returns PENDING orders created before the cutoff. Used by
// the expiry task.
func (r *OrderRepository) StalePending(cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("status = ? AND created_at < ?", models.OrderPending, cutoff).
		Find(&orders).Error
	return orders, err
}

// HasSellerItem reports whether any item of the order references a
// product owned by the given seller.
func (r *OrderRepository) HasSellerItem(orderID, sellerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ? AND products.seller_id = ?", orderID, sellerID).
		Count(&count).Error
	return count > 0, err
}
