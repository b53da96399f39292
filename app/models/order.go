package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderCompleted  = "COMPLETED"
	OrderCanceled   = "CANCELED"
	OrderRefunded   = "REFUNDED"
)

// OrderStatuses lists every declared status value.
var OrderStatuses = []string{
	OrderPending, OrderProcessing, OrderCompleted, OrderCanceled, OrderRefunded,
}

// ValidOrderStatus reports whether s is a declared status value.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CancelableStatuses are the states a buyer may cancel from.
var CancelableStatuses = []string{OrderPending, OrderProcessing}

// RefundableStatuses are the states a buyer may refund from.
var RefundableStatuses = []string{OrderCompleted}

// CancelableStatus reports whether a buyer may cancel from s.
func CancelableStatus(s string) bool { return statusIn(s, CancelableStatuses) }

// RefundableStatus reports whether a buyer may refund from s.
func RefundableStatus(s string) bool { return statusIn(s, RefundableStatuses) }

func statusIn(s string, list []string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether no further transitions are expected
// (COMPLETED may still move to REFUNDED).
func TerminalStatus(s string) bool {
	return s == OrderCanceled || s == OrderRefunded
}

// Order is one purchase, owning its items. BuyerID goes nil if the buyer
// account is deleted; the ledger row survives.
type Order struct {
	gorm.Model
	BuyerID         *uint           `gorm:"index" json:"buyer_id,omitempty"`
	OrderNumber     string          `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	Status          string          `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_cost"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	ShippingPhone   string          `gorm:"size:32;not null" json:"shipping_phone"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is one line of an order. Price is the product price at order
// time and never changes afterwards; ProductID goes nil if the product is
// deleted, preserving the historical snapshot.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"not null;index;uniqueIndex:idx_order_product" json:"order_id"`
	ProductID *uint           `gorm:"uniqueIndex:idx_order_product" json:"product_id,omitempty"`
	Quantity  uint            `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Product *Product `gorm:"constraint:OnDelete:SET NULL" json:"product,omitempty"`
}

// LineTotal is price × quantity for this item.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
