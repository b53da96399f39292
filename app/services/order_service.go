package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/policies"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/collection"
	"github.com/mkamalov/bazar/pkg/event"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/metrics"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order lifecycle events. All fire after the enclosing transaction has
// committed, never inside it.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderCanceled      = "order.canceled"
	EventOrderRefunded      = "order.refunded"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload carried by every order lifecycle event.
// Event is filled in by the broker when fanning out to subscribers.
type OrderEvent struct {
	Event       string `json:"event,omitempty"`
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	BuyerID     *uint  `json:"buyer_id,omitempty"`
	Status      string `json:"status"`
	Total       string `json:"total"`
}

// PlaceOrderItem is one requested line of a new order.
type PlaceOrderItem struct {
	ProductID uint `json:"product_id" validate:"required,integer,gt=0"`
	Quantity  uint `json:"quantity" validate:"required,integer,gt=0"`
}

// PlaceOrderInput is the checkout request. BuyerID is nil for guest
// checkout.
type PlaceOrderInput struct {
	BuyerID         *uint
	Items           []PlaceOrderItem
	ShippingAddress string
	ShippingPhone   string
	ShippingCost    decimal.Decimal
}

type OrderService struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:       db,
		orders:   repositories.NewOrderRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// Place runs the whole checkout as one transaction: order insert, item
// inserts with price snapshots, and conditional stock decrements. Any
// failure rolls everything back, so a rejected order never leaves a
// partial decrement behind.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (models.Order, error) {
	if err := validatePlaceInput(in); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		BuyerID:         in.BuyerID,
		OrderNumber:     generateOrderNumber(),
		Status:          models.OrderPending,
		ShippingCost:    in.ShippingCost,
		ShippingAddress: in.ShippingAddress,
		ShippingPhone:   in.ShippingPhone,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		subtotal := decimal.Zero

		for _, line := range in.Items {
			product, err := products.FindByID(line.ProductID)
			if err != nil {
				return translateNotFound(err)
			}
			if !product.IsActive {
				return NewValidationError("items", "product is not available")
			}

			if err := DecrementStock(tx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					metrics.StockConflicts.Inc()
				}
				return err
			}

			productID := product.ID
			order.Items = append(order.Items, models.OrderItem{
				ProductID: &productID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.Subtotal = subtotal
		order.TotalPrice = subtotal.Add(order.ShippingCost)

		return tx.Create(&order).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrdersPlaced.Inc()
	s.fire(ctx, EventOrderPlaced, order)

	logger.Info("order placed",
		"order_number", order.OrderNumber,
		"items", len(order.Items),
		"total", order.TotalPrice.String())

	return order, nil
}

// Get loads an order visible to the caller: its buyer, a seller with at
// least one item in it, or an admin.
func (s *OrderService) Get(id middleware.Identity, orderID uint) (models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return models.Order{}, translateNotFound(err)
	}

	sellerHasItem := false
	if id.SellerID != nil {
		sellerHasItem, err = s.orders.HasSellerItem(order.ID, *id.SellerID)
		if err != nil {
			return models.Order{}, err
		}
	}
	if !policies.CanAccessOrder(id, order, sellerHasItem) {
		return models.Order{}, ErrForbidden
	}
	return order, nil
}

// ListMine returns the caller's orders as buyer.
func (s *OrderService) ListMine(id middleware.Identity, page, perPage int) ([]models.Order, pagination.Pagination, error) {
	return s.orders.ByBuyer(id.UserID, page, perPage)
}

// ListSales returns orders containing the caller's products.
func (s *OrderService) ListSales(id middleware.Identity, page, perPage int) ([]models.Order, pagination.Pagination, error) {
	if id.SellerID == nil {
		return nil, pagination.Pagination{}, ErrForbidden
	}
	return s.orders.BySeller(*id.SellerID, page, perPage)
}

// Cancel reverts a PENDING or PROCESSING order. Stock is restored for
// every item whose product still exists; the status flips to CANCELED
// in the same transaction.
func (s *OrderService) Cancel(ctx context.Context, id middleware.Identity, orderID uint) (models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return models.Order{}, translateNotFound(err)
	}
	if !policies.CanCancelOrder(id, order) && !id.IsAdmin() {
		return models.Order{}, ErrForbidden
	}
	if !models.CancelableStatus(order.Status) {
		return models.Order{}, ErrInvalidState
	}

	if err := s.cancelTx(&order); err != nil {
		return models.Order{}, err
	}

	metrics.OrderTransitions.WithLabelValues(models.OrderCanceled).Inc()
	s.fire(ctx, EventOrderCanceled, order)
	return order, nil
}

// Refund marks a COMPLETED order as REFUNDED. Stock is not restored:
// refunded goods are not assumed sellable.
func (s *OrderService) Refund(ctx context.Context, id middleware.Identity, orderID uint) (models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return models.Order{}, translateNotFound(err)
	}
	if !policies.CanCancelOrder(id, order) && !id.IsAdmin() {
		return models.Order{}, ErrForbidden
	}
	if !models.RefundableStatus(order.Status) {
		return models.Order{}, ErrInvalidState
	}

	if err := s.orders.UpdateStatus(&order, models.OrderRefunded); err != nil {
		return models.Order{}, err
	}

	metrics.OrderTransitions.WithLabelValues(models.OrderRefunded).Inc()
	s.fire(ctx, EventOrderRefunded, order)
	return order, nil
}

// UpdateStatus moves an order to the given status. Only admins and
// sellers with at least one item in the order may call it, and terminal
// orders are immutable.
func (s *OrderService) UpdateStatus(ctx context.Context, id middleware.Identity, orderID uint, status string) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, NewValidationError("status", "The selected status is invalid.")
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return models.Order{}, translateNotFound(err)
	}

	if !id.IsAdmin() {
		if id.SellerID == nil {
			return models.Order{}, ErrForbidden
		}
		ok, err := s.orders.HasSellerItem(order.ID, *id.SellerID)
		if err != nil {
			return models.Order{}, err
		}
		if !ok {
			return models.Order{}, ErrForbidden
		}
	}

	if models.TerminalStatus(order.Status) {
		return models.Order{}, ErrInvalidState
	}
	if order.Status == status {
		return order, nil
	}

	// Cancellation through this path still restores stock.
	if status == models.OrderCanceled {
		if err := s.cancelTx(&order); err != nil {
			return models.Order{}, err
		}
	} else {
		now := time.Now()
		switch status {
		case models.OrderProcessing:
			order.ShippedAt = &now
		case models.OrderCompleted:
			order.DeliveredAt = &now
		}
		order.Status = status
		if err := s.orders.Update(&order); err != nil {
			return models.Order{}, err
		}
	}

	metrics.OrderTransitions.WithLabelValues(status).Inc()
	s.fire(ctx, EventOrderStatusChanged, order)
	return order, nil
}

// ExpirePending cancels PENDING orders older than ttl. Run from the
// scheduler; reuses the cancellation path so stock always comes back.
func (s *OrderService) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.orders.StalePending(time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if err := s.cancelTx(&stale[i]); err != nil {
			logger.Error("order expiry failed", "order_number", stale[i].OrderNumber, "error", err)
			continue
		}
		metrics.OrderTransitions.WithLabelValues(models.OrderCanceled).Inc()
		s.fire(ctx, EventOrderCanceled, stale[i])
		expired++
	}
	return expired, nil
}

// cancelTx restores stock and flips the order to CANCELED atomically.
func (s *OrderService) cancelTx(order *models.Order) error {
	restorable := collection.Filter(order.Items, func(item models.OrderItem) bool {
		return item.ProductID != nil
	})
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range restorable {
			if err := RestoreStock(tx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orders.WithTx(tx).UpdateStatus(order, models.OrderCanceled)
	})
}

func (s *OrderService) fire(_ context.Context, name string, order models.Order) {
	event.FireAsync(name, OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		Status:      order.Status,
		Total:       order.TotalPrice.String(),
	})
}

func validatePlaceInput(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return NewValidationError("items", "The items field is required.")
	}
	for _, line := range in.Items {
		if line.ProductID == 0 || line.Quantity == 0 {
			return NewValidationError("items", "Each item needs a product and a positive quantity.")
		}
	}
	distinct := collection.Unique(in.Items, func(line PlaceOrderItem) uint { return line.ProductID })
	if len(distinct) != len(in.Items) {
		return NewValidationError("items", "Duplicate product in order.")
	}
	if in.ShippingCost.IsNegative() {
		return NewValidationError("shipping_cost", "The shipping cost must be at least 0.")
	}
	if in.ShippingAddress == "" {
		return NewValidationError("shipping_address", "The shipping address field is required.")
	}
	return nil
}

// generateOrderNumber returns ORD-<12 hex chars> from crypto/rand.
func generateOrderNumber() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return "ORD-" + hex.EncodeToString(buf)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
