package controllers

import (
	"net/http"
	"time"

	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/sse"
	"github.com/shopspring/decimal"
)

type OrderController struct {
	orders *services.OrderService
	broker *services.OrderEventBroker
}

func NewOrderController(svc *services.OrderService, broker *services.OrderEventBroker) *OrderController {
	return &OrderController{orders: svc, broker: broker}
}

type placeOrderRequest struct {
	Items           []services.PlaceOrderItem `json:"items"`
	ShippingAddress string                    `json:"shipping_address" validate:"required,max=500"`
	ShippingPhone   string                    `json:"shipping_phone" validate:"nullable,max=32"`
	ShippingCost    string                    `json:"shipping_cost" validate:"nullable,numeric"`
}

// Store places an order. Guests may check out; authenticated callers
// get the order attached to their account.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	shipping := decimal.Zero
	if req.ShippingCost != "" {
		d, err := decimal.NewFromString(req.ShippingCost)
		if err != nil {
			response.ValidationError(w, map[string]string{"shipping_cost": "The shipping cost must be a number."})
			return
		}
		shipping = d
	}

	in := services.PlaceOrderInput{
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		ShippingPhone:   req.ShippingPhone,
		ShippingCost:    shipping,
	}
	if id, ok := identityOptional(r); ok {
		uid := id.UserID
		in.BuyerID = &uid
	}

	order, err := c.orders.Place(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	orderID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	order, err := c.orders.Get(id, orderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// Index lists the caller's orders as buyer.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	orders, p, err := c.orders.ListMine(id, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, orders, p)
}

// Sales lists orders containing the caller's products.
func (c *OrderController) Sales(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	orders, p, err := c.orders.ListSales(id, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, orders, p)
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	orderID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	order, err := c.orders.Cancel(r.Context(), id, orderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	orderID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	order, err := c.orders.Refund(r.Context(), id, orderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,in=PENDING,PROCESSING,COMPLETED,CANCELED,REFUNDED"`
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	orderID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, orderID, req.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// Events streams an order's lifecycle over SSE until the client leaves.
func (c *OrderController) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	orderID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	// Visibility check doubles as a 404 for unknown orders.
	if _, err := c.orders.Get(id, orderID); err != nil {
		fail(w, r, err)
		return
	}

	stream := sse.New(w, r)
	events, cancel := c.broker.Subscribe(orderID)
	defer cancel()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			stream.Comment("keepalive")
			if stream.IsClosed() {
				return
			}
		case ev := <-events:
			if err := stream.Send(ev.Event, ev); err != nil {
				return
			}
		}
	}
}
