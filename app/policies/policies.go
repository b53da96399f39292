// Package policies holds the pure authorization predicates. Every
// mutating workflow calls one of these before touching state; HTTP
// middleware only establishes identity, it never decides ownership.
package policies

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/middleware"
)

// CanWriteProduct allows the owning seller and admins.
func CanWriteProduct(id middleware.Identity, product models.Product) bool {
	if id.IsAdmin() {
		return true
	}
	return id.SellerID != nil && *id.SellerID == product.SellerID
}

// CanAccessOrder allows the buyer, a seller with at least one item in
// the order, and admins. sellerHasItem is resolved by the caller so the
// predicate stays free of database access.
func CanAccessOrder(id middleware.Identity, order models.Order, sellerHasItem bool) bool {
	if id.IsAdmin() {
		return true
	}
	if order.BuyerID != nil && *order.BuyerID == id.UserID {
		return true
	}
	return id.SellerID != nil && sellerHasItem
}

// CanCancelOrder allows only the buyer. Sellers cannot cancel on a
// buyer's behalf; admins act through the status endpoint instead.
func CanCancelOrder(id middleware.Identity, order models.Order) bool {
	return order.BuyerID != nil && *order.BuyerID == id.UserID
}

// CanWriteReview allows the author and admins.
func CanWriteReview(id middleware.Identity, review models.ProductReview) bool {
	if id.IsAdmin() {
		return true
	}
	return review.UserID == id.UserID
}

// CanModerateReview allows admins only.
func CanModerateReview(id middleware.Identity) bool {
	return id.IsAdmin()
}

// CanAccessChat allows the two participants.
func CanAccessChat(id middleware.Identity, chat models.Chat) bool {
	return chat.Involves(id.UserID)
}
