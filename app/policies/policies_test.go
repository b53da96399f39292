package policies

import (
	"testing"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestCanWriteProduct(t *testing.T) {
	product := models.Product{SellerID: 7}

	owner := middleware.Identity{UserID: 1, Role: "user", SellerID: uintPtr(7)}
	other := middleware.Identity{UserID: 2, Role: "user", SellerID: uintPtr(8)}
	buyer := middleware.Identity{UserID: 3, Role: "user"}
	admin := middleware.Identity{UserID: 4, Role: "admin"}

	assert.True(t, CanWriteProduct(owner, product))
	assert.False(t, CanWriteProduct(other, product))
	assert.False(t, CanWriteProduct(buyer, product))
	assert.True(t, CanWriteProduct(admin, product))
}

func TestCanAccessOrder(t *testing.T) {
	order := models.Order{BuyerID: uintPtr(10)}

	buyer := middleware.Identity{UserID: 10, Role: "user"}
	stranger := middleware.Identity{UserID: 11, Role: "user"}
	seller := middleware.Identity{UserID: 12, Role: "user", SellerID: uintPtr(3)}
	admin := middleware.Identity{UserID: 13, Role: "admin"}

	assert.True(t, CanAccessOrder(buyer, order, false))
	assert.False(t, CanAccessOrder(stranger, order, false))
	assert.True(t, CanAccessOrder(seller, order, true))
	assert.False(t, CanAccessOrder(seller, order, false))
	assert.True(t, CanAccessOrder(admin, order, false))

	guest := models.Order{}
	assert.False(t, CanAccessOrder(buyer, guest, false))
	assert.True(t, CanAccessOrder(admin, guest, false))
}

func TestCanCancelOrder(t *testing.T) {
	order := models.Order{BuyerID: uintPtr(10)}

	assert.True(t, CanCancelOrder(middleware.Identity{UserID: 10}, order))
	assert.False(t, CanCancelOrder(middleware.Identity{UserID: 11}, order))
	assert.False(t, CanCancelOrder(middleware.Identity{UserID: 10}, models.Order{}))
}

func TestCanWriteReview(t *testing.T) {
	review := models.ProductReview{UserID: 5}

	assert.True(t, CanWriteReview(middleware.Identity{UserID: 5}, review))
	assert.False(t, CanWriteReview(middleware.Identity{UserID: 6}, review))
	assert.True(t, CanWriteReview(middleware.Identity{UserID: 6, Role: "admin"}, review))
}

func TestCanAccessChat(t *testing.T) {
	chat := models.Chat{User1ID: 1, User2ID: 2}

	assert.True(t, CanAccessChat(middleware.Identity{UserID: 1}, chat))
	assert.True(t, CanAccessChat(middleware.Identity{UserID: 2}, chat))
	assert.False(t, CanAccessChat(middleware.Identity{UserID: 3}, chat))
}
