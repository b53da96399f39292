package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.SellerProfile{},
		&models.Category{}, &models.Product{}, &models.ProductImage{},
		&models.Order{}, &models.OrderItem{},
		&models.ProductReview{},
		&models.Chat{}, &models.ChatMessage{},
	))
	return db
}

type fixtures struct {
	buyer    models.User
	seller   models.User
	profile  models.SellerProfile
	buyerID  middleware.Identity
	sellerID middleware.Identity
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	buyer := models.User{Username: "buyer-" + t.Name(), Password: "x", Role: "user"}
	require.NoError(t, db.Create(&buyer).Error)

	seller := models.User{Username: "seller-" + t.Name(), Password: "x", Role: "user"}
	require.NoError(t, db.Create(&seller).Error)

	profile := models.SellerProfile{UserID: seller.ID, ShopName: "shop"}
	require.NoError(t, db.Create(&profile).Error)

	return fixtures{
		buyer:    buyer,
		seller:   seller,
		profile:  profile,
		buyerID:  middleware.Identity{UserID: buyer.ID, Role: "user"},
		sellerID: middleware.Identity{UserID: seller.ID, Role: "user", SellerID: &profile.ID},
	}
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uint, price string, qty uint) models.Product {
	t.Helper()

	p := models.Product{
		SellerID: sellerID,
		Title:    "product",
		Slug:     fmt.Sprintf("p-%s-%d", t.Name(), time.Now().UnixNano()),
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		IsActive: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func productQuantity(t *testing.T, db *gorm.DB, id uint) uint {
	t.Helper()

	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}

func TestPlaceOrderComputesTotalsAndDecrementsStock(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: "1 Market St",
		ShippingCost:    decimal.RequireFromString("2"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("30")), "subtotal %s", order.Subtotal)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("32")), "total %s", order.TotalPrice)
	assert.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(product.Price))
	assert.Regexp(t, `^ORD-[0-9a-f]{12}$`, order.OrderNumber)
	assert.Equal(t, uint(2), productQuantity(t, db, product.ID))
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	plenty := seedProduct(t, db, fx.profile.ID, "10", 5)
	scarce := seedProduct(t, db, fx.profile.ID, "20", 1)
	svc := NewOrderService(db)

	_, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID: &fx.buyer.ID,
		Items: []PlaceOrderItem{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 2},
		},
		ShippingAddress: "1 Market St",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The first line's decrement must have been rolled back with it.
	assert.Equal(t, uint(5), productQuantity(t, db, plenty.ID))
	assert.Equal(t, uint(1), productQuantity(t, db, scarce.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderUnknownProductIsNotFound(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	_, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID: &fx.buyer.ID,
		Items: []PlaceOrderItem{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID + 1000, Quantity: 1},
		},
		ShippingAddress: "1 Market St",
	})
	require.ErrorIs(t, err, ErrNotFound)

	// The transaction aborted: the known product keeps its stock and no
	// order was written.
	assert.Equal(t, uint(5), productQuantity(t, db, product.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	_, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		ShippingAddress: "1 Market St",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Place(context.Background(), PlaceOrderInput{
		BuyerID: &fx.buyer.ID,
		Items: []PlaceOrderItem{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2},
		},
		ShippingAddress: "1 Market St",
	})
	require.ErrorAs(t, err, &verr)

	inactive := seedProduct(t, db, fx.profile.ID, "10", 5)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	_, err = svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: inactive.ID, Quantity: 1}},
		ShippingAddress: "1 Market St",
	})
	require.ErrorAs(t, err, &verr)
}

func TestCancelRestoresStockExactlyOnce(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)
	require.Equal(t, uint(2), productQuantity(t, db, product.ID))

	canceled, err := svc.Cancel(context.Background(), fx.buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCanceled, canceled.Status)
	assert.Equal(t, uint(5), productQuantity(t, db, product.ID))

	// A second cancel must not restore again.
	_, err = svc.Cancel(context.Background(), fx.buyerID, order.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, uint(5), productQuantity(t, db, product.ID))
}

func TestCancelForbiddenForStrangers(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)

	stranger := middleware.Identity{UserID: fx.buyer.ID + 999, Role: "user"}
	_, err = svc.Cancel(context.Background(), stranger, order.ID)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, uint(4), productQuantity(t, db, product.ID))
}

func TestRefundRequiresCompletedAndKeepsStock(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)

	_, err = svc.Refund(context.Background(), fx.buyerID, order.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.UpdateStatus(context.Background(), fx.sellerID, order.ID, models.OrderCompleted)
	require.NoError(t, err)

	refunded, err := svc.Refund(context.Background(), fx.buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRefunded, refunded.Status)

	// Refunds never put units back on the shelf.
	assert.Equal(t, uint(3), productQuantity(t, db, product.ID))
}

func TestUpdateStatusSellerAuthorization(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.UpdateStatus(context.Background(), fx.sellerID, order.ID, "SHIPPED")
	require.ErrorAs(t, err, &verr)

	otherUser := models.User{Username: "other-" + t.Name(), Password: "x"}
	require.NoError(t, db.Create(&otherUser).Error)
	otherProfile := models.SellerProfile{UserID: otherUser.ID, ShopName: "other"}
	require.NoError(t, db.Create(&otherProfile).Error)
	otherSeller := middleware.Identity{UserID: otherUser.ID, Role: "user", SellerID: &otherProfile.ID}

	_, err = svc.UpdateStatus(context.Background(), otherSeller, order.ID, models.OrderProcessing)
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateStatus(context.Background(), fx.sellerID, order.ID, models.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)
	assert.NotNil(t, updated.ShippedAt)

	updated, err = svc.UpdateStatus(context.Background(), fx.sellerID, order.ID, models.OrderCompleted)
	require.NoError(t, err)
	assert.NotNil(t, updated.DeliveredAt)

	refunded, err := svc.Refund(context.Background(), fx.buyerID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderRefunded, refunded.Status)

	// Terminal orders are immutable.
	_, err = svc.UpdateStatus(context.Background(), fx.sellerID, order.ID, models.OrderPending)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 1)
	svc := NewOrderService(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(context.Background(), PlaceOrderInput{
				BuyerID:         &fx.buyer.ID,
				Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
				ShippingAddress: "1 Market St",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.LessOrEqual(t, successes, 1, "the last unit was sold twice")
	assert.Equal(t, uint(1-successes), productQuantity(t, db, product.ID))
}

func TestExpirePendingCancelsAndRestores(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewOrderService(db)

	order, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)

	fresh, err := svc.Place(context.Background(), PlaceOrderInput{
		BuyerID:         &fx.buyer.ID,
		Items:           []PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		UpdateColumn("created_at", stale).Error)

	n, err := svc.ExpirePending(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expired, err := svc.Get(fx.buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCanceled, expired.Status)

	kept, err := svc.Get(fx.buyerID, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, kept.Status)

	// 5 - 2 - 1, then the stale order's 2 came back.
	assert.Equal(t, uint(4), productQuantity(t, db, product.ID))
}
