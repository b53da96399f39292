package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalog(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.SellerProfile{},
		&models.Category{}, &models.Product{}, &models.ProductImage{},
	))

	seller := models.User{Username: "seller", Password: "x"}
	require.NoError(t, db.Create(&seller).Error)
	profile := models.SellerProfile{UserID: seller.ID, ShopName: "shop"}
	require.NoError(t, db.Create(&profile).Error)

	for i, qty := range []uint{5, 0, 3} {
		p := models.Product{
			SellerID: profile.ID,
			Title:    fmt.Sprintf("Widget %d", i),
			Slug:     fmt.Sprintf("widget-%d", i),
			Price:    decimal.NewFromInt(int64(10 * (i + 1))),
			Quantity: qty,
			IsActive: i != 1, // the middle one is hidden
		}
		require.NoError(t, db.Create(&p).Error)
	}

	ctrl := NewProductController(services.NewProductService(db))

	r := router.New()
	r.Get("/api/products", "products.index", ctrl.Index)
	r.Get("/api/products/{id}", "products.show", ctrl.Show)

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type listEnvelope struct {
	Status int `json:"status"`
	Data   struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
			Total   int64 `json:"total"`
		} `json:"pagination"`
	} `json:"data"`
}

func TestProductIndexListsOnlyActive(t *testing.T) {
	srv := setupCatalog(t)

	resp, err := http.Get(srv.URL + "/api/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body listEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data.Items, 2)
	assert.Equal(t, int64(2), body.Data.Pagination.Total)
	assert.Equal(t, 20, body.Data.Pagination.PerPage)
}

func TestProductShowUnknownIs404(t *testing.T) {
	srv := setupCatalog(t)

	for _, path := range []string{"/api/products/99999", "/api/products/not-a-number"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestProductShowReturnsEnvelope(t *testing.T) {
	srv := setupCatalog(t)

	resp, err := http.Get(srv.URL + "/api/products/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Title string `json:"title"`
			Price string `json:"price"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, "Widget 0", body.Data.Title)
	assert.Equal(t, "10", body.Data.Price)
}
