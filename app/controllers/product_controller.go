package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/storage"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(svc *services.ProductService) *ProductController {
	return &ProductController{products: svc}
}

// Index is the public catalog listing with filters.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	filter := productFilterFromQuery(r)
	page, perPage := pageParams(r)

	items, p, err := c.products.List(filter, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, items, p)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	product, err := c.products.Get(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, product)
}

// ShowBySlug resolves a product by its public slug.
func (c *ProductController) ShowBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		response.NotFound(w)
		return
	}
	product, err := c.products.GetBySlug(slug)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, product)
}

// Mine lists the authenticated seller's own products, active or not.
func (c *ProductController) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	items, p, err := c.products.ListMine(id, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, items, p)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var in services.ProductInput
	if !bind.JSON(w, r, &in) {
		return
	}

	product, err := c.products.Create(id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	productID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bind.JSON(w, r, &in) {
		return
	}

	product, err := c.products.Update(id, productID, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	productID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	if err := c.products.Delete(id, productID); err != nil {
		fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// UploadImage stores a product image and records it against the product.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	productID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "The image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		response.Error(w, http.StatusUnprocessableEntity, "Unsupported image type")
		return
	}

	path := fmt.Sprintf("products/%d/%d%s", productID, time.Now().UnixNano(), ext)
	if err := storage.PutStream(path, io.LimitReader(file, 10<<20)); err != nil {
		fail(w, r, err)
		return
	}

	img, err := c.products.AttachImage(id, productID, path,
		r.FormValue("alt_text"), bind.QueryInt(r, "sort_order", 0))
	if err != nil {
		// The record failed; don't leave the blob orphaned.
		storage.Delete(path) //nolint:errcheck
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{
		"image": img,
		"url":   storage.URL(path),
	})
}

func productFilterFromQuery(r *http.Request) repositories.ProductFilter {
	q := r.URL.Query()
	filter := repositories.ProductFilter{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if raw := bind.QueryInt(r, "category_id", 0); raw > 0 {
		id := uint(raw)
		filter.CategoryID = &id
	}
	if raw := q.Get("min_price"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.MinPrice = &d
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.MaxPrice = &d
		}
	}
	return filter
}
