package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/policies"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput carries the writable product fields. Prices arrive as
// strings so no float ever touches money.
type ProductInput struct {
	Title       string  `json:"title" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"nullable,max=5000"`
	CategoryID  *uint   `json:"category_id" validate:"nullable,integer"`
	Price       string  `json:"price" validate:"required,numeric"`
	OldPrice    *string `json:"old_price" validate:"nullable,numeric"`
	Quantity    uint    `json:"quantity" validate:"nullable,integer"`
	IsActive    *bool   `json:"is_active"`
}

type ProductService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{
		products:   repositories.NewProductRepository(db),
		categories: repositories.NewCategoryRepository(db),
	}
}

func (s *ProductService) Get(id uint) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		return models.Product{}, translateNotFound(err)
	}
	return product, nil
}

func (s *ProductService) GetBySlug(slug string) (models.Product, error) {
	product, err := s.products.FindBySlug(slug)
	if err != nil {
		return models.Product{}, translateNotFound(err)
	}
	return product, nil
}

func (s *ProductService) List(filter repositories.ProductFilter, page, perPage int) ([]models.Product, pagination.Pagination, error) {
	return s.products.List(filter, page, perPage)
}

func (s *ProductService) ListMine(id middleware.Identity, page, perPage int) ([]models.Product, pagination.Pagination, error) {
	if id.SellerID == nil {
		return nil, pagination.Pagination{}, ErrForbidden
	}
	return s.products.BySeller(*id.SellerID, page, perPage)
}

func (s *ProductService) Create(id middleware.Identity, in ProductInput) (models.Product, error) {
	if id.SellerID == nil {
		return models.Product{}, ErrForbidden
	}
	price, oldPrice, err := parsePrices(in)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		SellerID:    *id.SellerID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Slug:        productSlug(in.Title),
		Description: in.Description,
		Price:       price,
		OldPrice:    oldPrice,
		Quantity:    in.Quantity,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.products.Create(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *ProductService) Update(id middleware.Identity, productID uint, in ProductInput) (models.Product, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		return models.Product{}, translateNotFound(err)
	}
	if !policies.CanWriteProduct(id, product) {
		return models.Product{}, ErrForbidden
	}

	price, oldPrice, err := parsePrices(in)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return models.Product{}, err
	}

	product.Title = in.Title
	product.Description = in.Description
	product.CategoryID = in.CategoryID
	product.Price = price
	product.OldPrice = oldPrice
	product.Quantity = in.Quantity
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.products.Update(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Delete deactivates the product instead of removing the row, so order
// item snapshots keep a live reference for as long as possible.
func (s *ProductService) Delete(id middleware.Identity, productID uint) error {
	product, err := s.products.FindByID(productID)
	if err != nil {
		return translateNotFound(err)
	}
	if !policies.CanWriteProduct(id, product) {
		return ErrForbidden
	}
	return s.products.Deactivate(&product)
}

// AttachImage records an uploaded image path against the product. The
// upload itself goes through the storage manager in the handler.
func (s *ProductService) AttachImage(id middleware.Identity, productID uint, path, altText string, sortOrder int) (models.ProductImage, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		return models.ProductImage{}, translateNotFound(err)
	}
	if !policies.CanWriteProduct(id, product) {
		return models.ProductImage{}, ErrForbidden
	}

	img := models.ProductImage{
		ProductID: product.ID,
		Path:      path,
		AltText:   altText,
		SortOrder: sortOrder,
	}
	if err := s.products.AddImage(&img); err != nil {
		return models.ProductImage{}, err
	}
	return img, nil
}

func (s *ProductService) checkCategory(categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.FindByID(*categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("category_id", "The selected category does not exist.")
		}
		return err
	}
	return nil
}

func parsePrices(in ProductInput) (decimal.Decimal, *decimal.Decimal, error) {
	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return decimal.Zero, nil, NewValidationError("price", "The price must be a number.")
	}
	if !price.IsPositive() {
		return decimal.Zero, nil, NewValidationError("price", "The price must be greater than 0.")
	}

	var oldPrice *decimal.Decimal
	if in.OldPrice != nil && *in.OldPrice != "" {
		op, err := decimal.NewFromString(*in.OldPrice)
		if err != nil {
			return decimal.Zero, nil, NewValidationError("old_price", "The old price must be a number.")
		}
		if op.LessThanOrEqual(price) {
			return decimal.Zero, nil, NewValidationError("old_price", "The old price must be greater than the current price.")
		}
		oldPrice = &op
	}
	return price, oldPrice, nil
}

// productSlug derives a slug from the title with a random suffix so two
// sellers can list the same title.
func productSlug(title string) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return slugify(title) + "-" + hex.EncodeToString(buf)
}
