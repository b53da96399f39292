package repositories

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter narrows the public product listing.
type ProductFilter struct {
	CategoryID *uint
	Search     string // matches title and description
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Ordering   string // "price", "-price", "created_at", "-created_at"
}

// ProductRepository handles database operations for products and images.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var p models.Product
	err := r.db.Preload("Images").First(&p, id).Error
	return p, err
}

// FindBySlug looks up a product by its unique slug.
func (r *ProductRepository) FindBySlug(slug string) (models.Product, error) {
	var p models.Product
	err := r.db.Preload("Images").Preload("Category").
		Where("slug = ?", slug).First(&p).Error
	return p, err
}

// List returns active products matching filter, paginated.
func (r *ProductRepository) List(filter ProductFilter, page, perPage int) ([]models.Product, pagination.Pagination, error) {
	query := r.db.Model(&models.Product{}).
		Preload("Images").
		Where("is_active = ?", true)

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	switch filter.Ordering {
	case "price":
		query = query.Order("price asc")
	case "-price":
		query = query.Order("price desc")
	case "created_at":
		query = query.Order("created_at asc")
	default:
		query = query.Order("created_at desc")
	}

	var products []models.Product
	p, err := pagination.Paginate(query, page, perPage, &products)
	return products, p, err
}

// BySeller returns all of a seller's products (active or not), paginated.
func (r *ProductRepository) BySeller(sellerID uint, page, perPage int) ([]models.Product, pagination.Pagination, error) {
	query := r.db.Model(&models.Product{}).
		Preload("Images").
		Where("seller_id = ?", sellerID).
		Order("created_at desc")

	var products []models.Product
	p, err := pagination.Paginate(query, page, perPage, &products)
	return products, p, err
}

// ByCategory returns active products in a category, paginated.
func (r *ProductRepository) ByCategory(categoryID uint, page, perPage int) ([]models.Product, pagination.Pagination, error) {
	query := r.db.Model(&models.Product{}).
		Preload("Images").
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("created_at desc")

	var products []models.Product
	p, err := pagination.Paginate(query, page, perPage, &products)
	return products, p, err
}

// Create persists a new product.
func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(p *models.Product) error {
	return r.db.Save(p).Error
}

// Deactivate soft-disables a listing.
func (r *ProductRepository) Deactivate(p *models.Product) error {
	return r.db.Model(p).Update("is_active", false).Error
}

// AddImage attaches an uploaded image to a product.
func (r *ProductRepository) AddImage(img *models.ProductImage) error {
	return r.db.Create(img).Error
}
