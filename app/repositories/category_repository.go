package repositories

import (
	"github.com/mkamalov/bazar/app/models"
	"gorm.io/gorm"
)

// CategoryRepository handles database operations for the catalog tree.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

// FindByID looks up a category by primary key.
func (r *CategoryRepository) FindByID(id uint) (models.Category, error) {
	var cat models.Category
	err := r.db.First(&cat, id).Error
	return cat, err
}

// FindBySlug looks up a category by its unique slug.
func (r *CategoryRepository) FindBySlug(slug string) (models.Category, error) {
	var cat models.Category
	err := r.db.Where("slug = ?", slug).First(&cat).Error
	return cat, err
}

// Roots returns active top-level categories ordered by sort order.
func (r *CategoryRepository) Roots() ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Where("parent_id IS NULL AND is_active = ?", true).
		Order("sort_order asc, name asc").
		Find(&cats).Error
	return cats, err
}

// Children returns the active direct children of a category.
func (r *CategoryRepository) Children(parentID uint) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("sort_order asc, name asc").
		Find(&cats).Error
	return cats, err
}

// All returns every category ordered for display.
func (r *CategoryRepository) All() ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Order("sort_order asc, name asc").Find(&cats).Error
	return cats, err
}

// Create persists a new category.
func (r *CategoryRepository) Create(cat *models.Category) error {
	return r.db.Create(cat).Error
}

// Update persists changes to an existing category.
func (r *CategoryRepository) Update(cat *models.Category) error {
	return r.db.Save(cat).Error
}

// Delete removes a category. Products referencing it keep a nil category.
func (r *CategoryRepository) Delete(cat *models.Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", cat.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(cat).Error
	})
}
