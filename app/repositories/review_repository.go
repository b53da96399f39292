package repositories

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/pagination"
	"gorm.io/gorm"
)

// ReviewFilter narrows the public review listing.
type ReviewFilter struct {
	ProductID *uint
	Rating    *int
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) FindByID(id uint) (models.ProductReview, error) {
	var review models.ProductReview
	err := r.db.First(&review, id).Error
	return review, err
}

// FindByProductAndUser looks up the unique (product, user) review.
func (r *ReviewRepository) FindByProductAndUser(productID, userID uint) (models.ProductReview, error) {
	var review models.ProductReview
	err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error
	return review, err
}

// Approved lists approved reviews only, newest first.
func (r *ReviewRepository) Approved(filter ReviewFilter, page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	query := r.db.Model(&models.ProductReview{}).
		Where("is_approved = ?", true).
		Order("created_at desc")

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Rating != nil {
		query = query.Where("rating = ?", *filter.Rating)
	}

	var reviews []models.ProductReview
	p, err := pagination.Paginate(query, page, perPage, &reviews)
	return reviews, p, err
}

// Pending lists reviews awaiting moderation.
func (r *ReviewRepository) Pending(page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	query := r.db.Model(&models.ProductReview{}).
		Where("is_approved = ?", false).
		Order("created_at asc")

	var reviews []models.ProductReview
	p, err := pagination.Paginate(query, page, perPage, &reviews)
	return reviews, p, err
}

// Mine lists a user's own reviews regardless of approval.
func (r *ReviewRepository) Mine(userID uint, page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	query := r.db.Model(&models.ProductReview{}).
		Where("user_id = ?", userID).
		Order("created_at desc")

	var reviews []models.ProductReview
	p, err := pagination.Paginate(query, page, perPage, &reviews)
	return reviews, p, err
}

func (r *ReviewRepository) Create(review *models.ProductReview) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) Update(review *models.ProductReview) error {
	return r.db.Save(review).Error
}

func (r *ReviewRepository) Delete(review *models.ProductReview) error {
	return r.db.Delete(review).Error
}

func (r *ReviewRepository) Approve(review *models.ProductReview) error {
	review.IsApproved = true
	return r.db.Model(review).Update("is_approved", true).Error
}
