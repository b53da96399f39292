package services

import (
	"errors"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/policies"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/pagination"
	"gorm.io/gorm"
)

// ReviewInput carries the writable review fields.
type ReviewInput struct {
	ProductID uint   `json:"product_id" validate:"required,integer,gt=0"`
	Rating    int    `json:"rating" validate:"required,integer,between=1,5"`
	Comment   string `json:"comment" validate:"nullable,max=2000"`
}

type ReviewService struct {
	reviews  *repositories.ReviewRepository
	products *repositories.ProductRepository
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		reviews:  repositories.NewReviewRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// ListApproved is the public listing: approved reviews only.
func (s *ReviewService) ListApproved(filter repositories.ReviewFilter, page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	return s.reviews.Approved(filter, page, perPage)
}

// ListPending is the moderation queue, admin only.
func (s *ReviewService) ListPending(id middleware.Identity, page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	if !policies.CanModerateReview(id) {
		return nil, pagination.Pagination{}, ErrForbidden
	}
	return s.reviews.Pending(page, perPage)
}

// ListMine returns the caller's own reviews regardless of approval.
func (s *ReviewService) ListMine(id middleware.Identity, page, perPage int) ([]models.ProductReview, pagination.Pagination, error) {
	return s.reviews.Mine(id.UserID, page, perPage)
}

// Create submits a review. It lands unapproved and invisible until a
// moderator approves it. One review per user per product.
func (s *ReviewService) Create(id middleware.Identity, in ReviewInput) (models.ProductReview, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return models.ProductReview{}, NewValidationError("rating", "The rating must be between 1 and 5.")
	}
	if _, err := s.products.FindByID(in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ProductReview{}, NewValidationError("product_id", "The selected product does not exist.")
		}
		return models.ProductReview{}, err
	}
	if _, err := s.reviews.FindByProductAndUser(in.ProductID, id.UserID); err == nil {
		return models.ProductReview{}, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProductReview{}, err
	}

	review := models.ProductReview{
		ProductID: in.ProductID,
		UserID:    id.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := s.reviews.Create(&review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ProductReview{}, ErrConflict
		}
		return models.ProductReview{}, err
	}
	return review, nil
}

// Update edits a review. Edits by the author reset approval so changed
// text goes back through moderation.
func (s *ReviewService) Update(id middleware.Identity, reviewID uint, rating int, comment string) (models.ProductReview, error) {
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return models.ProductReview{}, translateNotFound(err)
	}
	if !policies.CanWriteReview(id, review) {
		return models.ProductReview{}, ErrForbidden
	}
	if rating < 1 || rating > 5 {
		return models.ProductReview{}, NewValidationError("rating", "The rating must be between 1 and 5.")
	}

	review.Rating = rating
	review.Comment = comment
	review.IsApproved = false
	if err := s.reviews.Update(&review); err != nil {
		return models.ProductReview{}, err
	}
	return review, nil
}

func (s *ReviewService) Delete(id middleware.Identity, reviewID uint) error {
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return translateNotFound(err)
	}
	if !policies.CanWriteReview(id, review) {
		return ErrForbidden
	}
	return s.reviews.Delete(&review)
}

// Approve publishes a review, admin only.
func (s *ReviewService) Approve(id middleware.Identity, reviewID uint) (models.ProductReview, error) {
	if !policies.CanModerateReview(id) {
		return models.ProductReview{}, ErrForbidden
	}
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return models.ProductReview{}, translateNotFound(err)
	}
	if err := s.reviews.Approve(&review); err != nil {
		return models.ProductReview{}, err
	}
	return review, nil
}
