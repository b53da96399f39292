package services

import (
	"errors"
	"strings"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/repositories"
	"gorm.io/gorm"
)

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	ParentID  *uint  `json:"parent_id" validate:"nullable,integer"`
	SortOrder int    `json:"sort_order" validate:"nullable,integer"`
	IsActive  *bool  `json:"is_active"`
}

type CategoryService struct {
	categories *repositories.CategoryRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{categories: repositories.NewCategoryRepository(db)}
}

func (s *CategoryService) Get(id uint) (models.Category, error) {
	cat, err := s.categories.FindByID(id)
	if err != nil {
		return models.Category{}, translateNotFound(err)
	}
	return cat, nil
}

func (s *CategoryService) GetBySlug(slug string) (models.Category, error) {
	cat, err := s.categories.FindBySlug(slug)
	if err != nil {
		return models.Category{}, translateNotFound(err)
	}
	return cat, nil
}

func (s *CategoryService) Roots() ([]models.Category, error) {
	return s.categories.Roots()
}

func (s *CategoryService) Children(parentID uint) ([]models.Category, error) {
	if _, err := s.categories.FindByID(parentID); err != nil {
		return nil, translateNotFound(err)
	}
	return s.categories.Children(parentID)
}

func (s *CategoryService) Create(in CategoryInput) (models.Category, error) {
	if in.ParentID != nil {
		if _, err := s.categories.FindByID(*in.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Category{}, NewValidationError("parent_id", "The selected parent does not exist.")
			}
			return models.Category{}, err
		}
	}

	cat := models.Category{
		Name:      in.Name,
		Slug:      slugify(in.Name),
		ParentID:  in.ParentID,
		SortOrder: in.SortOrder,
		IsActive:  true,
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if err := s.categories.Create(&cat); err != nil {
		return models.Category{}, err
	}
	return cat, nil
}

// Update rewrites a category. Reparenting is refused when the new parent
// sits below the category itself, which would close a cycle.
func (s *CategoryService) Update(id uint, in CategoryInput) (models.Category, error) {
	cat, err := s.categories.FindByID(id)
	if err != nil {
		return models.Category{}, translateNotFound(err)
	}

	if in.ParentID != nil {
		if *in.ParentID == cat.ID {
			return models.Category{}, NewValidationError("parent_id", "A category cannot be its own parent.")
		}
		cyclic, err := s.descendsFrom(*in.ParentID, cat.ID)
		if err != nil {
			return models.Category{}, err
		}
		if cyclic {
			return models.Category{}, NewValidationError("parent_id", "The selected parent would create a cycle.")
		}
	}

	cat.Name = in.Name
	cat.Slug = slugify(in.Name)
	cat.ParentID = in.ParentID
	cat.SortOrder = in.SortOrder
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if err := s.categories.Update(&cat); err != nil {
		return models.Category{}, err
	}
	return cat, nil
}

// Delete removes a category. Its products are detached, not deleted.
func (s *CategoryService) Delete(id uint) error {
	cat, err := s.categories.FindByID(id)
	if err != nil {
		return translateNotFound(err)
	}
	return s.categories.Delete(&cat)
}

// descendsFrom walks the parent chain upward from candidate and reports
// whether ancestor occurs on it.
func (s *CategoryService) descendsFrom(candidate, ancestor uint) (bool, error) {
	const maxDepth = 64
	current := candidate
	for i := 0; i < maxDepth; i++ {
		node, err := s.categories.FindByID(current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, NewValidationError("parent_id", "The selected parent does not exist.")
			}
			return false, err
		}
		if node.ID == ancestor {
			return true, nil
		}
		if node.ParentID == nil {
			return false, nil
		}
		current = *node.ParentID
	}
	return true, nil
}

// slugify lowercases and dashes a name into a URL-safe slug.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
