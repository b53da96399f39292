// Package repositories holds the persistence layer: plain structs around a
// *gorm.DB handle. Transaction boundaries are owned by the services, which
// pass a tx-scoped handle through WithTx.
package repositories

import (
	"github.com/mkamalov/bazar/app/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User and SellerProfile.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindByID looks up a user by primary key, preloading the seller profile.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.Preload("Seller").First(&user, id).Error
	return user, err
}

// FindByUsername looks up a user by username.
func (r *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	err := r.db.Preload("Seller").Where("username = ?", username).First(&user).Error
	return user, err
}

// FindByContact looks up a user by email or phone.
func (r *UserRepository) FindByContact(contact string) (models.User, error) {
	var user models.User
	err := r.db.Preload("Seller").
		Where("email = ? OR phone = ?", contact, contact).
		First(&user).Error
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// CreateSellerProfile attaches a seller profile to a user.
func (r *UserRepository) CreateSellerProfile(profile *models.SellerProfile) error {
	return r.db.Create(profile).Error
}
