package services

import (
	"github.com/mkamalov/bazar/app/models"
	"gorm.io/gorm"
)

// DecrementStock atomically takes qty units from a product. The guard
// rides in the WHERE clause so two competing orders can never both
// succeed on the last unit: whichever UPDATE matches zero rows loses.
func DecrementStock(tx *gorm.DB, productID uint, qty uint) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns qty units to a product.
func RestoreStock(tx *gorm.DB, productID uint, qty uint) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}
