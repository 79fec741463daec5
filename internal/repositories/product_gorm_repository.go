package repositories

import (
	"errors"

	"doamais/internal/apperrors"
	"doamais/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// profileColumns limits preloaded users to their public profile fields.
// The password column must never be selected into listing results.
func profileColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "name", "username", "email", "phone")
}

// GetPage retrieves one page of products, newest first.
func (r *GORMProductRepository) GetPage(page, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Preload("Owner", profileColumns).
		Preload("Receiver", profileColumns).
		Find(&products).Error
	if err != nil {
		return nil, apperrors.NewPersistence("failed to list products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("product not found")
		}
		return nil, apperrors.NewPersistence("failed to get product", err)
	}
	return &product, nil
}

// GetByOwner retrieves all products listed by the given owner. An empty
// result is a valid outcome, not an error.
func (r *GORMProductRepository) GetByOwner(ownerID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("owner_id = ?", ownerID).Find(&products).Error; err != nil {
		return nil, apperrors.NewPersistence("failed to list products by owner", err)
	}
	return products, nil
}

// GetByReceiver retrieves all products assigned to the given receiver.
func (r *GORMProductRepository) GetByReceiver(receiverID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("receiver_id = ?", receiverID).Find(&products).Error; err != nil {
		return nil, apperrors.NewPersistence("failed to list products by receiver", err)
	}
	return products, nil
}

// Create inserts a new product, assigning an ID when none is set.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return apperrors.NewPersistence("failed to create product", err)
	}
	return nil
}

// Save persists the full state of an existing product.
func (r *GORMProductRepository) Save(product *models.Product) error {
	res := r.db.Save(product) // Save updates all fields, including zero values
	if res.Error != nil {
		return apperrors.NewPersistence("failed to save product", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save does not return ErrRecordNotFound when the row is
		// missing, so we check RowsAffected.
		return apperrors.NewNotFound("product not found")
	}
	return nil
}

// Delete removes a product permanently. Unscoped bypasses the soft-delete
// column so the row is gone for good.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Unscoped().Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewPersistence("failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("product not found")
	}
	return nil
}
