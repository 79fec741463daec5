package repositories

import (
	"doamais/internal/models"
)

// ProductRepository defines the interface for product data access.
// Page reads are ordered by creation time, newest first, and return products
// with their owner and receiver profiles populated.
type ProductRepository interface {
	GetPage(page, limit int) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByOwner(ownerID string) ([]models.Product, error)
	GetByReceiver(receiverID string) ([]models.Product, error)
	Create(product *models.Product) error
	Save(product *models.Product) error
	Delete(id string) error
}
