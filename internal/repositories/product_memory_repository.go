package repositories

import (
	"sort"
	"sync"
	"time"

	"doamais/internal/apperrors"
	"doamais/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository, used for local development and tests.
type MemoryProductRepository struct {
	products map[string]models.Product
	users    UserRepository
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of
// MemoryProductRepository. The user repository, when given, is used to
// populate owner and receiver profiles in page reads.
func NewMemoryProductRepository(users UserRepository) *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		users:    users,
	}
}

// sortedByNewest returns all products ordered by creation time descending.
// Must be called with the read lock held.
func (r *MemoryProductRepository) sortedByNewest() []models.Product {
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		if productList[i].CreatedAt.Equal(productList[j].CreatedAt) {
			return productList[i].ID > productList[j].ID
		}
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList
}

// GetPage returns one page of products, newest first, with owner and
// receiver profiles populated when a user repository is available.
func (r *MemoryProductRepository) GetPage(page, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := r.sortedByNewest()

	offset := (page - 1) * limit
	if offset >= len(productList) {
		return []models.Product{}, nil
	}
	end := offset + limit
	if end > len(productList) {
		end = len(productList)
	}
	pageList := make([]models.Product, end-offset)
	copy(pageList, productList[offset:end])

	for i := range pageList {
		r.populateUsers(&pageList[i])
	}
	return pageList, nil
}

// populateUsers fills in the owner and receiver references, stripping the
// password so the populated profiles stay credential-free.
func (r *MemoryProductRepository) populateUsers(product *models.Product) {
	if r.users == nil {
		return
	}
	if owner, err := r.users.GetByID(product.OwnerID); err == nil {
		public := *owner
		public.Password = ""
		product.Owner = &public
	}
	if product.ReceiverID != nil {
		if receiver, err := r.users.GetByID(*product.ReceiverID); err == nil {
			public := *receiver
			public.Password = ""
			product.Receiver = &public
		}
	}
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NewNotFound("product not found")
	}
	return &product, nil
}

// GetByOwner returns all products listed by the given owner.
func (r *MemoryProductRepository) GetByOwner(ownerID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := []models.Product{}
	for _, p := range r.sortedByNewest() {
		if p.OwnerID == ownerID {
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// GetByReceiver returns all products assigned to the given receiver.
func (r *MemoryProductRepository) GetByReceiver(receiverID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := []models.Product{}
	for _, p := range r.sortedByNewest() {
		if p.ReceiverID != nil && *p.ReceiverID == receiverID {
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Save replaces the stored state of an existing product.
func (r *MemoryProductRepository) Save(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return apperrors.NewNotFound("product not found")
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return apperrors.NewNotFound("product not found")
	}
	delete(r.products, id)
	return nil
}
