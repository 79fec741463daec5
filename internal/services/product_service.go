package services

import (
	"encoding/json"
	"log"
	"time"

	"doamais/internal/apperrors"
	"doamais/internal/models"
	"doamais/internal/repositories"
)

// EventPublisher publishes donation lifecycle events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ListDefaults holds the pagination defaults applied when a listing request
// does not specify a page or limit.
type ListDefaults struct {
	Page  int
	Limit int
}

// ProductService handles the donation lifecycle of products: creation,
// listing, ownership-gated mutation, scheduling, and donation conclusion.
type ProductService struct {
	repo     repositories.ProductRepository
	users    repositories.UserRepository
	events   EventPublisher
	defaults ListDefaults
}

// NewProductService creates a new ProductService. The event publisher may be
// nil, in which case lifecycle events are skipped.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, events EventPublisher, defaults ListDefaults) *ProductService {
	return &ProductService{
		repo:     repo,
		users:    users,
		events:   events,
		defaults: defaults,
	}
}

// operation distinguishes create from update in field validation.
type operation int

const (
	opCreate operation = iota
	opUpdate
)

// validateInput checks required fields in a fixed order and stops at the
// first violation. The literal messages are part of the API contract.
func validateInput(in models.ProductInput, op operation) error {
	if in.Name == "" {
		return apperrors.NewValidation("name is required")
	}
	if in.Description == "" {
		return apperrors.NewValidation("description is required")
	}
	if in.Condition == "" {
		return apperrors.NewValidation("condition state is required")
	}
	if op == opCreate && in.PurchasedAt == nil {
		return apperrors.NewValidation("purchase date is required")
	}
	if len(in.Images) == 0 {
		return apperrors.NewValidation("at least one image is required")
	}
	if op == opUpdate && !in.Available {
		return apperrors.NewValidation("availability is required")
	}
	return nil
}

// ensureOwner rejects mutations attempted by anyone but the product's owner.
func ensureOwner(actingUserID string, product *models.Product) error {
	if product.OwnerID != actingUserID {
		return apperrors.NewAuthorization("not permitted to modify this resource")
	}
	return nil
}

// resolveActingUser turns the authenticated user ID into a full user record.
func (s *ProductService) resolveActingUser(userID string) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, apperrors.NewAuthentication("could not resolve acting user")
	}
	return user, nil
}

// Create validates the input, builds a new available product owned by the
// acting user, and persists it.
func (s *ProductService) Create(actingUserID string, in models.ProductInput) (*models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in, opCreate); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Condition:   in.Condition,
		PurchasedAt: in.PurchasedAt,
		Images:      in.Images,
		Available:   true,
		OwnerID:     user.ID,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// List retrieves one page of products, newest first, with owner and receiver
// profiles populated. Zero or negative page/limit fall back to the configured
// defaults.
func (s *ProductService) List(page, limit int) ([]models.Product, error) {
	if page < 1 {
		page = s.defaults.Page
	}
	if limit < 1 {
		limit = s.defaults.Limit
	}
	return s.repo.GetPage(page, limit)
}

// Show retrieves a single product by its ID.
func (s *ProductService) Show(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Update replaces the mutable fields of a product wholesale. Only the owner
// may update; ownership is checked before the payload is validated, and both
// run before any persistence write.
func (s *ProductService) Update(actingUserID, id string, in models.ProductInput) (*models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(user.ID, product); err != nil {
		return nil, err
	}
	if err := validateInput(in, opUpdate); err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Condition = in.Condition
	product.PurchasedAt = in.PurchasedAt
	product.Images = in.Images
	product.Available = in.Available
	product.DonatedAt = in.DonatedAt

	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product permanently. Only the owner may delete.
func (s *ProductService) Delete(actingUserID, id string) error {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := ensureOwner(user.ID, product); err != nil {
		return err
	}
	return s.repo.Delete(product.ID)
}

// ListByOwner returns all products listed by the acting user. An empty slice
// is a valid result, not an error.
func (s *ProductService) ListByOwner(actingUserID string) ([]models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(user.ID)
}

// ListByReceiver returns all products assigned to the acting user as
// receiver.
func (s *ProductService) ListByReceiver(actingUserID string) ([]models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByReceiver(user.ID)
}

// Schedule records a pickup or delivery date on the product. Only the owner
// may schedule. The date is stored as given; well-formedness beyond parsing
// is the caller's concern.
func (s *ProductService) Schedule(actingUserID, id string, scheduleDate *time.Time) (*models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(user.ID, product); err != nil {
		return nil, err
	}

	product.ScheduleDate = scheduleDate
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.scheduled", product)
	return product, nil
}

// ConcludeDonation records the donation date on the product. The date is
// required and is checked before ownership; only the owner may conclude.
func (s *ProductService) ConcludeDonation(actingUserID, id string, donatedAt *time.Time) (*models.Product, error) {
	user, err := s.resolveActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if donatedAt == nil {
		return nil, apperrors.NewValidation("a conclusion date is required")
	}
	if err := ensureOwner(user.ID, product); err != nil {
		return nil, err
	}

	product.DonatedAt = donatedAt
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.donated", product)
	return product, nil
}

// publishEvent sends a lifecycle event to the broker. Publishing failures are
// logged and never fail the operation that triggered them.
func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.events == nil {
		return
	}

	payload := map[string]interface{}{
		"event":      event,
		"product_id": product.ID,
		"owner_id":   product.OwnerID,
		"available":  product.Available,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event for product %s: %v", event, product.ID, err)
		return
	}

	if err := s.events.Publish("", "donation_events", body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", event, product.ID, err)
	}
}
