package services_test

import (
	"testing"
	"time"

	"doamais/internal/apperrors"
	"doamais/internal/models"
	"doamais/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetPage(page, limit int) ([]models.Product, error) {
	args := m.Called(page, limit)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByOwner(ownerID string) ([]models.Product, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByReceiver(receiverID string) ([]models.Product, error) {
	args := m.Called(receiverID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func date(value string) *time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return &t
}

func validInput() models.ProductInput {
	return models.ProductInput{
		Name:        "Sofa",
		Description: "Blue sofa",
		Condition:   "used",
		PurchasedAt: date("2020-01-01"),
		Images:      []string{"a.jpg"},
		Available:   true,
	}
}

func newTestService(repo *MockProductRepository, users *MockUserRepository, events services.EventPublisher) *services.ProductService {
	return services.NewProductService(repo, users, events, services.ListDefaults{Page: 1, Limit: 10})
}

func expectUser(users *MockUserRepository, id string) {
	users.On("GetByID", id).Return(&models.User{ID: id, Username: "user-" + id}, nil)
}

func TestProductService_Create_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *models.ProductInput)
		message string
	}{
		{"missing name", func(in *models.ProductInput) { in.Name = "" }, "name is required"},
		{"missing description", func(in *models.ProductInput) { in.Description = "" }, "description is required"},
		{"missing condition", func(in *models.ProductInput) { in.Condition = "" }, "condition state is required"},
		{"missing purchase date", func(in *models.ProductInput) { in.PurchasedAt = nil }, "purchase date is required"},
		{"no images", func(in *models.ProductInput) { in.Images = nil }, "at least one image is required"},
		{"empty image list", func(in *models.ProductInput) { in.Images = []string{} }, "at least one image is required"},
		// Name is checked first, so its message wins over later violations.
		{"missing name and images", func(in *models.ProductInput) { in.Name = ""; in.Images = nil }, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			mockUsers := new(MockUserRepository)
			expectUser(mockUsers, "user-1")
			service := newTestService(mockRepo, mockUsers, nil)

			in := validInput()
			tt.mutate(&in)

			product, err := service.Create("user-1", in)
			assert.Nil(t, product)
			assert.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Equal(t, tt.message, err.Error())
			// Validation must fail before any persistence side effect.
			mockRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestProductService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	expectUser(mockUsers, "user-1")
	service := newTestService(mockRepo, mockUsers, mockEvents)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Product).ID = "prod-1"
	}).Return(nil).Once()
	mockEvents.On("Publish", "", "donation_events", mock.Anything).Return(nil).Once()

	product, err := service.Create("user-1", validInput())
	assert.NoError(t, err)
	assert.Equal(t, "prod-1", product.ID)
	assert.True(t, product.Available)
	assert.Equal(t, "user-1", product.OwnerID)
	assert.Equal(t, []string{"a.jpg"}, product.Images)
	assert.Nil(t, product.ScheduleDate)
	assert.Nil(t, product.DonatedAt)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_Create_UnknownActingUser(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", "ghost").Return(nil, assert.AnError).Once()
	service := newTestService(mockRepo, mockUsers, nil)

	product, err := service.Create("ghost", validInput())
	assert.Nil(t, product)
	assert.Equal(t, apperrors.KindAuthentication, apperrors.KindOf(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_List_AppliesDefaults(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	service := newTestService(mockRepo, mockUsers, nil)

	mockRepo.On("GetPage", 1, 10).Return([]models.Product{}, nil).Once()
	products, err := service.List(0, 0)
	assert.NoError(t, err)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetPage", 2, 5).Return([]models.Product{}, nil).Once()
	_, err = service.List(2, 5)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Show_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	service := newTestService(mockRepo, mockUsers, nil)

	mockRepo.On("GetByID", "missing").Return(nil, apperrors.NewNotFound("product not found")).Once()

	product, err := service.Show("missing")
	assert.Nil(t, product)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "product not found", err.Error())
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_NotOwner(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "intruder")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1", Name: "Sofa"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()

	// The payload is fully valid; ownership must still reject it.
	product, err := service.Update("intruder", "prod-1", validInput())
	assert.Nil(t, product)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	assert.Equal(t, "not permitted to modify this resource", err.Error())
	mockRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestProductService_Update_RequiresAvailability(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "owner-1")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()

	in := validInput()
	in.Available = false

	_, err := service.Update("owner-1", "prod-1", in)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "availability is required", err.Error())
	mockRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestProductService_Update_ReplacesFieldsWholesale(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "owner-1")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{
		ID:          "prod-1",
		OwnerID:     "owner-1",
		Name:        "Old Sofa",
		Description: "Old description",
		Condition:   "worn",
		Images:      []string{"old.jpg"},
		Available:   true,
	}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()
	mockRepo.On("Save", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	in := models.ProductInput{
		Name:        "Restored Sofa",
		Description: "Reupholstered",
		Condition:   "good",
		PurchasedAt: date("2019-06-15"),
		Images:      []string{"front.jpg", "back.jpg"},
		Available:   true,
		DonatedAt:   date("2024-03-01"),
	}

	product, err := service.Update("owner-1", "prod-1", in)
	assert.NoError(t, err)
	assert.Equal(t, "Restored Sofa", product.Name)
	assert.Equal(t, "Reupholstered", product.Description)
	assert.Equal(t, "good", product.Condition)
	assert.Equal(t, []string{"front.jpg", "back.jpg"}, product.Images)
	assert.Equal(t, date("2019-06-15"), product.PurchasedAt)
	assert.Equal(t, date("2024-03-01"), product.DonatedAt)
	// Owner never changes on update.
	assert.Equal(t, "owner-1", product.OwnerID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "owner-1")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()
	mockRepo.On("Delete", "prod-1").Return(nil).Once()

	err := service.Delete("owner-1", "prod-1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete_NotOwner(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "intruder")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()

	err := service.Delete("intruder", "prod-1")
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestProductService_ListByOwner_EmptyIsSuccess(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "user-1")
	service := newTestService(mockRepo, mockUsers, nil)

	mockRepo.On("GetByOwner", "user-1").Return([]models.Product{}, nil).Once()

	products, err := service.ListByOwner("user-1")
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListByReceiver(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "user-1")
	service := newTestService(mockRepo, mockUsers, nil)

	expected := []models.Product{{ID: "prod-1", OwnerID: "owner-1"}}
	mockRepo.On("GetByReceiver", "user-1").Return(expected, nil).Once()

	products, err := service.ListByReceiver("user-1")
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Schedule(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	expectUser(mockUsers, "owner-1")
	service := newTestService(mockRepo, mockUsers, mockEvents)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1", Available: true}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()
	mockRepo.On("Save", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockEvents.On("Publish", "", "donation_events", mock.Anything).Return(nil).Once()

	when := date("2024-05-20")
	product, err := service.Schedule("owner-1", "prod-1", when)
	assert.NoError(t, err)
	assert.Equal(t, when, product.ScheduleDate)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_Schedule_NotOwner(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	expectUser(mockUsers, "intruder")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()

	product, err := service.Schedule("intruder", "prod-1", date("2024-05-20"))
	assert.Nil(t, product)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	mockRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestProductService_ConcludeDonation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	expectUser(mockUsers, "owner-1")
	service := newTestService(mockRepo, mockUsers, mockEvents)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1", Available: true}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()
	mockRepo.On("Save", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockEvents.On("Publish", "", "donation_events", mock.Anything).Return(nil).Once()

	when := date("2024-06-01")
	product, err := service.ConcludeDonation("owner-1", "prod-1", when)
	assert.NoError(t, err)
	assert.Equal(t, when, product.DonatedAt)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_ConcludeDonation_MissingDate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockUsers := new(MockUserRepository)
	// A non-owner triggers the missing-date failure, proving the date check
	// runs before the ownership check.
	expectUser(mockUsers, "intruder")
	service := newTestService(mockRepo, mockUsers, nil)

	stored := &models.Product{ID: "prod-1", OwnerID: "owner-1"}
	mockRepo.On("GetByID", "prod-1").Return(stored, nil).Once()

	product, err := service.ConcludeDonation("intruder", "prod-1", nil)
	assert.Nil(t, product)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "a conclusion date is required", err.Error())
	mockRepo.AssertNotCalled(t, "Save", mock.Anything)
}
