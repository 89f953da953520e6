package supplierservice_test

import (
	"context"
	"iter"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/service/supplierservice"
)

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	args := m.Called(ctx, supplier)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id string) (domain.Supplier, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Update(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	args := m.Called(ctx, supplier)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) Query(ctx context.Context, filter domain.SupplierFilter) iter.Seq2[domain.Supplier, error] {
	args := m.Called(ctx, filter)
	return args.Get(0).(iter.Seq2[domain.Supplier, error])
}

func TestCreateSupplier_DefaultsToActive(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(s domain.Supplier) bool {
		return s.Status == domain.SupplierActive && s.Name == "Acme"
	})).Return(domain.Supplier{ID: uuid.NewString(), Name: "Acme", Status: domain.SupplierActive}, nil)

	result, err := svc.Create(context.Background(), domain.NewSupplier{Name: "Acme", Email: "vendas@acme.com"})

	assert.NoError(t, err)
	assert.Equal(t, domain.SupplierActive, result.Status)
	mockRepo.AssertExpectations(t)
}

func TestCreateSupplier_Fail_Validation(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))

	_, err := svc.Create(context.Background(), domain.NewSupplier{
		Name:    "Acme",
		Email:   "sem-arroba",
		Website: "nao e url",
		Status:  "PAUSED",
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "email deve ser um email válido")
	assert.Contains(t, err.Error(), "website deve ser uma URL válida")
	assert.Contains(t, err.Error(), "status deve ser um de")
	mockRepo.AssertNotCalled(t, "Save")
}

func TestUpdateSupplier_AppliesPatch(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))
	id := uuid.NewString()
	current := domain.Supplier{ID: id, Name: "Acme", Phone: "1111", Status: domain.SupplierActive}
	inactive := domain.SupplierInactive

	expected := current
	expected.Status = domain.SupplierInactive
	mockRepo.On("FindByID", mock.Anything, id).Return(current, nil)
	mockRepo.On("Update", mock.Anything, expected).Return(expected, nil)

	result, err := svc.Update(context.Background(), id, domain.SupplierPatch{Status: &inactive})

	assert.NoError(t, err)
	assert.Equal(t, "1111", result.Phone)
	assert.Equal(t, domain.SupplierInactive, result.Status)
	mockRepo.AssertExpectations(t)
}

func TestUpdateSupplier_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))
	id := uuid.NewString()
	name := "Outro"

	mockRepo.On("FindByID", mock.Anything, id).Return(domain.Supplier{}, apperror.NewNotFoundError("Fornecedor não encontrado."))

	_, err := svc.Update(context.Background(), id, domain.SupplierPatch{Name: &name})

	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteSupplier_Fail_HasOrders(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))
	id := uuid.NewString()

	mockRepo.On("Delete", mock.Anything, id).Return(apperror.NewConflictError("O fornecedor possui pedidos."))

	err := svc.Delete(context.Background(), id)

	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}

func TestDeleteSupplier_Fail_InvalidID(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	svc := supplierservice.NewService(mockRepo, nil, logger.NewLogger("debug"))

	err := svc.Delete(context.Background(), "123")

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(evt domain.Event) { p.events = append(p.events, evt) }

func TestSupplierWrites_PublishEntityEvents(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	pub := &recordingPublisher{}
	svc := supplierservice.NewService(mockRepo, pub, logger.NewLogger("debug"))
	ctx := context.Background()
	id := uuid.NewString()
	name := "Acme Ltda"
	stored := domain.Supplier{ID: id, Name: "Acme", Status: domain.SupplierActive}

	mockRepo.On("Save", mock.Anything, mock.Anything).Return(stored, nil)
	mockRepo.On("FindByID", mock.Anything, id).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(stored, nil)
	mockRepo.On("Delete", mock.Anything, id).Return(nil).Once()

	_, err := svc.Create(ctx, domain.NewSupplier{Name: "Acme"})
	assert.NoError(t, err)
	_, err = svc.Update(ctx, id, domain.SupplierPatch{Name: &name})
	assert.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, id))

	types := make([]string, 0, len(pub.events))
	for _, evt := range pub.events {
		assert.Equal(t, "supplier", evt.Entity)
		assert.Equal(t, id, evt.EntityID)
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{domain.EventEntityCreated, domain.EventEntityUpdated, domain.EventEntityDeleted}, types)
}

func TestDeleteSupplier_RefusedDeletePublishesNothing(t *testing.T) {
	mockRepo := new(MockSupplierRepository)
	pub := &recordingPublisher{}
	svc := supplierservice.NewService(mockRepo, pub, logger.NewLogger("debug"))
	id := uuid.NewString()

	mockRepo.On("Delete", mock.Anything, id).Return(apperror.NewConflictError("O fornecedor possui pedidos."))

	assert.Error(t, svc.Delete(context.Background(), id))
	assert.Empty(t, pub.events)
}
