package cart

import (
	"context"
	"testing"

	"furnimart-be/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, params AddItemParams) (*Item, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockRepository) Remove(ctx context.Context, userID, productID uint) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockRepository) Clear(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, userID uint) ([]Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) List(ctx context.Context, category string, activeOnly bool) ([]catalog.Furniture, error) {
	args := m.Called(ctx, category, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Furniture), args.Error(1)
}

func (m *MockCatalogRepo) GetByID(ctx context.Context, id uint) (*catalog.Furniture, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Furniture), args.Error(1)
}

func (m *MockCatalogRepo) GetByName(ctx context.Context, name string) (*catalog.Furniture, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Furniture), args.Error(1)
}

func (m *MockCatalogRepo) Create(ctx context.Context, f *catalog.Furniture) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockCatalogRepo) Update(ctx context.Context, id uint, params catalog.UpdateFurnitureParams) (*catalog.Furniture, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Furniture), args.Error(1)
}

func (m *MockCatalogRepo) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockCatalogRepo) UpdateLatestPrices(ctx context.Context, id uint, costPrice, salePrice int64) error {
	args := m.Called(ctx, id, costPrice, salePrice)
	return args.Error(0)
}

func (m *MockCatalogRepo) ResyncStock(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAdd_UpsertsActiveProduct(t *testing.T) {
	repo := new(MockRepository)
	cat := new(MockCatalogRepo)
	svc := NewService(repo, cat)

	params := AddItemParams{UserID: 7, ProductID: 3, Quantity: 2}
	cat.On("GetByID", mock.Anything, uint(3)).
		Return(&catalog.Furniture{ID: 3, Active: true}, nil)
	repo.On("Upsert", mock.Anything, params).
		Return(&Item{ID: 1, UserID: 7, ProductID: 3, Quantity: 2}, nil)

	item, err := svc.Add(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	repo.AssertExpectations(t)
}

func TestAdd_RejectsHiddenProduct(t *testing.T) {
	repo := new(MockRepository)
	cat := new(MockCatalogRepo)
	svc := NewService(repo, cat)

	cat.On("GetByID", mock.Anything, uint(3)).
		Return(&catalog.Furniture{ID: 3, Active: false}, nil)

	_, err := svc.Add(context.Background(), AddItemParams{UserID: 7, ProductID: 3, Quantity: 1})

	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockCatalogRepo))

	_, err := svc.Add(context.Background(), AddItemParams{UserID: 7, ProductID: 3, Quantity: 0})
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCatalogRepo))

	repo.On("Remove", mock.Anything, uint(7), uint(3)).Return(nil)

	require.NoError(t, svc.SetQuantity(context.Background(), 7, 3, 0))
	repo.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetQuantity_ZeroOnMissingLineIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCatalogRepo))

	repo.On("Remove", mock.Anything, uint(7), uint(3)).Return(ErrItemNotFound)

	assert.NoError(t, svc.SetQuantity(context.Background(), 7, 3, 0))
}
