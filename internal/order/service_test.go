package order

import (
	"context"
	"testing"
	"time"

	"furnimart-be/internal/catalog"
	"furnimart-be/internal/inventory"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil && o.ID == 0 {
		o.ID = 1
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint, status OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) SetPaymentStatus(ctx context.Context, id uint, status PaymentStatus, paidAt *time.Time) error {
	args := m.Called(ctx, id, status, paidAt)
	return args.Error(0)
}

func (m *MockRepository) UpdatePaymentIfPending(ctx context.Context, orderID, transactionID string, status PaymentStatus, paidAt *time.Time) (bool, error) {
	args := m.Called(ctx, orderID, transactionID, status, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetStockAllocated(ctx context.Context, id uint, allocated bool) error {
	args := m.Called(ctx, id, allocated)
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SearchByPhone(ctx context.Context, phone string) ([]Order, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) SearchByCustomerName(ctx context.Context, name string) ([]Order, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

type MockStock struct {
	mock.Mock
}

func (m *MockStock) Allocate(ctx context.Context, productID uint, qty int) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockStock) Restore(ctx context.Context, productID uint, qty int) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockStock) Import(ctx context.Context, in inventory.ImportInput) (*catalog.Furniture, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Furniture), args.Error(1)
}

func (m *MockStock) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockStock) ListByProduct(ctx context.Context, productID uint) ([]inventory.Batch, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockStock) Overview(ctx context.Context) ([]inventory.OverviewRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.OverviewRow), args.Error(1)
}

func (m *MockStock) ImportHistory(ctx context.Context) ([]inventory.ImportRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.ImportRecord), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, userID uint, subject, body string) error {
	args := m.Called(ctx, userID, subject, body)
	return args.Error(0)
}

func newTestService(repo Repository, stock inventory.Service, mailer *MockMailer) Service {
	// Synchronous mail so mock expectations are deterministic. The
	// mailer field stays an untyped nil when no mock is supplied, so
	// the no-mailer guard in the service still fires.
	s := &service{repo: repo, stock: stock, mailAsync: false}
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID: 7,
		Items: []OrderItem{
			{ProductID: 1, Name: "Oak Table", Price: 1500000, Quantity: 2},
			{ProductID: 2, Name: "Walnut Chair", Price: 500000, Quantity: 1},
		},
		Total: 3500000,
		Address: ShippingAddress{
			FullName:    "Nguyen Van A",
			Street:      "12 Tran Hung Dao, HCMC",
			PhoneNumber: "0901234567",
		},
		Method: MethodCOD,
	}
}

// --- Create ---

func TestCreateOrder_ValidationErrors(t *testing.T) {
	svc := newTestService(new(MockRepository), new(MockStock), nil)

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"no items", func(in *CreateOrderInput) { in.Items = nil }},
		{"zero total", func(in *CreateOrderInput) { in.Total = 0 }},
		{"missing full name", func(in *CreateOrderInput) { in.Address.FullName = "" }},
		{"missing street", func(in *CreateOrderInput) { in.Address.Street = "" }},
		{"missing phone", func(in *CreateOrderInput) { in.Address.PhoneNumber = "" }},
		{"unknown method", func(in *CreateOrderInput) { in.Method = "paypal" }},
		{"zero quantity item", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateOrder_CODAllocatesStockEagerly(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	mailer := new(MockMailer)
	svc := newTestService(repo, stock, mailer)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	stock.On("Allocate", mock.Anything, uint(1), 2).Return(nil)
	stock.On("Allocate", mock.Anything, uint(2), 1).Return(nil)
	repo.On("SetStockAllocated", mock.Anything, uint(1), true).Return(nil)
	mailer.On("Send", mock.Anything, uint(7), mock.Anything, mock.Anything).Return(nil)

	o, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, o.Status)
	assert.Equal(t, PaymentPending, o.Payment.PaymentStatus)
	assert.True(t, o.StockAllocated)
	assert.NotEmpty(t, o.OrderID)
	repo.AssertExpectations(t)
	stock.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestCreateOrder_CODInsufficientStockSurfaced(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	svc := newTestService(repo, stock, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	stock.On("Allocate", mock.Anything, uint(1), 2).Return(inventory.ErrInsufficientStock)

	_, err := svc.Create(context.Background(), validInput())

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	stock.AssertNotCalled(t, "Allocate", mock.Anything, uint(2), 1)
	repo.AssertNotCalled(t, "SetStockAllocated", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_GatewayMethodDefersAllocation(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	svc := newTestService(repo, stock, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	in := validInput()
	in.Method = MethodMoMo

	o, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.False(t, o.StockAllocated)
	stock.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_NoMailerConfigured(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	svc := newTestService(repo, stock, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	stock.On("Allocate", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("SetStockAllocated", mock.Anything, mock.Anything, true).Return(nil)

	require.NotPanics(t, func() {
		_, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
	})
}

func TestCreateOrder_MailFailureDoesNotFailOrder(t *testing.T) {
	repo := new(MockRepository)
	mailer := new(MockMailer)
	svc := newTestService(repo, new(MockStock), mailer)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mailer.On("Send", mock.Anything, uint(7), mock.Anything, mock.Anything).
		Return(assert.AnError)

	in := validInput()
	in.Method = MethodZaloPay

	_, err := svc.Create(context.Background(), in)
	assert.NoError(t, err)
}

// --- Transition ---

func existing(status OrderStatus, method PaymentMethod, allocated bool) *Order {
	return &Order{
		ID:             1,
		OrderID:        "ORD-100",
		UserID:         7,
		Items:          validInput().Items,
		Status:         status,
		Method:         method,
		Payment:        PaymentDetails{PaymentStatus: PaymentPending},
		StockAllocated: allocated,
	}
}

func TestTransition_StaffShipsSubmittedOrder(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusSubmitted, MethodCOD, true), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusInTransit).Return(nil)

	o, err := svc.Transition(context.Background(), 1, StatusInTransit, utils.RoleStaff)

	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, o.Status)
}

func TestTransition_LogsPriorStatus(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	core, observed := observer.New(zapcore.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusSubmitted, MethodCOD, true), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusInTransit).Return(nil)

	_, err := svc.Transition(ctx, 1, StatusInTransit, utils.RoleStaff)
	require.NoError(t, err)

	entries := observed.FilterMessage("order transition applied").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(StatusSubmitted), entries[0].ContextMap()["from_status"])
}

func TestTransition_RejectsInvalidEdges(t *testing.T) {
	cases := []struct {
		name  string
		from  OrderStatus
		to    OrderStatus
		actor string
	}{
		{"customer cannot ship", StatusSubmitted, StatusInTransit, utils.RoleCustomer},
		{"cannot skip transit", StatusSubmitted, StatusCompleted, utils.RoleStaff},
		{"completed is terminal", StatusCompleted, StatusCancelled, utils.RoleStaff},
		{"cancelled is terminal", StatusCancelled, StatusSubmitted, utils.RoleStaff},
		{"staff cannot complete delivery", StatusInTransit, StatusCompleted, utils.RoleStaff},
		{"customer cannot cancel in transit", StatusInTransit, StatusCancelled, utils.RoleCustomer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, new(MockStock), nil)
			repo.On("GetByID", mock.Anything, uint(1)).
				Return(existing(tc.from, MethodCOD, true), nil)

			_, err := svc.Transition(context.Background(), 1, tc.to, tc.actor)

			assert.ErrorIs(t, err, ErrInvalidTransition)
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTransition_CancellationRestoresAllocatedStock(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	svc := newTestService(repo, stock, nil)

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusSubmitted, MethodCOD, true), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusCancelled).Return(nil)
	stock.On("Restore", mock.Anything, uint(1), 2).Return(nil)
	stock.On("Restore", mock.Anything, uint(2), 1).Return(nil)
	repo.On("SetStockAllocated", mock.Anything, uint(1), false).Return(nil)

	o, err := svc.Transition(context.Background(), 1, StatusCancelled, utils.RoleCustomer)

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.False(t, o.StockAllocated)
	stock.AssertExpectations(t)
}

func TestTransition_CancellationWithoutAllocationSkipsRestore(t *testing.T) {
	repo := new(MockRepository)
	stock := new(MockStock)
	svc := newTestService(repo, stock, nil)

	// Gateway order whose payment never completed; nothing was deducted.
	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusSubmitted, MethodMoMo, false), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusCancelled).Return(nil)

	_, err := svc.Transition(context.Background(), 1, StatusCancelled, utils.RoleCustomer)

	require.NoError(t, err)
	stock.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_CourierDeliverySettlesCOD(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusInTransit, MethodCOD, true), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusCompleted).Return(nil)
	repo.On("SetPaymentStatus", mock.Anything, uint(1), PaymentCompleted, mock.Anything).Return(nil)

	o, err := svc.Transition(context.Background(), 1, StatusCompleted, utils.RoleCourier)

	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, o.Payment.PaymentStatus)
	repo.AssertExpectations(t)
}

func TestTransition_DeliveryLeavesGatewayPaymentAlone(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusInTransit, MethodMoMo, true), nil)
	repo.On("UpdateStatus", mock.Anything, uint(1), StatusCompleted).Return(nil)

	_, err := svc.Transition(context.Background(), 1, StatusCompleted, utils.RoleCourier)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "SetPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Payment results ---

func TestApplyPaymentResult_FirstDeliveryCompletes(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByOrderID", mock.Anything, "ORD-100").
		Return(existing(StatusSubmitted, MethodMoMo, false), nil)
	repo.On("UpdatePaymentIfPending", mock.Anything, "ORD-100", "TXN-1", PaymentCompleted, mock.Anything).
		Return(true, nil)

	newlyCompleted, o, err := svc.ApplyPaymentResult(context.Background(), "ORD-100", "TXN-1", PaymentCompleted)

	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	assert.Equal(t, PaymentCompleted, o.Payment.PaymentStatus)
	assert.Equal(t, "TXN-1", o.Payment.TransactionID)
}

func TestApplyPaymentResult_RedeliveryIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByOrderID", mock.Anything, "ORD-100").
		Return(existing(StatusSubmitted, MethodMoMo, true), nil)
	repo.On("UpdatePaymentIfPending", mock.Anything, "ORD-100", "TXN-1", PaymentCompleted, mock.Anything).
		Return(false, nil)

	newlyCompleted, _, err := svc.ApplyPaymentResult(context.Background(), "ORD-100", "TXN-1", PaymentCompleted)

	require.NoError(t, err)
	assert.False(t, newlyCompleted)
}

func TestApplyPaymentResult_FailureNeverCompletes(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByOrderID", mock.Anything, "ORD-100").
		Return(existing(StatusSubmitted, MethodZaloPay, false), nil)
	repo.On("UpdatePaymentIfPending", mock.Anything, "ORD-100", "TXN-2", PaymentFailed, (*time.Time)(nil)).
		Return(true, nil)

	newlyCompleted, o, err := svc.ApplyPaymentResult(context.Background(), "ORD-100", "TXN-2", PaymentFailed)

	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, PaymentFailed, o.Payment.PaymentStatus)
}

// --- Access control ---

func TestGetDetail_CustomerCannotReadOthersOrder(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockStock), nil)

	repo.On("GetByID", mock.Anything, uint(1)).
		Return(existing(StatusSubmitted, MethodCOD, true), nil)

	_, err := svc.GetDetail(context.Background(), 99, 1, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	o, err := svc.GetDetail(context.Background(), 99, 1, true)
	require.NoError(t, err)
	assert.Equal(t, uint(7), o.UserID)
}
