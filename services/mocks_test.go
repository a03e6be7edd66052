package services

import (
	"context"

	"github.com/sellyourtackle/tackle-backend/cart"
	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- Mock Order Repository ---

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) CreateCheckout(ctx context.Context, order *models.Order, items []models.OrderItem, billing *models.Address, shipping *models.Address) error {
	args := m.Called(ctx, order, items, billing, shipping)
	return args.Error(0)
}

func (m *MockOrderRepo) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	args := m.Called(ctx, orderID, intentID)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) ListSalesBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]models.OrderItem), args.Error(1)
}

func (m *MockOrderRepo) MarkPaid(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkFailed(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkRefunded(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkRefundFailed(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, trackingCompany string) error {
	args := m.Called(ctx, orderID, trackingNumber, trackingCompany)
	return args.Error(0)
}

// --- Mock User Repository ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByStripeAccountID(ctx context.Context, accountID string) (*models.User, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) SetStripeAccountID(ctx context.Context, userID uuid.UUID, accountID string) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

func (m *MockUserRepo) SetStripeVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

func (m *MockUserRepo) LatestBillingAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

// --- Mock Product Repository ---

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepo) ListLive(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepo) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id, sellerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// --- Mock Webhook Repository ---

type MockWebhookRepo struct {
	mock.Mock
}

func (m *MockWebhookRepo) CreateLog(ctx context.Context, log *models.WebhookLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockWebhookRepo) InsertEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	args := m.Called(ctx, eventID, eventType)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookRepo) DeleteEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockWebhookRepo) ListLogs(ctx context.Context, page, limit int) ([]models.WebhookLog, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.WebhookLog), args.Get(1).(int64), args.Error(2)
}

// --- Mock Payout Repository ---

type MockPayoutRepo struct {
	mock.Mock
}

func (m *MockPayoutRepo) SweepUnsettled(ctx context.Context, limit int, transfer repository.TransferFunc) (int, error) {
	args := m.Called(ctx, limit, transfer)
	return args.Int(0), args.Error(1)
}

// --- Mock Payment Gateway ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(req IntentRequest) (string, error) {
	args := m.Called(req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateTransfer(amount int64, currency, destination, transferGroup, idempotencyKey string) (string, error) {
	args := m.Called(amount, currency, destination, transferGroup, idempotencyKey)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateRefund(paymentIntentID string) error {
	args := m.Called(paymentIntentID)
	return args.Error(0)
}

func (m *MockGateway) CreateExpressAccount() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateAccountLink(accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) AccountDetailsSubmitted(accountID string) (bool, error) {
	args := m.Called(accountID)
	return args.Bool(0), args.Error(1)
}

// --- Mock Event Publisher ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(event models.OrderEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// --- Mock Email Sender ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// --- In-memory cart store ---

type fakeCartStore struct {
	states  map[string]cart.State
	deletes int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{states: map[string]cart.State{}}
}

func (f *fakeCartStore) Load(_ context.Context, sessionID string) (cart.State, error) {
	return f.states[sessionID], nil
}

func (f *fakeCartStore) Save(_ context.Context, sessionID string, state cart.State) error {
	f.states[sessionID] = state
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, sessionID string) error {
	f.deletes++
	delete(f.states, sessionID)
	return nil
}
