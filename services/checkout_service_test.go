package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/sellyourtackle/tackle-backend/cart"
	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func validCheckoutForm() *CheckoutForm {
	return &CheckoutForm{
		Email:               "angler@example.com",
		FirstName:           "Sam",
		LastName:            "Waters",
		PaymentMethodID:     "pm_card_visa",
		BillingAddressLine1: "1 Riverside Walk",
		BillingCity:         "Exeter",
		BillingState:        "Devon",
		BillingPostalCode:   "EX1 1AA",
	}
}

type checkoutFixture struct {
	svc      *CheckoutService
	users    *MockUserRepo
	products *MockProductRepo
	orders   *MockOrderRepo
	gateway  *MockGateway
	store    *fakeCartStore
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		users:    new(MockUserRepo),
		products: new(MockProductRepo),
		orders:   new(MockOrderRepo),
		gateway:  new(MockGateway),
		store:    newFakeCartStore(),
	}
	f.svc = NewCheckoutService(
		f.users,
		f.products,
		f.orders,
		f.store,
		f.gateway,
		zap.NewNop(),
		"gbp",
		decimal.RequireFromString("0.10"),
		"https://sellyourtackle.co.uk/checkout/complete",
	)
	return f
}

// seedCart puts one product line in the session and registers the matching
// live product row.
func (f *checkoutFixture) seedCart(sessionID string, price, shipping string, quantity int) models.Product {
	product := models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Daiwa Ninja X",
		Price:    decimal.RequireFromString(price),
		Shipping: decimal.RequireFromString(shipping),
	}
	f.store.states[sessionID] = cart.State{
		product.ID.String(): {
			ProductID:    product.ID,
			Price:        product.Price,
			Quantity:     quantity,
			ShippingCost: product.Shipping,
		},
	}
	f.products.On("ListByIDs", mock.Anything, mock.Anything).Return([]models.Product{product}, nil)
	return product
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - order persisted before gateway, cart cleared after", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := uuid.New()
		buyer := &models.User{ID: buyerID, Email: "angler@example.com", FirstName: "Sam", LastName: "Waters"}
		product := f.seedCart("session-1", "50.00", "5.00", 2)

		f.users.On("GetByID", ctx, buyerID).Return(buyer, nil).Once()

		var persisted *models.Order
		f.orders.On("CreateCheckout", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				persisted = args.Get(1).(*models.Order)
				persisted.ID = uuid.New()
			}).Return(nil).Once()

		f.gateway.On("CreatePaymentIntent", mock.MatchedBy(func(req IntentRequest) bool {
			return req.Amount == 10500 && req.Currency == "gbp" && req.PaymentMethodID == "pm_card_visa"
		})).Return("pi_123", nil).Once()

		f.orders.On("SetPaymentIntentID", ctx, mock.Anything, "pi_123").Return(nil).Once()

		order, svcErr := f.svc.Checkout(ctx, "session-1", &buyerID, validCheckoutForm())
		require.Nil(t, svcErr)
		require.NotNil(t, order)

		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
		assert.True(t, order.ProductCost.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("5.00")))
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("105.00")))
		require.NotNil(t, order.PaymentIntentID)
		assert.Equal(t, "pi_123", *order.PaymentIntentID)

		// Commission was frozen on the item at checkout time.
		items := f.orders.Calls[0].Arguments.Get(2).([]models.OrderItem)
		require.Len(t, items, 1)
		assert.Equal(t, product.ID, items[0].ProductID)
		assert.True(t, items[0].Commission.Equal(decimal.RequireFromString("10.00")),
			"got %s", items[0].Commission)

		assert.Equal(t, 1, f.store.deletes, "cart should be cleared exactly once")
		f.orders.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})

	t.Run("Seller shipping edit mid-session - header matches item rows", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := uuid.New()
		buyer := &models.User{ID: buyerID, Email: "angler@example.com"}

		// Carted at 5.00 shipping, but the seller raised it to 8.00 since.
		product := models.Product{
			ID:       uuid.New(),
			SellerID: uuid.New(),
			Name:     "Shimano Baitrunner",
			Price:    decimal.RequireFromString("30.00"),
			Shipping: decimal.RequireFromString("8.00"),
		}
		f.store.states["session-1"] = cart.State{
			product.ID.String(): {
				ProductID:    product.ID,
				Price:        product.Price,
				Quantity:     1,
				ShippingCost: decimal.RequireFromString("5.00"),
			},
		}
		f.products.On("ListByIDs", mock.Anything, mock.Anything).Return([]models.Product{product}, nil)

		f.users.On("GetByID", ctx, buyerID).Return(buyer, nil).Once()
		f.orders.On("CreateCheckout", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.MatchedBy(func(req IntentRequest) bool {
			return req.Amount == 3800
		})).Return("pi_live", nil).Once()
		f.orders.On("SetPaymentIntentID", ctx, mock.Anything, "pi_live").Return(nil).Once()

		order, svcErr := f.svc.Checkout(ctx, "session-1", &buyerID, validCheckoutForm())
		require.Nil(t, svcErr)
		require.NotNil(t, order)

		assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("8.00")))
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("38.00")))

		items := f.orders.Calls[0].Arguments.Get(2).([]models.OrderItem)
		require.Len(t, items, 1)
		assert.True(t, items[0].ShippingCost.Equal(order.ShippingCost))
		assert.True(t, items[0].TotalWithShipping().Equal(order.TotalAmount))
		f.gateway.AssertExpectations(t)
	})

	t.Run("Empty cart - 400", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := uuid.New()

		order, svcErr := f.svc.Checkout(ctx, "session-empty", &buyerID, validCheckoutForm())

		assert.Nil(t, order)
		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
		f.orders.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Gateway declines - 402, pending order kept, cart untouched", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := uuid.New()
		buyer := &models.User{ID: buyerID, Email: "angler@example.com"}
		f.seedCart("session-1", "25.00", "0.00", 1)

		f.users.On("GetByID", ctx, buyerID).Return(buyer, nil).Once()
		f.orders.On("CreateCheckout", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.Anything).
			Return("", &stripe.Error{Msg: "Your card was declined."}).Once()

		order, svcErr := f.svc.Checkout(ctx, "session-1", &buyerID, validCheckoutForm())

		assert.Nil(t, order)
		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusPaymentRequired, svcErr.StatusCode)
		assert.Equal(t, "Your card was declined.", svcErr.Message)

		assert.Equal(t, 0, f.store.deletes, "declined payment must not clear the cart")
		f.orders.AssertNotCalled(t, "SetPaymentIntentID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Guest buyer - inactive account created by email", func(t *testing.T) {
		f := newCheckoutFixture()
		f.seedCart("session-1", "30.00", "3.50", 1)

		f.users.On("GetByEmail", ctx, "angler@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "angler@example.com" && !u.IsActive && u.PasswordHash != ""
		})).Return(nil).Once()

		f.orders.On("CreateCheckout", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.Anything).Return("pi_guest", nil).Once()
		f.orders.On("SetPaymentIntentID", ctx, mock.Anything, "pi_guest").Return(nil).Once()

		order, svcErr := f.svc.Checkout(ctx, "session-1", nil, validCheckoutForm())
		require.Nil(t, svcErr)
		require.NotNil(t, order)

		f.users.AssertExpectations(t)
	})

	t.Run("Separate shipping address forwarded to gateway", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := uuid.New()
		buyer := &models.User{ID: buyerID, Email: "angler@example.com"}
		f.seedCart("session-1", "15.00", "2.00", 1)

		form := validCheckoutForm()
		form.UseDifferentShippingAddress = true
		form.ShippingAddressLine1 = "2 Harbour View"
		form.ShippingCity = "Plymouth"
		form.ShippingState = "Devon"
		form.ShippingPostalCode = "PL1 2BB"

		f.users.On("GetByID", ctx, buyerID).Return(buyer, nil).Once()
		f.orders.On("CreateCheckout", ctx, mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.Address) bool {
			return a != nil && a.AddressType == models.AddressTypeShipping && a.City == "Plymouth"
		})).Return(nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.MatchedBy(func(req IntentRequest) bool {
			return req.Shipping != nil && req.Shipping.City == "Plymouth"
		})).Return("pi_ship", nil).Once()
		f.orders.On("SetPaymentIntentID", ctx, mock.Anything, "pi_ship").Return(nil).Once()

		_, svcErr := f.svc.Checkout(ctx, "session-1", &buyerID, form)
		require.Nil(t, svcErr)

		f.orders.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})
}
