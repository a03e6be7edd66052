package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/sellyourtackle/tackle-backend/cart"
	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CheckoutForm is the submitted buyer identity, address and payment data.
type CheckoutForm struct {
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	PhoneNumber     string `json:"phone_number"`
	PaymentMethodID string `json:"payment_method" binding:"required"`

	BillingAddressLine1 string `json:"billing_address_line1" binding:"required"`
	BillingAddressLine2 string `json:"billing_address_line2"`
	BillingCity         string `json:"billing_city" binding:"required"`
	BillingState        string `json:"billing_state" binding:"required"`
	BillingPostalCode   string `json:"billing_postal_code" binding:"required"`

	UseDifferentShippingAddress bool   `json:"use_different_shipping_address"`
	ShippingFirstName           string `json:"shipping_first_name"`
	ShippingLastName            string `json:"shipping_last_name"`
	ShippingAddressLine1        string `json:"shipping_address_line1"`
	ShippingAddressLine2        string `json:"shipping_address_line2"`
	ShippingCity                string `json:"shipping_city"`
	ShippingState               string `json:"shipping_state"`
	ShippingPostalCode          string `json:"shipping_postal_code"`
}

type CheckoutService struct {
	users          repository.UserRepository
	products       repository.ProductRepository
	orders         repository.OrderRepository
	cartStore      cart.Store
	gateway        PaymentGateway
	logger         *zap.Logger
	currency       string
	commissionRate decimal.Decimal
	returnURL      string
}

func NewCheckoutService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	cartStore cart.Store,
	gateway PaymentGateway,
	logger *zap.Logger,
	currency string,
	commissionRate decimal.Decimal,
	returnURL string,
) *CheckoutService {
	return &CheckoutService{
		users:          users,
		products:       products,
		orders:         orders,
		cartStore:      cartStore,
		gateway:        gateway,
		logger:         logger,
		currency:       currency,
		commissionRate: commissionRate,
		returnURL:      returnURL,
	}
}

// Checkout turns the session's cart into a pending order and opens a payment
// intent with the gateway. The order and its rows are committed before the
// gateway call so the webhook can always reconcile by intent id, and the cart
// is cleared only once everything has succeeded.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, userID *uuid.UUID, form *CheckoutForm) (*models.Order, *ServiceError) {
	c, err := cart.Load(ctx, s.cartStore, sessionID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load cart"}
	}

	items, err := c.Items(ctx, s.products)
	if err != nil {
		s.logger.Error("Failed to resolve cart products", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load cart"}
	}
	if len(items) == 0 {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cart is empty"}
	}

	buyer, svcErr := s.resolveBuyer(ctx, userID, form)
	if svcErr != nil {
		return nil, svcErr
	}

	billing, shipping := s.buildAddresses(buyer.ID, form)

	// Order totals are summed from the same joined rows the item rows are
	// built from, so the header always matches the items even when a seller
	// edited shipping after the product was carted.
	productCost := decimal.Zero
	shippingCost := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		sellerID := item.Product.SellerID
		orderItems = append(orderItems, models.OrderItem{
			ProductID:    item.Product.ID,
			SellerID:     &sellerID,
			Price:        item.Price,
			Quantity:     item.Quantity,
			ShippingCost: item.ShippingCost,
			Commission:   models.Commission(item.Price, item.Quantity, s.commissionRate),
		})
		productCost = productCost.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		shippingCost = shippingCost.Add(item.ShippingCost)
	}

	order := &models.Order{
		UserID:        &buyer.ID,
		ProductCost:   productCost,
		ShippingCost:  shippingCost,
		TotalAmount:   productCost.Add(shippingCost),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	if err := s.orders.CreateCheckout(ctx, order, orderItems, billing, shipping); err != nil {
		s.logger.Error("Failed to persist checkout", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	shippingForGateway := shipping
	if shippingForGateway == nil {
		shippingForGateway = billing
	}

	intentID, err := s.gateway.CreatePaymentIntent(IntentRequest{
		Amount:          models.MinorUnits(order.TotalAmount),
		Currency:        s.currency,
		PaymentMethodID: form.PaymentMethodID,
		ReturnURL:       s.returnURL,
		Metadata: map[string]string{
			"user_email":      buyer.Email,
			"user_first_name": buyer.FirstName,
			"user_last_name":  buyer.LastName,
		},
		Shipping: shippingForGateway,
	})
	if err != nil {
		// The pending order is kept so support can reconcile manually.
		s.logger.Warn("Payment intent rejected",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &ServiceError{StatusCode: http.StatusPaymentRequired, Message: stripeErr.Msg}
		}
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment could not be processed"}
	}

	if err := s.orders.SetPaymentIntentID(ctx, order.ID, intentID); err != nil {
		s.logger.Error("Failed to store payment intent id",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_intent_id", intentID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to finalize order"}
	}
	order.PaymentIntentID = &intentID

	if err := c.Clear(ctx); err != nil {
		// Not fatal: the order is placed; a stale cart is a UX wrinkle only.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", intentID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

// resolveBuyer returns the authenticated user, an existing user matched by
// email, or a freshly created inactive account with an unusable password.
func (s *CheckoutService) resolveBuyer(ctx context.Context, userID *uuid.UUID, form *CheckoutForm) (*models.User, *ServiceError) {
	if userID != nil {
		user, err := s.users.GetByID(ctx, *userID)
		if err != nil {
			return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "User not found"}
		}
		return user, nil
	}

	user, err := s.users.GetByEmail(ctx, form.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to look up user"}
	}

	hash, err := randomPasswordHash()
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create user"}
	}
	guest := &models.User{
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PasswordHash: hash,
		IsActive:     false,
	}
	if err := s.users.Create(ctx, guest); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create user"}
	}
	return guest, nil
}

func (s *CheckoutService) buildAddresses(userID uuid.UUID, form *CheckoutForm) (*models.Address, *models.Address) {
	billing := &models.Address{
		UserID:       userID,
		AddressType:  models.AddressTypeBilling,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        optional(form.Email),
		PhoneNumber:  optional(form.PhoneNumber),
		AddressLine1: form.BillingAddressLine1,
		AddressLine2: optional(form.BillingAddressLine2),
		City:         form.BillingCity,
		State:        form.BillingState,
		PostalCode:   form.BillingPostalCode,
	}

	if !form.UseDifferentShippingAddress {
		return billing, nil
	}

	firstName := form.ShippingFirstName
	if firstName == "" {
		firstName = form.FirstName
	}
	lastName := form.ShippingLastName
	if lastName == "" {
		lastName = form.LastName
	}
	shipping := &models.Address{
		UserID:       userID,
		AddressType:  models.AddressTypeShipping,
		FirstName:    firstName,
		LastName:     lastName,
		AddressLine1: form.ShippingAddressLine1,
		AddressLine2: optional(form.ShippingAddressLine2),
		City:         form.ShippingCity,
		State:        form.ShippingState,
		PostalCode:   form.ShippingPostalCode,
	}
	return billing, shipping
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// randomPasswordHash generates an unusable password for implicit guest
// accounts; the user must reset it before logging in.
func randomPasswordHash() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
