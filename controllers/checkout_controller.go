package controllers

import (
	"errors"
	"net/http"

	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
	Users    repository.UserRepository
	Logger   *zap.Logger
}

func NewCheckoutController(checkout *services.CheckoutService, users repository.UserRepository, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{Checkout: checkout, Users: users, Logger: logger}
}

// SubmitCheckout converts the session's cart into a pending order and opens a
// payment intent. Works for both authenticated buyers and guests.
func (cc *CheckoutController) SubmitCheckout(c *gin.Context) {
	var form services.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if form.UseDifferentShippingAddress {
		if form.ShippingAddressLine1 == "" || form.ShippingCity == "" ||
			form.ShippingState == "" || form.ShippingPostalCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shipping address is incomplete"})
			return
		}
	}

	sessionID := middleware.GetSessionID(c)
	userID := middleware.GetUserID(c)

	order, svcErr := cc.Checkout.Checkout(c.Request.Context(), sessionID, userID, &form)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

// Prefill returns the buyer's most recent billing address so the checkout
// form starts populated for returning customers.
func (cc *CheckoutController) Prefill(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	address, err := cc.Users.LatestBillingAddress(c.Request.Context(), *userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"address": nil})
			return
		}
		cc.Logger.Error("Failed to fetch billing address", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}
