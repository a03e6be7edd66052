package controllers

import (
	"net/http"

	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SellerController handles payout-account onboarding with the gateway.
type SellerController struct {
	Users       repository.UserRepository
	Gateway     services.PaymentGateway
	FrontendURL string
	Logger      *zap.Logger
}

func NewSellerController(users repository.UserRepository, gateway services.PaymentGateway, frontendURL string, logger *zap.Logger) *SellerController {
	return &SellerController{Users: users, Gateway: gateway, FrontendURL: frontendURL, Logger: logger}
}

// StartOnboarding creates the seller's express account on first call and
// returns a fresh onboarding link either way.
func (sc *SellerController) StartOnboarding(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := sc.Users.GetByID(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID := ""
	if user.StripeAccountID != nil {
		accountID = *user.StripeAccountID
	} else {
		accountID, err = sc.Gateway.CreateExpressAccount()
		if err != nil {
			sc.Logger.Error("Failed to create express account", zap.String("user_id", user.ID.String()), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create payout account"})
			return
		}
		if err := sc.Users.SetStripeAccountID(c.Request.Context(), user.ID, accountID); err != nil {
			sc.Logger.Error("Failed to store stripe account id", zap.String("user_id", user.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save payout account"})
			return
		}
	}

	url, err := sc.Gateway.CreateAccountLink(accountID, sc.FrontendURL+"/auth/reauth", sc.FrontendURL+"/auth/wallet")
	if err != nil {
		sc.Logger.Error("Failed to create account link", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create onboarding link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// OnboardingReturn synchronously re-checks the seller's account once they
// come back from the gateway; account.updated webhooks keep it current after
// that.
func (sc *SellerController) OnboardingReturn(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := sc.Users.GetByID(c.Request.Context(), *userID)
	if err != nil || user.StripeAccountID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payout account not found"})
		return
	}

	submitted, err := sc.Gateway.AccountDetailsSubmitted(*user.StripeAccountID)
	if err != nil {
		sc.Logger.Warn("Failed to retrieve account", zap.String("account_id", *user.StripeAccountID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not check payout account"})
		return
	}

	if err := sc.Users.SetStripeVerified(c.Request.Context(), user.ID, submitted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update payout account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"details_submitted": submitted})
}
