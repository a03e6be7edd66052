package controllers

import (
	"net/http"

	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Users    repository.UserRepository
	Webhooks repository.WebhookRepository
	Payouts  *services.PayoutService
	Logger   *zap.Logger
}

func NewAdminController(users repository.UserRepository, webhooks repository.WebhookRepository, payouts *services.PayoutService, logger *zap.Logger) *AdminController {
	return &AdminController{Users: users, Webhooks: webhooks, Payouts: payouts, Logger: logger}
}

// requireAdmin resolves the caller and rejects non-admins.
func (ac *AdminController) requireAdmin(c *gin.Context) bool {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	user, err := ac.Users.GetByID(c.Request.Context(), *userID)
	if err != nil || !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}
	return true
}

// ListWebhookLogs exposes the gateway audit trail for reconciliation.
func (ac *AdminController) ListWebhookLogs(c *gin.Context) {
	if !ac.requireAdmin(c) {
		return
	}

	page, limit := pagination(c)
	logs, total, err := ac.Webhooks.ListLogs(c.Request.Context(), page, limit)
	if err != nil {
		ac.Logger.Error("Failed to list webhook logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "meta": buildMeta(page, limit, total)})
}

// RunPayoutSweep triggers an immediate settlement pass on top of the
// scheduled ones.
func (ac *AdminController) RunPayoutSweep(c *gin.Context) {
	if !ac.requireAdmin(c) {
		return
	}

	settled, err := ac.Payouts.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed", "items_settled": settled})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items_settled": settled})
}
