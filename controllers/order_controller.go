package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderController struct {
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	Gateway  services.PaymentGateway
	Events   services.EventPublisher
	Email    services.EmailSender
	Currency string
	Logger   *zap.Logger
}

func NewOrderController(orders repository.OrderRepository, users repository.UserRepository, gateway services.PaymentGateway, events services.EventPublisher, email services.EmailSender, currency string, logger *zap.Logger) *OrderController {
	return &OrderController{Orders: orders, Users: users, Gateway: gateway, Events: events, Email: email, Currency: currency, Logger: logger}
}

// ListMyOrders returns the buyer's paginated order history.
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := pagination(c)
	orders, total, err := oc.Orders.ListByUser(c.Request.Context(), *userID, page, limit)
	if err != nil {
		oc.Logger.Error("Failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "meta": buildMeta(page, limit, total)})
}

// GetOrder returns one of the buyer's orders with items and addresses.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := oc.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if order.UserID == nil || *order.UserID != *userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListSales returns the seller's sold items.
func (oc *OrderController) ListSales(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := oc.Orders.ListSalesBySeller(c.Request.Context(), *userID)
	if err != nil {
		oc.Logger.Error("Failed to fetch sales", zap.String("seller_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DispatchOrder records tracking details and moves a paid order to shipped.
func (oc *OrderController) DispatchOrder(c *gin.Context) {
	var req struct {
		TrackingNumber  string `json:"tracking_number" binding:"required"`
		TrackingCompany string `json:"tracking_company" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, ok := oc.sellerOrder(c)
	if !ok {
		return
	}

	target := models.StatusPair{Status: models.OrderStatusShipped, PaymentStatus: models.PaymentStatusCompleted}
	if !models.CanTransition(order.CurrentPair(), target) {
		c.JSON(http.StatusConflict, gin.H{"error": "order cannot be dispatched in its current state"})
		return
	}

	if err := oc.Orders.MarkShipped(c.Request.Context(), order.ID, req.TrackingNumber, req.TrackingCompany); err != nil {
		oc.Logger.Error("Failed to mark order shipped", zap.String("order_id", order.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	oc.publish("order_shipped", order)
	oc.notifyBuyer(c, order, "Your order has been dispatched",
		"Your order "+order.ID.String()+" is on its way with "+req.TrackingCompany+", tracking number "+req.TrackingNumber+".")

	c.JSON(http.StatusOK, gin.H{"status": models.OrderStatusShipped})
}

// RefundOrder requests a gateway refund for a paid order. The refunded state
// is applied optimistically; an asynchronous refund failure arrives later via
// webhook and flips payment_status to refund_failed.
func (oc *OrderController) RefundOrder(c *gin.Context) {
	order, ok := oc.sellerOrder(c)
	if !ok {
		return
	}

	target := models.StatusPair{Status: models.OrderStatusRefunded, PaymentStatus: models.PaymentStatusRefunded}
	if !models.CanTransition(order.CurrentPair(), target) {
		c.JSON(http.StatusConflict, gin.H{"error": "order cannot be refunded in its current state"})
		return
	}
	if order.PaymentIntentID == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "order has no payment to refund"})
		return
	}

	if err := oc.Gateway.CreateRefund(*order.PaymentIntentID); err != nil {
		oc.Logger.Warn("Refund rejected by gateway",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Refund could not be processed"})
		return
	}

	if err := oc.Orders.MarkRefunded(c.Request.Context(), order.ID); err != nil {
		oc.Logger.Error("Failed to mark order refunded", zap.String("order_id", order.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": models.OrderStatusRefunded})
}

// sellerOrder loads the order in :id and verifies the caller sold something
// in it.
func (oc *OrderController) sellerOrder(c *gin.Context) (*models.Order, bool) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return nil, false
	}

	order, err := oc.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return nil, false
	}

	for _, item := range order.Items {
		if item.SellerID != nil && *item.SellerID == *userID {
			return order, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	return nil, false
}

func (oc *OrderController) publish(eventType string, order *models.Order) {
	if oc.Events == nil {
		return
	}
	userID := ""
	if order.UserID != nil {
		userID = order.UserID.String()
	}
	evt := models.OrderEvent{
		Type:      eventType,
		OrderID:   order.ID.String(),
		UserID:    userID,
		Amount:    models.MinorUnits(order.TotalAmount),
		Currency:  oc.Currency,
		Timestamp: time.Now().UTC(),
	}
	if err := oc.Events.Publish(evt); err != nil {
		oc.Logger.Error("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", evt.OrderID),
			zap.Error(err),
		)
	}
}

func (oc *OrderController) notifyBuyer(c *gin.Context, order *models.Order, subject, body string) {
	if oc.Email == nil || order.UserID == nil {
		return
	}
	buyer, err := oc.Users.GetByID(c.Request.Context(), *order.UserID)
	if err != nil {
		return
	}
	if err := oc.Email.SendEmail(c.Request.Context(), buyer.Email, subject, body); err != nil {
		oc.Logger.Warn("Failed to send dispatch email", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
