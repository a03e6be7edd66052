package controllers

import (
	"net/http"

	"github.com/sellyourtackle/tackle-backend/cart"
	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartController struct {
	Store    cart.Store
	Products repository.ProductRepository
	Logger   *zap.Logger
}

func NewCartController(store cart.Store, products repository.ProductRepository, logger *zap.Logger) *CartController {
	return &CartController{Store: store, Products: products, Logger: logger}
}

// GetCart returns the session's cart joined against live product rows.
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	basket, err := cart.Load(c.Request.Context(), cc.Store, sessionID)
	if err != nil {
		cc.Logger.Error("Failed to load cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}

	items, err := basket.Items(c.Request.Context(), cc.Products)
	if err != nil {
		cc.Logger.Error("Failed to resolve cart products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if items == nil {
		items = []cart.LineItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":          items,
		"count":          basket.Len(),
		"total_price":    basket.TotalPrice(),
		"shipping_total": basket.ShippingTotal(),
		"combined_total": basket.CombinedTotal(),
	})
}

// AddItem puts a product in the cart. Sold products and duplicates are
// rejected so the storefront can surface a message instead of silently
// bumping quantity on one-of-a-kind tackle.
func (cc *CartController) AddItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := cc.Products.GetByID(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if !product.InStock() {
		c.JSON(http.StatusConflict, gin.H{"error": product.Name + " is already sold"})
		return
	}

	basket, err := cart.Load(c.Request.Context(), cc.Store, sessionID)
	if err != nil {
		cc.Logger.Error("Failed to load cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if basket.Contains(product.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": product.Name + " is already in your cart"})
		return
	}

	basket.Add(product, product.Price)
	if err := basket.Save(c.Request.Context()); err != nil {
		cc.Logger.Error("Failed to save cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": product.Name + " has been added to your cart", "count": basket.Len()})
}

// RemoveItem drops a product from the cart; removing an absent product
// succeeds quietly.
func (cc *CartController) RemoveItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	basket, err := cart.Load(c.Request.Context(), cc.Store, sessionID)
	if err != nil {
		cc.Logger.Error("Failed to load cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	basket.Remove(productID)
	if err := basket.Save(c.Request.Context()); err != nil {
		cc.Logger.Error("Failed to save cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": basket.Len()})
}
