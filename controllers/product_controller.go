package controllers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductController struct {
	Products repository.ProductRepository
	Logger   *zap.Logger
}

func NewProductController(products repository.ProductRepository, logger *zap.Logger) *ProductController {
	return &ProductController{Products: products, Logger: logger}
}

// ListProducts returns paginated live, unsold products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := pagination(c)

	products, total, err := pc.Products.ListLive(c.Request.Context(), page, limit)
	if err != nil {
		pc.Logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "meta": buildMeta(page, limit, total)})
}

// GetProduct returns one product by slug.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct lists a new item for the authenticated seller.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Brand       string          `json:"brand" binding:"required"`
		Category    string          `json:"category" binding:"required"`
		Name        string          `json:"name" binding:"required"`
		Condition   string          `json:"condition" binding:"required"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		Shipping    decimal.Decimal `json:"shipping"`
		Visibility  string          `json:"visibility" binding:"omitempty,oneof=draft live"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	if input.Shipping.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shipping cannot be negative"})
		return
	}
	if !validCondition(input.Condition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown condition"})
		return
	}

	slug, err := repository.UniqueSlug(c.Request.Context(), pc.Products, slugify(input.Name))
	if err != nil {
		pc.Logger.Error("Failed to derive slug", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityDraft
	}

	product := models.Product{
		SellerID:        *userID,
		Brand:           input.Brand,
		Category:        input.Category,
		Name:            input.Name,
		Slug:            slug,
		Condition:       input.Condition,
		Description:     optional(input.Description),
		Price:           input.Price.Round(2),
		Shipping:        input.Shipping.Round(2),
		FinancialStatus: models.FinancialStatusUnsold,
		Visibility:      visibility,
	}
	if err := pc.Products.Create(c.Request.Context(), &product); err != nil {
		pc.Logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct edits one of the seller's listings.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := pc.Products.GetByID(c.Request.Context(), productID)
	if err != nil || product.SellerID != *userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if product.FinancialStatus == models.FinancialStatusSold {
		c.JSON(http.StatusConflict, gin.H{"error": "sold products cannot be edited"})
		return
	}

	var input struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Condition   *string          `json:"condition"`
		Price       *decimal.Decimal `json:"price"`
		Shipping    *decimal.Decimal `json:"shipping"`
		Visibility  *string          `json:"visibility" binding:"omitempty,oneof=draft live"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Condition != nil {
		if !validCondition(*input.Condition) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown condition"})
			return
		}
		updates["condition"] = *input.Condition
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
			return
		}
		updates["price"] = input.Price.Round(2)
	}
	if input.Shipping != nil {
		if input.Shipping.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shipping cannot be negative"})
			return
		}
		updates["shipping"] = input.Shipping.Round(2)
	}
	if input.Visibility != nil {
		updates["visibility"] = *input.Visibility
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if _, err := pc.Products.Update(c.Request.Context(), productID, updates); err != nil {
		pc.Logger.Error("Failed to update product", zap.String("product_id", productID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct removes one of the seller's listings.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	rows, err := pc.Products.Delete(c.Request.Context(), productID, *userID)
	if err != nil {
		pc.Logger.Error("Failed to delete product", zap.String("product_id", productID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// MyListings returns everything the seller has listed, drafts included.
func (pc *ProductController) MyListings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	products, err := pc.Products.ListBySeller(c.Request.Context(), *userID)
	if err != nil {
		pc.Logger.Error("Failed to list seller products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func validCondition(condition string) bool {
	for _, valid := range models.Conditions {
		if condition == valid {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// slugify lowercases the name and collapses everything that isn't a letter or
// digit into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
