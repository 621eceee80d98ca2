package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

type ProductRequest struct {
	SubmissionID int    `json:"submission_id" binding:"required"`
	PriceCents   int    `json:"price_cents" binding:"required,min=0"`
	Currency     string `json:"currency" binding:"omitempty,len=3"`
}

// CreateProduct converts a published submission into a shop product. Book
// managers only; the product type comes from the format review decision.
func CreateProduct(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", req.SubmissionID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if submission.Status != models.StatusPublished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only published submissions can become products"})
		return
	}
	if submission.BookDecision == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission has no format decision"})
		return
	}

	var existing models.Product
	if err := config.DB.Where("submission_id = ?", submission.SubmissionID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Product already exists for this submission"})
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	product := models.Product{
		SubmissionID: submission.SubmissionID,
		SKU:          generateSKU(submission),
		Title:        submission.Title,
		ProductType:  *submission.BookDecision,
		PriceCents:   req.PriceCents,
		Currency:     currency,
		IsActive:     true,
		CreatedBy:    userID,
		CreatedAt:    time.Now(),
	}
	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// GetProducts lists active products. Public catalog endpoint.
func GetProducts(c *gin.Context) {
	productType := c.Query("type")

	var products []models.Product
	query := config.DB.Preload("Submission").Where("is_active = 1")
	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}

	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": products, "total": len(products)})
}

// GetProduct returns one product with its story.
func GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	if err := config.DB.Preload("Submission").Preload("Submission.Author").
		Where("product_id = ?", productID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

type ProductUpdateRequest struct {
	PriceCents *int    `json:"price_cents" binding:"omitempty,min=0"`
	Currency   *string `json:"currency" binding:"omitempty,len=3"`
	IsActive   *bool   `json:"is_active"`
}

// UpdateProduct changes price or availability. Book managers only.
func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := config.DB.Where("product_id = ?", productID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.Currency != nil {
		updates["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated"})
}

// generateSKU derives a stable SKU from the submission number, e.g.
// ST-2026-0042 becomes STORY-2026-0042.
func generateSKU(submission models.Submission) string {
	number := strings.TrimPrefix(submission.SubmissionNumber, "ST-")
	return fmt.Sprintf("STORY-%s", number)
}
