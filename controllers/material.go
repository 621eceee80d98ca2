package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

// GetMaterials lists ingested education materials, optionally filtered by
// title substring.
func GetMaterials(c *gin.Context) {
	var materials []models.EducationMaterial
	query := config.DB.Select("material_id, title, source_file, section, page_start, page_end, created_at")

	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	if err := query.Order("title ASC, section ASC").Limit(200).Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch materials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "materials": materials, "total": len(materials)})
}

// GetMaterial returns one material section with its full text.
func GetMaterial(c *gin.Context) {
	materialID := c.Param("id")

	var material models.EducationMaterial
	if err := config.DB.Where("material_id = ?", materialID).First(&material).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "material": material})
}
