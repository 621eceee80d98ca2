package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

const maxUploadBytes = 20 << 20 // 20 MB

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// UploadMediaFile stores a cover image or document. Files are written under
// a uuid name so original names never touch the filesystem; identical
// content is deduplicated by hash.
func UploadMediaFile(c *gin.Context) {
	userID, _ := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 20MB limit"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	fileHash := hex.EncodeToString(hasher.Sum(nil))

	mimeType := fileHeader.Header.Get("Content-Type")
	probe := models.MediaFile{MimeType: mimeType}
	if !probe.IsValidImageType() && !probe.IsValidDocumentType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	// Same bytes already uploaded by this user: return the existing record.
	var existing models.MediaFile
	if err := config.DB.Where("file_hash = ? AND uploaded_by = ? AND delete_at IS NULL", fileHash, userID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "file": existing, "deduplicated": true})
		return
	}

	if err := os.MkdirAll(uploadDir(), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	storedName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	storedPath := filepath.Join(uploadDir(), storedName)

	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	now := time.Now()
	media := models.MediaFile{
		OriginalName: filepath.Base(fileHeader.Filename),
		StoredPath:   storedPath,
		FileSize:     size,
		MimeType:     mimeType,
		FileHash:     fileHash,
		IsPublic:     c.PostForm("is_public") == "true",
		UploadedBy:   userID,
		UploadedAt:   now,
		CreateAt:     now,
		UpdateAt:     now,
	}
	if err := config.DB.Create(&media).Error; err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "file": media})
}

// GetMediaFiles lists the caller's uploads; admins see everything.
func GetMediaFiles(c *gin.Context) {
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var files []models.MediaFile
	query := config.DB.Preload("Uploader").Where("delete_at IS NULL")
	if role != models.RoleAdmin {
		query = query.Where("uploaded_by = ? OR is_public = 1", userID)
	}

	if err := query.Order("uploaded_at DESC").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "files": files, "total": len(files)})
}

// DownloadMediaFile streams the stored bytes with the original name.
func DownloadMediaFile(c *gin.Context) {
	fileID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var media models.MediaFile
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", fileID).First(&media).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if !media.IsPublic && media.UploadedBy != userID && !role.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access to this file"})
		return
	}

	if _, err := os.Stat(media.StoredPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stored file is missing"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.OriginalName))
	c.Header("Content-Type", media.MimeType)
	c.File(media.StoredPath)
}

// DeleteMediaFile soft-deletes the record; bytes stay on disk until another
// record stops referencing the same hash.
func DeleteMediaFile(c *gin.Context) {
	fileID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var media models.MediaFile
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", fileID).First(&media).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if media.UploadedBy != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the uploader or an admin can delete"})
		return
	}

	var cover int64
	config.DB.Model(&models.Submission{}).
		Where("cover_file_id = ? AND deleted_at IS NULL", media.FileID).
		Count(&cover)
	if cover > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "File is in use as a submission cover"})
		return
	}

	if err := config.DB.Model(&media).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	var sameHash int64
	config.DB.Model(&models.MediaFile{}).
		Where("file_hash = ? AND delete_at IS NULL", media.FileHash).
		Count(&sameHash)
	if sameHash == 0 {
		os.Remove(media.StoredPath)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted"})
}

// SetSubmissionCover attaches an uploaded image as the submission cover.
func SetSubmissionCover(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var req struct {
		FileID int `json:"file_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if submission.AuthorID != userID && !role.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to change this submission"})
		return
	}

	var media models.MediaFile
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", req.FileID).First(&media).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not found"})
		return
	}
	if !media.IsValidImageType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cover must be an image"})
		return
	}

	if err := config.DB.Model(&submission).Update("cover_file_id", media.FileID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set cover"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cover updated"})
}
