package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

// ExportSubmissionsReport streams an XLSX snapshot of the review pipeline.
// Admin only. Sheet 1 is the submissions list, sheet 2 the per-status
// totals.
func ExportSubmissionsReport(c *gin.Context) {
	var submissions []models.Submission
	query := config.DB.Preload("Author").Where("deleted_at IS NULL")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at ASC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Number", "Title", "Author", "Status", "Decision", "Language", "Submitted", "Published"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	statusTotals := map[models.SubmissionStatus]int{}
	for row, s := range submissions {
		author := ""
		if s.Author != nil {
			author = s.Author.DisplayName()
		}
		decision := ""
		if s.BookDecision != nil {
			decision = string(*s.BookDecision)
		}
		values := []interface{}{
			s.SubmissionNumber,
			s.Title,
			author,
			string(s.Status),
			decision,
			stringOrEmpty(s.Language),
			formatTimePtr(s.SubmittedAt),
			formatTimePtr(s.PublishedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
		statusTotals[s.Status]++
	}

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "C", 32)
	f.SetColWidth(sheet, "D", "H", 18)
	f.AutoFilter(sheet, fmt.Sprintf("A1:H%d", len(submissions)+1), nil)

	const totalsSheet = "Totals"
	f.NewSheet(totalsSheet)
	f.SetCellValue(totalsSheet, "A1", "Status")
	f.SetCellValue(totalsSheet, "B1", "Count")
	f.SetCellStyle(totalsSheet, "A1", "B1", headerStyle)
	allStatuses := []models.SubmissionStatus{
		models.StatusDraft, models.StatusPending, models.StatusStoryReview,
		models.StatusStoryApproved, models.StatusFormatReview, models.StatusContentReview,
		models.StatusNeedsRevision, models.StatusPublished, models.StatusRejected,
	}
	for i, status := range allStatuses {
		f.SetCellValue(totalsSheet, fmt.Sprintf("A%d", i+2), string(status))
		f.SetCellValue(totalsSheet, fmt.Sprintf("B%d", i+2), statusTotals[status])
	}
	f.SetColWidth(totalsSheet, "A", "A", 20)

	filename := fmt.Sprintf("submissions-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write report"})
	}
}

// ExportUsersReport streams an XLSX of registered users. Admin only.
func ExportUsersReport(c *gin.Context) {
	var users []models.User
	if err := config.DB.Where("delete_at IS NULL").Order("user_id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Role", "Registered"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, u := range users {
		values := []interface{}{
			u.UserID,
			u.DisplayName(),
			u.Email,
			string(u.Role),
			formatTimePtr(u.CreateAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "B", "C", 30)
	f.SetColWidth(sheet, "D", "E", 18)

	filename := fmt.Sprintf("users-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write report"})
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
