package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/models"
)

//
// --- Admin Dashboard Stats ---
//

// TopProduct is one row of the most-viewed list.
type TopProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Views int    `json:"views"`
}

type DashboardStats struct {
	Products          int64        `json:"products"`
	Categories        int64        `json:"categories"`
	NewQuotes         int64        `json:"newQuotes"`
	UnrepliedMessages int64        `json:"unrepliedMessages"`
	Applications      int64        `json:"applications"`
	OpenJobs          int64        `json:"openJobs"`
	TopViewed         []TopProduct `json:"topViewed"`
}

const topViewedLimit = 5

// GetDashboardStats returns KPI data for the admin dashboard
// GET /api/admin/dashboard
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context())
	stats := DashboardStats{TopViewed: []TopProduct{}}

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		// 1. Catalog size
		{&stats.Products, &models.Product{}, "", nil},
		{&stats.Categories, &models.Category{}, "", nil},
		// 2. Inbox: quotes not yet contacted, unanswered messages
		{&stats.NewQuotes, &models.QuoteRequest{}, "status = ?", []any{models.QuoteNew}},
		{&stats.UnrepliedMessages, &models.ContactMessage{}, "replied = ?", []any{false}},
		// 3. Careers
		{&stats.Applications, &models.JobApplication{}, "", nil},
		{&stats.OpenJobs, &models.Job{}, "active = ?", []any{true}},
	}
	for _, q := range counts {
		tx := db.Model(q.model)
		if q.where != "" {
			tx = tx.Where(q.where, q.args...)
		}
		if err := tx.Count(q.dst).Error; err != nil {
			respondInternal(c, "Failed to load dashboard stats", err)
			return
		}
	}

	// 4. Most viewed products
	if err := db.Model(&models.Product{}).
		Select("id", "name", "views").
		Order("views DESC, id ASC").
		Limit(topViewedLimit).
		Scan(&stats.TopViewed).Error; err != nil {
		respondInternal(c, "Failed to load dashboard stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
