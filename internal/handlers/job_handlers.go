package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/storage"
)

// ListJobs handles GET /api/jobs (public): open positions only, newest first.
func (h *Handlers) ListJobs(c *gin.Context) {
	jobs := []models.Job{}
	err := h.DB.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		respondInternal(c, "Failed to fetch jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// ListAllJobs handles GET /api/admin/jobs, including closed positions.
func (h *Handlers) ListAllJobs(c *gin.Context) {
	listAll[models.Job](h, c, "jobs", "created_at DESC, id DESC")
}

// GetJob handles GET /api/jobs/:id (public). Closed positions are not found.
func (h *Handlers) GetJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var job models.Job
	err := h.DB.WithContext(c.Request.Context()).Where("active = ?", true).First(&job, id).Error
	if err != nil {
		respondStoreError(c, err, "Job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateJob handles POST /api/jobs (admin)
func (h *Handlers) CreateJob(c *gin.Context) {
	createFrom[models.Job, models.JobInput](h, c, "Job")
}

// UpdateJob handles PUT /api/jobs/:id (admin)
func (h *Handlers) UpdateJob(c *gin.Context) {
	updateFrom[models.Job, models.JobInput](h, c, "Job")
}

// DeleteJob handles DELETE /api/jobs/:id (admin)
// Applications for the job are kept, detached from it.
func (h *Handlers) DeleteJob(c *gin.Context) {
	deleteByID[models.Job](h, c, "Job")
}

// ApplyForJob handles POST /api/apply (multipart with a "resume" file)
// jobId is optional; without it the application is an open application.
func (h *Handlers) ApplyForJob(c *gin.Context) {
	// 1. Bind the form
	var form models.ApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	// 2. Check the position is still open
	var job *models.Job
	if form.JobID != 0 {
		var j models.Job
		if err := db.Where("active = ?", true).First(&j, form.JobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, "Validation failed", fmt.Sprintf("job %d is not open", form.JobID))
				return
			}
			respondInternal(c, "Failed to submit application", err)
			return
		}
		job = &j
	}

	// 3. Save the resume
	resume, err := h.saveFile(c, "resume", storage.KindResume)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if resume == "" {
		respondError(c, http.StatusBadRequest, "Validation failed", "resume is required")
		return
	}

	// 4. Insert
	app := models.JobApplication{
		Name:        strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		CoverLetter: form.CoverLetter,
		ResumeURL:   resume,
	}
	if job != nil {
		app.JobID = &job.ID
	}
	if err := db.Omit(clause.Associations).Create(&app).Error; err != nil {
		h.Files.RemoveAll(resume)
		respondInternal(c, "Failed to submit application", err)
		return
	}
	app.Job = job

	h.notify(c, "job application", func(ctx context.Context, n Notifier) error {
		return n.ApplicationReceived(ctx, &app)
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted successfully", "application": app})
}

// ListApplications handles GET /api/applications (admin), newest first.
// ?jobId= narrows the list to one position.
func (h *Handlers) ListApplications(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context()).Preload("Job").Order("created_at DESC, id DESC")
	if raw := c.Query("jobId"); raw != "" {
		jobID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || jobID == 0 {
			respondError(c, http.StatusBadRequest, "Invalid jobId", raw)
			return
		}
		db = db.Where("job_id = ?", jobID)
	}

	apps := []models.JobApplication{}
	if err := db.Find(&apps).Error; err != nil {
		respondInternal(c, "Failed to fetch applications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}
