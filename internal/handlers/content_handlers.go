package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// --- Generic single-table helpers ---

// applier is a request body that knows how to copy itself onto a row.
type applier[M any] interface {
	Apply(*M)
}

func listAll[M any](h *Handlers, c *gin.Context, what, order string) {
	rows := []M{}
	if err := h.DB.WithContext(c.Request.Context()).Order(order).Find(&rows).Error; err != nil {
		respondInternal(c, "Failed to fetch "+what, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func getByID[M any](h *Handlers, c *gin.Context, what string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var row M
	if err := h.DB.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondStoreError(c, err, what)
		return
	}
	c.JSON(http.StatusOK, row)
}

func createFrom[M any, I applier[M]](h *Handlers, c *gin.Context, what string) {
	var input I
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	var row M
	input.Apply(&row)
	if err := h.DB.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondStoreError(c, err, what)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": what + " created", strings.ToLower(what): row})
}

func updateFrom[M any, I applier[M]](h *Handlers, c *gin.Context, what string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input I
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var row M
	if err := db.First(&row, id).Error; err != nil {
		respondStoreError(c, err, what)
		return
	}
	input.Apply(&row)
	if err := db.Omit(clause.Associations).Save(&row).Error; err != nil {
		respondStoreError(c, err, what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " updated", strings.ToLower(what): row})
}

func deleteByID[M any](h *Handlers, c *gin.Context, what string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.DB.WithContext(c.Request.Context()).Delete(new(M), id)
	if res.Error != nil {
		respondInternal(c, "Failed to delete "+strings.ToLower(what), res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, what+" not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted"})
}

// --- Events ---

// Events are listed soonest first.
func (h *Handlers) ListEvents(c *gin.Context) {
	listAll[models.Event](h, c, "events", "start_date ASC, id ASC")
}
func (h *Handlers) GetEvent(c *gin.Context) { getByID[models.Event](h, c, "Event") }
func (h *Handlers) CreateEvent(c *gin.Context) {
	createFrom[models.Event, models.EventInput](h, c, "Event")
}
func (h *Handlers) UpdateEvent(c *gin.Context) {
	updateFrom[models.Event, models.EventInput](h, c, "Event")
}
func (h *Handlers) DeleteEvent(c *gin.Context) { deleteByID[models.Event](h, c, "Event") }

// --- Customers ---

func (h *Handlers) ListCustomers(c *gin.Context) {
	listAll[models.Customer](h, c, "customers", "name ASC")
}
func (h *Handlers) GetCustomer(c *gin.Context) { getByID[models.Customer](h, c, "Customer") }
func (h *Handlers) CreateCustomer(c *gin.Context) {
	createFrom[models.Customer, models.CustomerInput](h, c, "Customer")
}
func (h *Handlers) UpdateCustomer(c *gin.Context) {
	updateFrom[models.Customer, models.CustomerInput](h, c, "Customer")
}
func (h *Handlers) DeleteCustomer(c *gin.Context) { deleteByID[models.Customer](h, c, "Customer") }

// --- Industries ---

func (h *Handlers) ListIndustries(c *gin.Context) {
	listAll[models.Industry](h, c, "industries", "name ASC")
}
func (h *Handlers) GetIndustry(c *gin.Context) { getByID[models.Industry](h, c, "Industry") }
func (h *Handlers) CreateIndustry(c *gin.Context) {
	createFrom[models.Industry, models.IndustryInput](h, c, "Industry")
}
func (h *Handlers) UpdateIndustry(c *gin.Context) {
	updateFrom[models.Industry, models.IndustryInput](h, c, "Industry")
}
func (h *Handlers) DeleteIndustry(c *gin.Context) { deleteByID[models.Industry](h, c, "Industry") }

// --- Testimonials ---

func (h *Handlers) ListTestimonials(c *gin.Context) {
	listAll[models.Testimonial](h, c, "testimonials", "created_at DESC, id DESC")
}
func (h *Handlers) GetTestimonial(c *gin.Context) {
	getByID[models.Testimonial](h, c, "Testimonial")
}
func (h *Handlers) CreateTestimonial(c *gin.Context) {
	createFrom[models.Testimonial, models.TestimonialInput](h, c, "Testimonial")
}
func (h *Handlers) UpdateTestimonial(c *gin.Context) {
	updateFrom[models.Testimonial, models.TestimonialInput](h, c, "Testimonial")
}
func (h *Handlers) DeleteTestimonial(c *gin.Context) {
	deleteByID[models.Testimonial](h, c, "Testimonial")
}
