package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is the model for the 'events' table (trade shows, seminars).
// Dates are stored as YYYY-MM-DD strings so they sort lexically.
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location" gorm:"size:200"`
	StartDate   string    `json:"startDate" gorm:"size:10;not null;index"`
	EndDate     *string   `json:"endDate,omitempty" gorm:"size:10"`
	ImageURL    *string   `json:"imageUrl,omitempty" gorm:"size:500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EventInput struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	Location    string  `json:"location" binding:"max=200"`
	StartDate   string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,max=500"`
}

func (in EventInput) Apply(e *Event) {
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	e.ImageURL = in.ImageURL
}

// Customer is a reference customer shown on the marketing site.
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	LogoURL   *string   `json:"logoUrl,omitempty" gorm:"size:500"`
	Website   *string   `json:"website,omitempty" gorm:"size:500"`
	Industry  *string   `json:"industry,omitempty" gorm:"size:150"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CustomerInput struct {
	Name     string  `json:"name" binding:"required,max=200"`
	LogoURL  *string `json:"logoUrl" binding:"omitempty,max=500"`
	Website  *string `json:"website" binding:"omitempty,url,max=500"`
	Industry *string `json:"industry" binding:"omitempty,max=150"`
}

func (in CustomerInput) Apply(c *Customer) {
	c.Name = in.Name
	c.LogoURL = in.LogoURL
	c.Website = in.Website
	c.Industry = in.Industry
}

// Industry is a served industry segment.
type Industry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:150;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    *string   `json:"imageUrl,omitempty" gorm:"size:500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type IndustryInput struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,max=500"`
}

func (in IndustryInput) Apply(i *Industry) {
	i.Name = in.Name
	i.Description = in.Description
	i.ImageURL = in.ImageURL
}

// TeamMember is the model for the 'team_members' table.
type TeamMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null"`
	Position  string    `json:"position" gorm:"size:150"`
	Bio       string    `json:"bio" gorm:"type:text"`
	PhotoURL  *string   `json:"photoUrl,omitempty" gorm:"size:500"`
	Rank      int       `json:"rank" gorm:"column:sort_rank;not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamForm is the multipart body of team create/update; the photo is a file part.
type TeamForm struct {
	Name        string `form:"name" binding:"required,max=150"`
	Position    string `form:"position" binding:"max=150"`
	Bio         string `form:"bio"`
	Rank        int    `form:"rank" binding:"min=0"`
	RemovePhoto bool   `form:"removePhoto"`
}

func (f TeamForm) Apply(m *TeamMember) {
	m.Name = f.Name
	m.Position = f.Position
	m.Bio = f.Bio
	m.Rank = f.Rank
}

// Testimonial is a customer quote with a 1-5 rating.
type Testimonial struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null"`
	Company   string    `json:"company" gorm:"size:200"`
	Content   string    `json:"content" gorm:"type:text"`
	Rating    int       `json:"rating" gorm:"not null;default:5"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TestimonialInput struct {
	Name    string `json:"name" binding:"required,max=150"`
	Company string `json:"company" binding:"max=200"`
	Content string `json:"content" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

func (in TestimonialInput) Apply(t *Testimonial) {
	t.Name = in.Name
	t.Company = in.Company
	t.Content = in.Content
	t.Rating = in.Rating
}

// Job is an open position listed on the careers page.
type Job struct {
	ID           uint                        `json:"id" gorm:"primaryKey"`
	Title        string                      `json:"title" gorm:"size:200;not null"`
	Department   string                      `json:"department" gorm:"size:150"`
	Location     string                      `json:"location" gorm:"size:200"`
	Type         string                      `json:"type" gorm:"size:50"`
	Description  string                      `json:"description" gorm:"type:text"`
	Requirements datatypes.JSONSlice[string] `json:"requirements"`
	Active       bool                        `json:"active" gorm:"not null;index"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

type JobInput struct {
	Title        string   `json:"title" binding:"required,max=200"`
	Department   string   `json:"department" binding:"max=150"`
	Location     string   `json:"location" binding:"max=200"`
	Type         string   `json:"type" binding:"omitempty,oneof=Full-time Part-time Contract Internship"`
	Description  string   `json:"description" binding:"required"`
	Requirements []string `json:"requirements" binding:"omitempty,dive,required"`
	Active       *bool    `json:"active"`
}

func (in JobInput) Apply(j *Job) {
	j.Title = in.Title
	j.Department = in.Department
	j.Location = in.Location
	j.Type = in.Type
	j.Description = in.Description
	j.Requirements = in.Requirements
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	j.Active = in.Active == nil || *in.Active
}

// JobApplication is a candidate's application, with an uploaded resume.
type JobApplication struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	JobID       *uint     `json:"jobId,omitempty" gorm:"index"`
	Job         *Job      `json:"job,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Name        string    `json:"name" gorm:"size:150;not null"`
	Email       string    `json:"email" gorm:"size:191;not null"`
	Phone       string    `json:"phone" gorm:"size:50"`
	CoverLetter string    `json:"coverLetter" gorm:"type:text"`
	ResumeURL   string    `json:"resumeUrl" gorm:"size:500;not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplicationForm is the multipart body of POST /api/apply.
type ApplicationForm struct {
	JobID       uint   `form:"jobId"`
	Name        string `form:"name" binding:"required,max=150"`
	Email       string `form:"email" binding:"required,email,max=191"`
	Phone       string `form:"phone" binding:"max=50"`
	CoverLetter string `form:"coverLetter"`
}

// GalleryItem is one picture of the public gallery.
type GalleryItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200"`
	ImageURL  string    `json:"imageUrl" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Setting is one media/site setting (hero video, brochure link, ...).
type Setting struct {
	Key         string    `json:"key" gorm:"column:setting_key;primaryKey;size:100"`
	Value       string    `json:"value" gorm:"column:setting_value;type:text"`
	Description string    `json:"description" gorm:"size:255"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SettingInput is one entry of PUT /api/settings.
type SettingInput struct {
	Key         string `json:"key" binding:"required,max=100"`
	Value       string `json:"value"`
	Description string `json:"description" binding:"max=255"`
}
