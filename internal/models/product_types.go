package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Specification is one key/value row of a product's specification table.
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TechnicalDetails groups the free-form technical fields shown on a product page.
type TechnicalDetails struct {
	Dimensions          string   `json:"dimensions,omitempty"`
	Weight              string   `json:"weight,omitempty"`
	PowerRequirements   string   `json:"powerRequirements,omitempty"`
	OperatingConditions string   `json:"operatingConditions,omitempty"`
	Warranty            string   `json:"warranty,omitempty"`
	Compliance          []string `json:"compliance,omitempty"`
}

// Product is the model for the 'products' table.
// CategoryID and SubcategoryID are foreign keys; the JSON output carries the
// category name and the subcategory path, filled in by the store on read.
type Product struct {
	ID                uint                                 `json:"id" gorm:"primaryKey"`
	Name              string                               `json:"name" gorm:"size:200;not null"`
	CategoryID        *uint                                `json:"categoryId" gorm:"index"`
	Category          *Category                            `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	SubcategoryID     *uint                                `json:"subcategoryId" gorm:"index"`
	Subcategory       *Subcategory                         `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ShortDescription  string                               `json:"shortDescription" gorm:"type:text"`
	FullTechnicalInfo string                               `json:"fullTechnicalInfo" gorm:"type:text"`
	Specifications    datatypes.JSONSlice[Specification]   `json:"specifications"`
	FeaturesBenefits  datatypes.JSONSlice[string]          `json:"featuresBenefits"`
	Applications      datatypes.JSONSlice[string]          `json:"applications"`
	Certifications    datatypes.JSONSlice[string]          `json:"certifications"`
	TechnicalDetails  datatypes.JSONType[TechnicalDetails] `json:"technicalDetails"`
	CatalogPdfURL     *string                              `json:"catalogPdfUrl" gorm:"size:500"`
	DatasheetPdfURL   *string                              `json:"datasheetPdfUrl" gorm:"size:500"`
	HomeFeatured      bool                                 `json:"homeFeatured" gorm:"not null;default:false;index"`
	Rank              int                                  `json:"rank" gorm:"column:sort_rank;not null;default:0;index"`
	Views             int                                  `json:"views" gorm:"not null;default:0"`
	Images            []ProductImage                       `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                            `json:"createdAt"`
	UpdatedAt         time.Time                            `json:"updatedAt"`

	// Resolved on read, not stored.
	CategoryName    string `json:"category" gorm:"-"`
	SubcategoryPath string `json:"subcategory" gorm:"-"`
}

// ProductImage is the model for the 'product_images' table.
type ProductImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"productId" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageURLs returns the product's image URLs in stored order.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// Attribution names a product's category and subcategory, each either by id
// or by display value (category name, subcategory path).
type Attribution struct {
	CategoryID      uint
	Category        string
	SubcategoryID   uint
	SubcategoryPath string
}

// ProductFields holds the scalar fields a product form can set.
type ProductFields struct {
	Name              string
	ShortDescription  string
	FullTechnicalInfo string
	Specifications    []Specification
	FeaturesBenefits  []string
	Applications      []string
	Certifications    []string
	TechnicalDetails  TechnicalDetails
	HomeFeatured      bool

	// Rank is nil when the form did not carry one.
	Rank *int
}

// Apply copies the fields onto p.
func (f ProductFields) Apply(p *Product) {
	p.Name = f.Name
	p.ShortDescription = f.ShortDescription
	p.FullTechnicalInfo = f.FullTechnicalInfo
	p.Specifications = f.Specifications
	p.FeaturesBenefits = f.FeaturesBenefits
	p.Applications = f.Applications
	p.Certifications = f.Certifications
	p.TechnicalDetails = datatypes.NewJSONType(f.TechnicalDetails)
	p.HomeFeatured = f.HomeFeatured
	if f.Rank != nil {
		p.Rank = *f.Rank
	}
}

// ProductForm is the multipart body of product create and update requests.
// List and object fields arrive as JSON strings.
type ProductForm struct {
	Name              string   `form:"name" binding:"required,max=200"`
	CategoryID        uint     `form:"categoryId"`
	Category          string   `form:"category" binding:"max=150"`
	SubcategoryID     uint     `form:"subcategoryId"`
	Subcategory       string   `form:"subcategory" binding:"max=1000"`
	ShortDescription  string   `form:"shortDescription" binding:"max=2000"`
	FullTechnicalInfo string   `form:"fullTechnicalInfo"`
	Specifications    string   `form:"specifications"`
	FeaturesBenefits  string   `form:"featuresBenefits"`
	Applications      string   `form:"applications"`
	Certifications    string   `form:"certifications"`
	TechnicalDetails  string   `form:"technicalDetails"`
	HomeFeatured      bool     `form:"homeFeatured"`
	Rank              *int     `form:"rank" binding:"omitempty,min=0"`
	ExistingImages    []string `form:"existingImages"`
	RemoveCatalogPdf  bool     `form:"removeCatalogPdf"`
	RemoveDatasheet   bool     `form:"removeDatasheetPdf"`
}

// Decode parses the JSON-encoded form fields.
func (f *ProductForm) Decode() (ProductFields, error) {
	out := ProductFields{
		Name:              strings.TrimSpace(f.Name),
		ShortDescription:  strings.TrimSpace(f.ShortDescription),
		FullTechnicalInfo: f.FullTechnicalInfo,
		HomeFeatured:      f.HomeFeatured,
		Rank:              f.Rank,
		Specifications:    []Specification{},
		FeaturesBenefits:  []string{},
		Applications:      []string{},
		Certifications:    []string{},
	}

	if err := decodeJSONField("specifications", f.Specifications, &out.Specifications); err != nil {
		return out, err
	}
	if err := decodeJSONField("featuresBenefits", f.FeaturesBenefits, &out.FeaturesBenefits); err != nil {
		return out, err
	}
	if err := decodeJSONField("applications", f.Applications, &out.Applications); err != nil {
		return out, err
	}
	if err := decodeJSONField("certifications", f.Certifications, &out.Certifications); err != nil {
		return out, err
	}
	if err := decodeJSONField("technicalDetails", f.TechnicalDetails, &out.TechnicalDetails); err != nil {
		return out, err
	}

	for i, spec := range out.Specifications {
		if strings.TrimSpace(spec.Key) == "" {
			return out, fmt.Errorf("specifications[%d]: key is required", i)
		}
	}
	return out, nil
}

// Attribution returns the category/subcategory references carried by the form.
func (f *ProductForm) Attribution() Attribution {
	return Attribution{
		CategoryID:      f.CategoryID,
		Category:        strings.TrimSpace(f.Category),
		SubcategoryID:   f.SubcategoryID,
		SubcategoryPath: strings.TrimSpace(f.Subcategory),
	}
}

// KeepImages returns the image URLs the client wants to retain on update.
// The field is accepted either as repeated form values or as one JSON array.
func (f *ProductForm) KeepImages() ([]string, error) {
	if len(f.ExistingImages) == 1 && strings.HasPrefix(strings.TrimSpace(f.ExistingImages[0]), "[") {
		var urls []string
		if err := decodeJSONField("existingImages", f.ExistingImages[0], &urls); err != nil {
			return nil, err
		}
		return urls, nil
	}
	urls := make([]string, 0, len(f.ExistingImages))
	for _, u := range f.ExistingImages {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func decodeJSONField(field, raw string, dst any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%s: invalid JSON: %w", field, err)
	}
	return nil
}
