package database

import (
	"fmt"
	"log"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
)

type seedNode struct {
	name     string
	children []seedNode
}

type seedProduct struct {
	name        string
	category    string
	subcategory []string
	short       string
	featured    bool
}

var seedCategories = []struct {
	name  string
	nodes []seedNode
}{
	{"Pressure", []seedNode{
		{"Gauges", []seedNode{{"Digital", nil}, {"Analog", nil}}},
		{"Controllers", nil},
		{"Pumps", nil},
	}},
	{"Temperature", []seedNode{
		{"Dry Block Calibrators", nil},
		{"Baths", nil},
		{"Thermometers", []seedNode{{"Reference", nil}}},
	}},
	{"Electrical", []seedNode{
		{"Multifunction Calibrators", nil},
	}},
}

var seedProducts = []seedProduct{
	{"DPG-100 Digital Pressure Gauge", "Pressure", []string{"Gauges", "Digital"}, "0.025% FS reference gauge with data logging.", true},
	{"APG-63 Test Gauge", "Pressure", []string{"Gauges", "Analog"}, "Class 0.25 analog test gauge.", false},
	{"PC-700 Pressure Controller", "Pressure", []string{"Controllers"}, "Automated pneumatic controller up to 210 bar.", true},
	{"HP-1000 Hydraulic Pump", "Pressure", []string{"Pumps"}, "Hand pump for hydraulic comparison up to 1000 bar.", false},
	{"DB-650 Dry Block", "Temperature", []string{"Dry Block Calibrators"}, "Portable dry block from 33 to 650 C.", true},
	{"LB-200 Liquid Bath", "Temperature", []string{"Baths"}, "Stirred liquid bath, -40 to 200 C.", false},
	{"RT-1 Reference Thermometer", "Temperature", []string{"Thermometers", "Reference"}, "SPRT readout with 0.01 C accuracy.", false},
	{"MC-6 Multifunction Calibrator", "Electrical", []string{"Multifunction Calibrators"}, "Sources and measures mA, V, RTD and TC.", false},
}

// Seed inserts a demo catalog when there are no categories yet.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		log.Println("Seed skipped: catalog is not empty")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// category name -> path -> subcategory id
		ids := map[string]map[string]uint{}
		catIDs := map[string]uint{}

		for _, c := range seedCategories {
			cat := models.Category{Name: c.name, Slug: slug.Make(c.name)}
			if err := tx.Create(&cat).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.name, err)
			}
			catIDs[c.name] = cat.ID
			ids[c.name] = map[string]uint{}
			if err := seedTree(tx, cat.ID, nil, "", c.nodes, ids[c.name]); err != nil {
				return err
			}
		}

		for i, p := range seedProducts {
			catID := catIDs[p.category]
			subID := ids[p.category][catalog.JoinPath(p.subcategory...)]
			product := models.Product{
				Name:             p.name,
				CategoryID:       &catID,
				SubcategoryID:    &subID,
				ShortDescription: p.short,
				Specifications:   datatypes.JSONSlice[models.Specification]{{Key: "Warranty", Value: "2 years"}},
				FeaturesBenefits: datatypes.JSONSlice[string]{"Traceable calibration certificate"},
				Applications:     datatypes.JSONSlice[string]{"Field calibration", "Laboratory"},
				Certifications:   datatypes.JSONSlice[string]{"ISO 17025"},
				TechnicalDetails: datatypes.NewJSONType(models.TechnicalDetails{Warranty: "2 years"}),
				HomeFeatured:     p.featured,
				Rank:             i + 1,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.name, err)
			}
		}

		log.Printf("Seeded %d categories and %d products", len(seedCategories), len(seedProducts))
		return nil
	})
}

func seedTree(tx *gorm.DB, categoryID uint, parentID *uint, prefix string, nodes []seedNode, ids map[string]uint) error {
	for i, n := range nodes {
		row := models.Subcategory{Name: n.name, CategoryID: categoryID, ParentID: parentID, Position: i}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("seed subcategory %s: %w", n.name, err)
		}
		path := catalog.JoinPath(prefix, n.name)
		ids[path] = row.ID
		id := row.ID
		if err := seedTree(tx, categoryID, &id, path, n.children, ids); err != nil {
			return err
		}
	}
	return nil
}
