package models

import "gorm.io/datatypes"

// Product is a digital good offered in the catalog. Titles and descriptions
// hold the storefront's display language; Features carries an optional JSON
// list of bullet points rendered on the product page.
type Product struct {
	BaseModel

	Title       string  `gorm:"not null;index" json:"title"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Image       string  `json:"image"`
	Category    string  `gorm:"index" json:"category"`
	Rating      float64 `gorm:"default:0" json:"rating"`
	Seller      string  `json:"seller"`

	Features datatypes.JSON `json:"features,omitempty"`

	// No column default: a `default` tag would make gorm skip the field on
	// insert whenever it is false, silently activating hidden products. The
	// service layer sets the value explicitly on create.
	IsActive bool `gorm:"not null" json:"is_active"`
}
