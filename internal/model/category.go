package model

// Category groups products. A category cannot be deleted while it still owns products.
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Slug        string `gorm:"type:varchar(255);index" json:"slug"`
	Description string `json:"description"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`

	// Filled by list queries, not a column.
	ProductCount int64 `gorm:"-" json:"product_count"`
}
