package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is a product group addressed by slug in public URLs.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ============================================================
// DISPLAY METADATA
// ============================================================

// CategoryMeta is static display metadata for a category slug.
type CategoryMeta struct {
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
}

const DefaultCategoryIcon = "basket"

// categoryMeta is built once at init and never written afterwards.
var categoryMeta = map[string]CategoryMeta{
	"fruits":     {DisplayName: "Fresh Fruits", Icon: "apple"},
	"vegetables": {DisplayName: "Vegetables", Icon: "carrot"},
	"dairy":      {DisplayName: "Dairy & Eggs", Icon: "milk"},
	"bakery":     {DisplayName: "Bakery", Icon: "bread"},
	"meat":       {DisplayName: "Meat & Fish", Icon: "drumstick"},
	"beverages":  {DisplayName: "Beverages", Icon: "cup"},
	"snacks":     {DisplayName: "Snacks", Icon: "cookie"},
	"frozen":     {DisplayName: "Frozen", Icon: "snowflake"},
}

// LookupCategoryMeta returns the metadata for slug, if any.
func LookupCategoryMeta(slug string) (CategoryMeta, bool) {
	meta, ok := categoryMeta[slug]
	return meta, ok
}

// MetaFor falls back to the category's own name and the default icon for unknown slugs.
func (c *Category) MetaFor() CategoryMeta {
	if meta, ok := LookupCategoryMeta(c.Slug); ok {
		return meta
	}
	return CategoryMeta{DisplayName: c.Name, Icon: DefaultCategoryIcon}
}

// CategoryView is a category as rendered to shoppers.
type CategoryView struct {
	*Category
	CategoryMeta
	ProductCount int `json:"product_count"`
}

func NewCategoryView(c *Category, productCount int) *CategoryView {
	return &CategoryView{
		Category:     c,
		CategoryMeta: c.MetaFor(),
		ProductCount: productCount,
	}
}
