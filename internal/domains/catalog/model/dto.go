package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/shared/utils"
)

// ============================================================
// CATEGORY REQUESTS
// ============================================================

type CreateCategoryRequest struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"` // generated from name when empty
	ImageURL *string `json:"image_url"`
}

func (r *CreateCategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Slug == "" {
		r.Slug = utils.GenerateSlug(r.Name)
	}
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, 100).Error("name must be at most 100 characters"),
		),
		validation.Field(&r.Slug,
			validation.Required.Error("slug could not be generated from name"),
			validation.Length(1, 120),
			validation.Match(utils.SlugPattern).Error("slug may only contain a-z, 0-9 and '-'"),
		),
		validation.Field(&r.ImageURL, is.URL.Error("image_url must be a valid URL")),
	)
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ImageURL *string `json:"image_url"`
}

func (r UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name != nil,
				validation.Required.Error("name must not be empty"),
				validation.RuneLength(1, 100).Error("name must be at most 100 characters"),
			),
		),
		validation.Field(&r.Slug,
			validation.When(r.Slug != nil,
				validation.Required.Error("slug must not be empty"),
				validation.Match(utils.SlugPattern).Error("slug may only contain a-z, 0-9 and '-'"),
			),
		),
		validation.Field(&r.ImageURL, is.URL.Error("image_url must be a valid URL")),
	)
}

func (r UpdateCategoryRequest) Apply(c *Category) {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Slug != nil {
		c.Slug = strings.TrimSpace(*r.Slug)
	}
	if r.ImageURL != nil {
		if *r.ImageURL == "" {
			c.ImageURL = nil
		} else {
			c.ImageURL = r.ImageURL
		}
	}
}

// ============================================================
// PRODUCT REQUESTS
// ============================================================

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
}

func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		r.Description = DefaultProductDescription
	}
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, 200).Error("name must be at most 200 characters"),
		),
		validation.Field(&r.Price,
			utils.DecimalMin(decimal.Zero, "price must not be negative"),
			utils.DecimalMax(decimal.RequireFromString("99999999.99"), "price is too large"),
			utils.DecimalMaxScale(2, "price must have at most 2 decimal places"),
		),
		validation.Field(&r.ImageURL, is.URL.Error("image_url must be a valid URL")),
	)
}

func (r CreateProductRequest) ToProduct() *Product {
	return &Product{
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
	}
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      *string          `json:"image_url"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name != nil,
				validation.Required.Error("name must not be empty"),
				validation.RuneLength(1, 200).Error("name must be at most 200 characters"),
			),
		),
		validation.Field(&r.Price,
			utils.DecimalMin(decimal.Zero, "price must not be negative"),
			utils.DecimalMaxScale(2, "price must have at most 2 decimal places"),
		),
		validation.Field(&r.CategoryID,
			validation.When(r.ClearCategory, validation.Nil.Error("category_id conflicts with clear_category")),
		),
		validation.Field(&r.ImageURL, is.URL.Error("image_url must be a valid URL")),
	)
}

func (r UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = strings.TrimSpace(*r.Description)
		if p.Description == "" {
			p.Description = DefaultProductDescription
		}
	}
	if r.ClearCategory {
		p.CategoryID = nil
	} else if r.CategoryID != nil {
		p.CategoryID = r.CategoryID
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.ImageURL != nil {
		if *r.ImageURL == "" {
			p.ImageURL = nil
		} else {
			p.ImageURL = r.ImageURL
		}
	}
}

// ============================================================
// SEARCH
// ============================================================

// SearchRequest mirrors ?q=&category=. Category is a category id or "all".
type SearchRequest struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

// CategoryFilter parses Category. "all" and "" mean no filter.
func (r SearchRequest) CategoryFilter() (*uuid.UUID, bool) {
	raw := strings.TrimSpace(r.Category)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// ============================================================
// RESPONSES
// ============================================================

// CategoryProductsResponse is GET /categories/:slug/products.
type CategoryProductsResponse struct {
	Category *CategoryView `json:"category"`
	Products []*Product    `json:"products"`
	Total    int           `json:"total"`
}

type SearchResponse struct {
	Query            string          `json:"query"`
	SelectedCategory string          `json:"selected_category"`
	Products         []*Product      `json:"products"`
	Total            int             `json:"total"`
	Categories       []*CategoryView `json:"categories"`
}
