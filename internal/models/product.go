package models

import "time"

const DefaultProductEmoji = "🏺"

type Product struct {
	ID          string     `json:"id" bson:"_id,omitempty" yaml:"id"`
	Name        string     `json:"name" bson:"name" yaml:"name" validate:"required"`
	Category    string     `json:"category" bson:"category" yaml:"category"` // category slug
	Price       float64    `json:"price" bson:"price" yaml:"price" validate:"gt=0"`
	Description string     `json:"description,omitempty" bson:"description" yaml:"description"`
	ImageURL    string     `json:"imageUrl,omitempty" bson:"imageUrl,omitempty" yaml:"imageUrl"`
	Emoji       string     `json:"emoji,omitempty" bson:"emoji" yaml:"emoji"`
	Featured    bool       `json:"featured" bson:"featured" yaml:"featured"`
	Tags        []string   `json:"tags" bson:"tags" yaml:"tags"`
	Stock       *int       `json:"stock,omitempty" bson:"stock,omitempty" yaml:"stock" validate:"omitempty,gte=0"`
	SKU         string     `json:"sku,omitempty" bson:"sku" yaml:"sku"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// ProductInput is the create payload for products, from the admin form or the importer.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Category    string   `json:"category" validate:"max=80"`
	Price       float64  `json:"price" validate:"gt=0"`
	Description string   `json:"description" validate:"max=4000"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Emoji       string   `json:"emoji"`
	Featured    bool     `json:"featured"`
	Tags        []string `json:"tags" validate:"dive,max=60"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	SKU         string   `json:"sku" validate:"max=80"`
}

// ToProduct builds the stored record, applying the same defaults the reader applies.
func (in ProductInput) ToProduct() Product {
	p := Product{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Emoji:       in.Emoji,
		Featured:    in.Featured,
		Tags:        in.Tags,
		Stock:       in.Stock,
		SKU:         in.SKU,
	}
	p.Normalize()
	return p
}

// ProductUpdate carries a partial update. Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string   `json:"name" bson:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category    *string   `json:"category" bson:"category,omitempty" validate:"omitempty,max=80"`
	Price       *float64  `json:"price" bson:"price,omitempty" validate:"omitempty,gt=0"`
	Description *string   `json:"description" bson:"description,omitempty" validate:"omitempty,max=4000"`
	ImageURL    *string   `json:"imageUrl" bson:"imageUrl,omitempty" validate:"omitempty,url|len=0"`
	Emoji       *string   `json:"emoji" bson:"emoji,omitempty"`
	Featured    *bool     `json:"featured" bson:"featured,omitempty"`
	Tags        *[]string `json:"tags" bson:"tags,omitempty"`
	Stock       *int      `json:"stock" bson:"stock,omitempty" validate:"omitempty,gte=0"`
	SKU         *string   `json:"sku" bson:"sku,omitempty" validate:"omitempty,max=80"`
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Description == nil &&
		u.ImageURL == nil && u.Emoji == nil && u.Featured == nil && u.Tags == nil &&
		u.Stock == nil && u.SKU == nil
}

// Normalize fills the display defaults and lowercases the category slug.
func (p *Product) Normalize() {
	p.Category = normalizeSlug(p.Category)
	if p.Emoji == "" {
		p.Emoji = DefaultProductEmoji
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// ProductStats backs the admin dashboard counters.
type ProductStats struct {
	Total      int `json:"total"`
	Featured   int `json:"featured"`
	Categories int `json:"categories"`
}

type BulkImportResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

func (u *ProductUpdate) Normalize() {
	if u.Category != nil {
		c := normalizeSlug(*u.Category)
		u.Category = &c
	}
}
