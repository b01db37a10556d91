package models

import (
	"strings"
	"time"
)

const DefaultCategoryEmoji = "📦"

type Category struct {
	ID          string     `json:"id" bson:"_id,omitempty" yaml:"-"`
	Slug        string     `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Name        string     `json:"name" bson:"name" yaml:"name" validate:"required"`
	Description string     `json:"description,omitempty" bson:"description" yaml:"description"`
	Emoji       string     `json:"emoji,omitempty" bson:"emoji" yaml:"emoji"`
	Order       int        `json:"order" bson:"order" yaml:"order"`
	Featured    bool       `json:"featured" bson:"featured" yaml:"featured"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// CategoryWithCount is a category as listed on the public site.
type CategoryWithCount struct {
	Category
	Count int `json:"count"`
}

type CategoryInput struct {
	Slug        string `json:"slug" validate:"required,max=80"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Emoji       string `json:"emoji"`
	Order       int    `json:"order" validate:"gte=0"`
	Featured    bool   `json:"featured"`
}

func (in CategoryInput) ToCategory() Category {
	c := Category{
		Slug:        in.Slug,
		Name:        in.Name,
		Description: in.Description,
		Emoji:       in.Emoji,
		Order:       in.Order,
		Featured:    in.Featured,
	}
	c.Normalize()
	return c
}

type CategoryUpdate struct {
	Slug        *string `json:"slug" bson:"slug,omitempty" validate:"omitempty,min=1,max=80"`
	Name        *string `json:"name" bson:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Emoji       *string `json:"emoji" bson:"emoji,omitempty"`
	Order       *int    `json:"order" bson:"order,omitempty" validate:"omitempty,gte=0"`
	Featured    *bool   `json:"featured" bson:"featured,omitempty"`
}

func (u CategoryUpdate) Empty() bool {
	return u.Slug == nil && u.Name == nil && u.Description == nil &&
		u.Emoji == nil && u.Order == nil && u.Featured == nil
}

func (c *Category) Normalize() {
	c.Slug = normalizeSlug(c.Slug)
	if c.Emoji == "" {
		c.Emoji = DefaultCategoryEmoji
	}
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (u *CategoryUpdate) Normalize() {
	if u.Slug != nil {
		s := normalizeSlug(*u.Slug)
		u.Slug = &s
	}
}
