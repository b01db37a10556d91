package models

import (
	"strings"
	"time"
)

type Collection struct {
	ID          string     `json:"id" bson:"_id,omitempty" yaml:"-"`
	Slug        string     `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Name        string     `json:"name" bson:"name" yaml:"name" validate:"required"`
	Description string     `json:"description,omitempty" bson:"description" yaml:"description"`
	ImageURL    string     `json:"imageUrl,omitempty" bson:"imageUrl" yaml:"imageUrl"`
	Featured    bool       `json:"featured" bson:"featured" yaml:"featured"`
	ProductIDs  []string   `json:"productIds" bson:"productIds" yaml:"productIds"`
	Order       int        `json:"order" bson:"order" yaml:"order"`
	StartDate   string     `json:"startDate,omitempty" bson:"startDate,omitempty" yaml:"startDate"`
	EndDate     string     `json:"endDate,omitempty" bson:"endDate,omitempty" yaml:"endDate"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// CollectionDetail is a collection with its products resolved.
type CollectionDetail struct {
	Collection
	ProductCount int       `json:"productCount"`
	Products     []Product `json:"products"`
}

type CollectionInput struct {
	Slug        string   `json:"slug" validate:"required,max=80"`
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Featured    bool     `json:"featured"`
	ProductIDs  []string `json:"productIds"`
	Order       int      `json:"order" validate:"gte=0"`
	StartDate   string   `json:"startDate" validate:"omitempty,collectiondate"`
	EndDate     string   `json:"endDate" validate:"omitempty,collectiondate"`
}

func (in CollectionInput) ToCollection() Collection {
	c := Collection{
		Slug:        normalizeSlug(in.Slug),
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Featured:    in.Featured,
		ProductIDs:  UniqueIDs(in.ProductIDs),
		Order:       in.Order,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	return c
}

type CollectionUpdate struct {
	Slug        *string   `json:"slug" bson:"slug,omitempty" validate:"omitempty,min=1,max=80"`
	Name        *string   `json:"name" bson:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string   `json:"description" bson:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    *string   `json:"imageUrl" bson:"imageUrl,omitempty" validate:"omitempty,url|len=0"`
	Featured    *bool     `json:"featured" bson:"featured,omitempty"`
	ProductIDs  *[]string `json:"productIds" bson:"productIds,omitempty"`
	Order       *int      `json:"order" bson:"order,omitempty" validate:"omitempty,gte=0"`
	StartDate   *string   `json:"startDate" bson:"startDate,omitempty" validate:"omitempty,collectiondate|len=0"`
	EndDate     *string   `json:"endDate" bson:"endDate,omitempty" validate:"omitempty,collectiondate|len=0"`
}

func (u CollectionUpdate) Empty() bool {
	return u.Slug == nil && u.Name == nil && u.Description == nil && u.ImageURL == nil &&
		u.Featured == nil && u.ProductIDs == nil && u.Order == nil &&
		u.StartDate == nil && u.EndDate == nil
}

func (u *CollectionUpdate) Normalize() {
	if u.Slug != nil {
		s := normalizeSlug(*u.Slug)
		u.Slug = &s
	}
	if u.ProductIDs != nil {
		ids := UniqueIDs(*u.ProductIDs)
		u.ProductIDs = &ids
	}
}

// Active reports whether now falls inside the collection's optional date range.
// A missing bound is open. An unparseable bound is ignored.
func (c Collection) Active(now time.Time) bool {
	if start, _, ok := parseCollectionDate(c.StartDate); ok && now.Before(start) {
		return false
	}
	if end, dateOnly, ok := parseCollectionDate(c.EndDate); ok {
		// a date-only end bound includes the whole day
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		if !now.Before(end) {
			return false
		}
	}
	return true
}

// ValidCollectionDate accepts YYYY-MM-DD or RFC 3339.
func ValidCollectionDate(s string) bool {
	_, _, ok := parseCollectionDate(s)
	return ok
}

// ValidCollectionRange reports whether start does not fall after end. A date-only
// end bound covers its whole day. Missing or unparseable bounds pass.
func ValidCollectionRange(start, end string) bool {
	s, _, okStart := parseCollectionDate(start)
	e, dateOnly, okEnd := parseCollectionDate(end)
	if !okStart || !okEnd {
		return true
	}
	if dateOnly {
		e = e.AddDate(0, 0, 1)
		return s.Before(e)
	}
	return !s.After(e)
}

func parseCollectionDate(s string) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

// UniqueIDs trims ids, drops empties and keeps first occurrences in order.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
