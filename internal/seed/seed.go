package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var raw []byte

type Testimonial struct {
	Name    string `yaml:"name" json:"name"`
	Role    string `yaml:"role" json:"role"`
	Avatar  string `yaml:"avatar" json:"avatar"`
	Rating  int    `yaml:"rating" json:"rating"`
	Comment string `yaml:"comment" json:"comment"`
}

type Data struct {
	Categories   []models.Category   `yaml:"categories"`
	Collections  []models.Collection `yaml:"collections"`
	Products     []models.Product    `yaml:"products"`
	Testimonials []Testimonial       `yaml:"testimonials"`
}

var (
	once    sync.Once
	loaded  Data
	errLoad error
)

// Load parses the embedded catalog once.
func Load() (Data, error) {
	once.Do(func() {
		loaded, errLoad = Parse(raw)
	})
	return loaded, errLoad
}

func Parse(b []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(b, &data); err != nil {
		return Data{}, fmt.Errorf("parse seed data: %w", err)
	}
	for i := range data.Categories {
		data.Categories[i].Normalize()
	}
	for i := range data.Products {
		data.Products[i].Normalize()
	}
	for i := range data.Collections {
		data.Collections[i].ProductIDs = models.UniqueIDs(data.Collections[i].ProductIDs)
	}
	return data, nil
}

type CategoryCreator interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
}

type CollectionCreator interface {
	Create(ctx context.Context, collection models.Collection) (models.Collection, error)
}

type Result struct {
	CategoriesCreated  int      `json:"categoriesCreated"`
	CollectionsCreated int      `json:"collectionsCreated"`
	Skipped            int      `json:"skipped"`
	Errors             []string `json:"errors"`
}

// Run creates the initial categories and collections. Records whose slug already
// exists are skipped, so running it twice is harmless. Other failures are collected
// and the run continues.
func Run(ctx context.Context, data Data, categories CategoryCreator, collections CollectionCreator) Result {
	res := Result{Errors: []string{}}

	for _, c := range data.Categories {
		created, err := categories.Create(ctx, c)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			res.Skipped++
			logrus.WithField("slug", c.Slug).Info("Category already exists")
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("category %s: %v", c.Name, err))
			logrus.WithError(err).WithField("slug", c.Slug).Error("Failed to create category")
		default:
			res.CategoriesCreated++
			logrus.WithFields(logrus.Fields{"slug": c.Slug, "id": created.ID}).Info("Category created")
		}
	}

	for _, c := range data.Collections {
		created, err := collections.Create(ctx, c)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			res.Skipped++
			logrus.WithField("slug", c.Slug).Info("Collection already exists")
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("collection %s: %v", c.Name, err))
			logrus.WithError(err).WithField("slug", c.Slug).Error("Failed to create collection")
		default:
			res.CollectionsCreated++
			logrus.WithFields(logrus.Fields{"slug": c.Slug, "id": created.ID}).Info("Collection created")
		}
	}

	logrus.WithFields(logrus.Fields{
		"categories":  res.CategoriesCreated,
		"collections": res.CollectionsCreated,
		"skipped":     res.Skipped,
		"failed":      len(res.Errors),
	}).Info("Seed finished")
	return res
}
