package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (models.Category, error)
	Create(ctx context.Context, category models.Category) (models.Category, error)
	Update(ctx context.Context, id string, update models.CategoryUpdate) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

type MongoCategoryRepository struct {
	DB  *mongo.Database
	Now func() time.Time
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db, Now: time.Now}
}

func (r *MongoCategoryRepository) collection() *mongo.Collection {
	return r.DB.Collection(CategoriesCollection)
}

func (r *MongoCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	categories, err := decodeAll(ctx, cursor, categoryFromRaw)
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (r *MongoCategoryRepository) FindBySlug(ctx context.Context, slug string) (models.Category, error) {
	raw, err := r.collection().FindOne(ctx, bson.M{"slug": slug}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, fmt.Errorf("find category %s: %w", slug, err)
	}
	return categoryFromRaw(raw), nil
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	category.Normalize()
	count, err := r.collection().CountDocuments(ctx, bson.M{"slug": category.Slug})
	if err != nil {
		return models.Category{}, fmt.Errorf("check category slug: %w", err)
	}
	if count > 0 {
		return models.Category{}, fmt.Errorf("%w: category slug %q", ErrDuplicate, category.Slug)
	}

	now := r.Now().UTC()
	category.ID = ""
	category.CreatedAt = &now
	category.UpdatedAt = &now
	res, err := r.collection().InsertOne(ctx, category)
	if err != nil {
		return models.Category{}, fmt.Errorf("insert category: %w", mapWriteError(err))
	}
	category.ID = insertedID(res.InsertedID)
	return category, nil
}

func (r *MongoCategoryRepository) Update(ctx context.Context, id string, update models.CategoryUpdate) (models.Category, error) {
	update.Normalize()
	doc, err := setDocument(update, r.Now().UTC())
	if err != nil {
		return models.Category{}, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := r.collection().FindOneAndUpdate(ctx, idFilter(id), doc, opts).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, fmt.Errorf("update category %s: %w", id, mapWriteError(err))
	}
	return categoryFromRaw(raw), nil
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
