package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, id string, update models.ProductUpdate) (models.Product, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type MongoProductRepository struct {
	DB  *mongo.Database
	Now func() time.Time
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{DB: db, Now: time.Now}
}

func (r *MongoProductRepository) collection() *mongo.Collection {
	return r.DB.Collection(ProductsCollection)
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products, err := decodeAll(ctx, cursor, productFromRaw)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	raw, err := r.collection().FindOne(ctx, idFilter(id)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return productFromRaw(raw), nil
}

// FindByIDs returns the products in the order the ids were given, skipping ids that no longer exist.
func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	values := bson.A{}
	for _, id := range ids {
		values = append(values, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			values = append(values, oid)
		}
	}
	cursor, err := r.collection().Find(ctx, bson.M{"_id": bson.M{"$in": values}})
	if err != nil {
		return nil, fmt.Errorf("find products by id: %w", err)
	}
	found, err := decodeAll(ctx, cursor, productFromRaw)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	now := r.Now().UTC()
	product.ID = ""
	product.CreatedAt = &now
	product.UpdatedAt = &now
	product.Normalize()

	res, err := r.collection().InsertOne(ctx, product)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", mapWriteError(err))
	}
	product.ID = insertedID(res.InsertedID)
	return product, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (models.Product, error) {
	update.Normalize()
	doc, err := setDocument(update, r.Now().UTC())
	if err != nil {
		return models.Product{}, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := r.collection().FindOneAndUpdate(ctx, idFilter(id), doc, opts).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("update product %s: %w", id, mapWriteError(err))
	}
	return productFromRaw(raw), nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$toLower": "$category"}},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}
	defer cursor.Close(ctx)

	counts := map[string]int{}
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Count    int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode category count: %w", err)
		}
		counts[row.Category] = row.Count
	}
	return counts, cursor.Err()
}
