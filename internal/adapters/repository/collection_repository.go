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

type CollectionRepository interface {
	FindAll(ctx context.Context) ([]models.Collection, error)
	FindBySlug(ctx context.Context, slug string) (models.Collection, error)
	FindByID(ctx context.Context, id string) (models.Collection, error)
	Create(ctx context.Context, collection models.Collection) (models.Collection, error)
	Update(ctx context.Context, id string, update models.CollectionUpdate) (models.Collection, error)
	Delete(ctx context.Context, id string) error
	AddProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error)
	RemoveProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error)
}

type MongoCollectionRepository struct {
	DB  *mongo.Database
	Now func() time.Time
}

func NewCollectionRepository(db *mongo.Database) CollectionRepository {
	return &MongoCollectionRepository{DB: db, Now: time.Now}
}

func (r *MongoCollectionRepository) collection() *mongo.Collection {
	return r.DB.Collection(CollectionsCollection)
}

func (r *MongoCollectionRepository) FindAll(ctx context.Context) ([]models.Collection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find collections: %w", err)
	}
	collections, err := decodeAll(ctx, cursor, collectionFromRaw)
	if err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return collections, nil
}

func (r *MongoCollectionRepository) FindBySlug(ctx context.Context, slug string) (models.Collection, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *MongoCollectionRepository) FindByID(ctx context.Context, id string) (models.Collection, error) {
	return r.findOne(ctx, idFilter(id), id)
}

func (r *MongoCollectionRepository) findOne(ctx context.Context, filter bson.M, key string) (models.Collection, error) {
	raw, err := r.collection().FindOne(ctx, filter).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Collection{}, ErrNotFound
		}
		return models.Collection{}, fmt.Errorf("find collection %s: %w", key, err)
	}
	return collectionFromRaw(raw), nil
}

func (r *MongoCollectionRepository) Create(ctx context.Context, collection models.Collection) (models.Collection, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"slug": collection.Slug})
	if err != nil {
		return models.Collection{}, fmt.Errorf("check collection slug: %w", err)
	}
	if count > 0 {
		return models.Collection{}, fmt.Errorf("%w: collection slug %q", ErrDuplicate, collection.Slug)
	}

	now := r.Now().UTC()
	collection.ID = ""
	collection.ProductIDs = models.UniqueIDs(collection.ProductIDs)
	collection.CreatedAt = &now
	collection.UpdatedAt = &now
	res, err := r.collection().InsertOne(ctx, collection)
	if err != nil {
		return models.Collection{}, fmt.Errorf("insert collection: %w", mapWriteError(err))
	}
	collection.ID = insertedID(res.InsertedID)
	return collection, nil
}

func (r *MongoCollectionRepository) Update(ctx context.Context, id string, update models.CollectionUpdate) (models.Collection, error) {
	update.Normalize()
	doc, err := setDocument(update, r.Now().UTC())
	if err != nil {
		return models.Collection{}, err
	}
	return r.apply(ctx, id, doc)
}

func (r *MongoCollectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddProducts adds ids to the collection's list with $addToSet.
func (r *MongoCollectionRepository) AddProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error) {
	if err := r.convertLegacyProductIDs(ctx, id); err != nil {
		return models.Collection{}, err
	}
	return r.apply(ctx, id, addProductsUpdate(productIDs, r.Now().UTC()))
}

func (r *MongoCollectionRepository) RemoveProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error) {
	if err := r.convertLegacyProductIDs(ctx, id); err != nil {
		return models.Collection{}, err
	}
	return r.apply(ctx, id, removeProductsUpdate(productIDs, r.Now().UTC()))
}

// convertLegacyProductIDs rewrites a productIds value that is not an array (a
// comma-separated string or null) into an array. The filter matches only
// non-array values.
func (r *MongoCollectionRepository) convertLegacyProductIDs(ctx context.Context, id string) error {
	filter := legacyProductIDsFilter(id)
	raw, err := r.collection().FindOne(ctx, filter).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("find collection %s: %w", id, err)
	}
	ids := models.UniqueIDs(rawStrings(raw.Lookup("productIds")))
	if _, err := r.collection().UpdateOne(ctx, filter, bson.M{"$set": bson.M{"productIds": ids}}); err != nil {
		return fmt.Errorf("convert collection %s product ids: %w", id, err)
	}
	return nil
}

func legacyProductIDsFilter(id string) bson.M {
	filter := idFilter(id)
	filter["productIds"] = bson.M{"$exists": true, "$not": bson.M{"$type": "array"}}
	return filter
}

func addProductsUpdate(productIDs []string, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"productIds": bson.M{"$each": models.UniqueIDs(productIDs)}},
		"$set":      bson.M{"updatedAt": now},
	}
}

func removeProductsUpdate(productIDs []string, now time.Time) bson.M {
	return bson.M{
		"$pull": bson.M{"productIds": bson.M{"$in": models.UniqueIDs(productIDs)}},
		"$set":  bson.M{"updatedAt": now},
	}
}

func (r *MongoCollectionRepository) apply(ctx context.Context, id string, doc bson.M) (models.Collection, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := r.collection().FindOneAndUpdate(ctx, idFilter(id), doc, opts).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Collection{}, ErrNotFound
		}
		return models.Collection{}, fmt.Errorf("update collection %s: %w", id, mapWriteError(err))
	}
	return collectionFromRaw(raw), nil
}
