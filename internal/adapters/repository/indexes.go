package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func catalogIndexes() []indexSpec {
	return []indexSpec{
		{ProductsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		}},
		{ProductsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_name"),
		}},
		{ProductsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "featured", Value: -1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_featured_name"),
		}},
		{CategoriesCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_category_slug").SetUnique(true),
		}},
		{CategoriesCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_category_order"),
		}},
		{CollectionsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_collection_slug").SetUnique(true),
		}},
		{CollectionsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_collection_order"),
		}},
	}
}

// EnsureIndexes creates the catalog indexes. Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var failed int
	for _, spec := range catalogIndexes() {
		name, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model)
		if err != nil {
			failed++
			logrus.WithError(err).WithField("collection", spec.collection).Error("Failed to create index")
			continue
		}
		logrus.WithFields(logrus.Fields{"collection": spec.collection, "index": name}).Info("Index ready")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(catalogIndexes()))
	}
	return nil
}
