package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homeinv/barcode-router/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BatchRepository persists the whole batch as one versioned document per
// router instance.
type BatchRepository interface {
	Load(ctx context.Context, instance string) (*models.BatchSnapshot, error)
	Save(ctx context.Context, instance string, snapshot *models.BatchSnapshot) error
}

type batchDocument struct {
	ID        string             `bson:"_id"`
	Version   int                `bson:"version"`
	Items     []models.BatchItem `bson:"items"`
	Mode      models.BatchMode   `bson:"mode"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type batchRepo struct {
	collection *mongo.Collection
}

func NewBatchRepository(db *DB) BatchRepository {
	return &batchRepo{
		collection: db.Database.Collection("batch_state"),
	}
}

func (r *batchRepo) Load(ctx context.Context, instance string) (*models.BatchSnapshot, error) {
	var doc batchDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": instance}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}

	return &models.BatchSnapshot{
		Version:   doc.Version,
		Items:     doc.Items,
		Mode:      doc.Mode,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *batchRepo) Save(ctx context.Context, instance string, snapshot *models.BatchSnapshot) error {
	doc := batchDocument{
		ID:        instance,
		Version:   snapshot.Version,
		Items:     snapshot.Items,
		Mode:      snapshot.Mode,
		UpdatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": instance}, doc, opts); err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}
