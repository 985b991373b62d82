package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

type MaintenanceRecordRepository struct {
	coll   *mongo.Collection
	logger ports.LoggerPort
	now    func() time.Time
}

func NewMaintenanceRecordRepository(db *mongo.Database, logger ports.LoggerPort) *MaintenanceRecordRepository {
	return &MaintenanceRecordRepository{
		coll:   db.Collection(recordsCollection),
		logger: logger,
		now:    time.Now,
	}
}

// ListMaintenanceRecords falls back to an unsorted query sorted in memory
// when the ordered query is rejected.
func (r *MaintenanceRecordRepository) ListMaintenanceRecords(ctx context.Context, userID string) ([]*domain.MaintenanceRecord, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	docs, err := findAll[recordDocument](ctx, r.coll, filter, opts)
	if err != nil {
		r.logger.Warn("Ordered records query failed, retrying unordered", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		docs, err = findAll[recordDocument](ctx, r.coll, filter)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		sort.SliceStable(docs, func(i, j int) bool {
			if !docs[i].Date.Equal(docs[j].Date) {
				return docs[i].Date.After(docs[j].Date)
			}
			return docs[i].ID > docs[j].ID
		})
	}

	records := make([]*domain.MaintenanceRecord, len(docs))
	for i, d := range docs {
		records[i] = d.toDomain()
	}
	return records, nil
}

func (r *MaintenanceRecordRepository) GetMaintenanceRecord(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	var doc recordDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MaintenanceRecordRepository) CreateMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) (string, error) {
	now := r.now()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newRecordDocument(record)); err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return record.ID, nil
}

func (r *MaintenanceRecordRepository) UpdateMaintenanceRecord(ctx context.Context, id string, patch domain.MaintenanceRecordPatch) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": recordPatchSet(patch, r.now())})
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaintenanceRecordRepository) DeleteMaintenanceRecord(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
