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

type TagIntervalRepository struct {
	coll   *mongo.Collection
	logger ports.LoggerPort
	now    func() time.Time
}

func NewTagIntervalRepository(db *mongo.Database, logger ports.LoggerPort) *TagIntervalRepository {
	return &TagIntervalRepository{
		coll:   db.Collection(tagsCollection),
		logger: logger,
		now:    time.Now,
	}
}

func (r *TagIntervalRepository) ListTagIntervals(ctx context.Context, userID string) ([]*domain.TagInterval, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	docs, err := findAll[tagDocument](ctx, r.coll, filter, opts)
	if err != nil {
		r.logger.Warn("Ordered tags query failed, retrying unordered", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		docs, err = findAll[tagDocument](ctx, r.coll, filter)
		if err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].ID < docs[j].ID
		})
	}

	tags := make([]*domain.TagInterval, len(docs))
	for i, d := range docs {
		tags[i] = d.toDomain()
	}
	return tags, nil
}

func (r *TagIntervalRepository) GetTagInterval(ctx context.Context, id string) (*domain.TagInterval, error) {
	var doc tagDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TagIntervalRepository) CreateTagInterval(ctx context.Context, interval *domain.TagInterval) (string, error) {
	now := r.now()
	interval.ID = uuid.NewString()
	interval.CreatedAt = now
	interval.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newTagDocument(interval)); err != nil {
		return "", fmt.Errorf("insert tag: %w", err)
	}
	return interval.ID, nil
}

func (r *TagIntervalRepository) UpdateTagInterval(ctx context.Context, id string, patch domain.TagIntervalPatch) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": tagPatchSet(patch, r.now())})
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TagIntervalRepository) DeleteTagInterval(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
