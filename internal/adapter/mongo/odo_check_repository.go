package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type OdoCheckRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewOdoCheckRepository(db *mongo.Database) *OdoCheckRepository {
	return &OdoCheckRepository{
		coll: db.Collection(checksCollection),
		now:  time.Now,
	}
}

func (r *OdoCheckRepository) ListOdoChecks(ctx context.Context, userID string) ([]*domain.OdoCheckRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	docs, err := findAll[checkDocument](ctx, r.coll, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list odo checks: %w", err)
	}

	checks := make([]*domain.OdoCheckRecord, len(docs))
	for i, d := range docs {
		checks[i] = d.toDomain()
	}
	return checks, nil
}

func (r *OdoCheckRepository) CreateOdoCheck(ctx context.Context, check *domain.OdoCheckRecord) (string, error) {
	check.ID = uuid.NewString()
	check.CreatedAt = r.now()

	if _, err := r.coll.InsertOne(ctx, newCheckDocument(check)); err != nil {
		return "", fmt.Errorf("insert odo check: %w", err)
	}
	return check.ID, nil
}

func (r *OdoCheckRepository) ClearOdoChecks(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("clear odo checks: %w", err)
	}
	return res.DeletedCount, nil
}
