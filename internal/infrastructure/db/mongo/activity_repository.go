package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

const collectionActivity = "task_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

// Insert persists a status change to the task_activity audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.TaskActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, bson.M{
		"task_id":     a.TaskID,
		"from":        string(a.From),
		"to":          string(a.To),
		"actor_id":    a.ActorID,
		"actor_role":  string(a.ActorRole),
		"timestamp":   a.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	})
	return err
}
