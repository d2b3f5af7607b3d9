package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID             primitive.ObjectID          `bson:"_id,omitempty"`
	Title          string                      `bson:"title"`
	Description    string                      `bson:"description,omitempty"`
	Status         string                      `bson:"status"`
	Priority       string                      `bson:"priority"`
	DueDate        *time.Time                  `bson:"due_date,omitempty"`
	UserID         string                      `bson:"user_id"`
	ProjectID      string                      `bson:"project_id"`
	IdempotencyKey string                      `bson:"idempotency_key,omitempty"`
	StatusHistory  []domain.StatusHistoryEntry `bson:"status_history"`
	CreatedAt      time.Time                   `bson:"created_at"`
	UpdatedAt      time.Time                   `bson:"updated_at"`
}

// Create inserts a new task document and sets t.ID.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoTask{
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate,
		UserID:         t.UserID,
		ProjectID:      t.ProjectID,
		IdempotencyKey: t.IdempotencyKey,
		StatusHistory:  t.StatusHistory,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return nil
}

// FindByID retrieves a task by id.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return mt.toDomain(), nil
}

// List returns a page of tasks matching filter and the total count.
func (r *TaskRepository) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.UserID != "" {
		q["user_id"] = filter.UserID
	}
	if filter.ProjectID != "" {
		q["project_id"] = filter.ProjectID
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// CountByProject returns the number of tasks in a project.
func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, fmt.Errorf("count project tasks: %w", err)
	}
	return n, nil
}

// UpdateStatus atomically sets the task status and appends a history entry.
// The update only applies while the stored status still equals from, so two
// concurrent transitions cannot both succeed.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, from domain.TaskStatus, entry domain.StatusHistoryEntry) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(from)}
	update := bson.M{
		"$set":  bson.M{"status": string(entry.Status), "updated_at": entry.Timestamp.UTC()},
		"$push": bson.M{"status_history": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: status changed concurrently", domain.ErrInvalidTransition)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (mt *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:             mt.ID.Hex(),
		Title:          mt.Title,
		Description:    mt.Description,
		Status:         domain.TaskStatus(mt.Status),
		Priority:       domain.Priority(mt.Priority),
		DueDate:        mt.DueDate,
		UserID:         mt.UserID,
		ProjectID:      mt.ProjectID,
		IdempotencyKey: mt.IdempotencyKey,
		StatusHistory:  mt.StatusHistory,
		CreatedAt:      mt.CreatedAt.UTC(),
		UpdatedAt:      mt.UpdatedAt.UTC(),
	}
}
