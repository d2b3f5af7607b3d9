package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

type mongoProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

// Create inserts a new project document and sets p.ID.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoProject{
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProject
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProjectRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Project, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoProject
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode projects: %w", err)
	}

	out := make([]*domain.Project, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (mp *mongoProject) toDomain() *domain.Project {
	return &domain.Project{
		ID:          mp.ID.Hex(),
		Name:        mp.Name,
		Description: mp.Description,
		CreatedAt:   unixToTime(mp.CreatedAt),
		UpdatedAt:   unixToTime(mp.UpdatedAt),
	}
}
