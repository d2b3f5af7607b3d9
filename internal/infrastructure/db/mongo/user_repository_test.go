package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

func TestLive_AddsDeletedPredicate(t *testing.T) {
	f := live(bson.M{"email": "a@x.com"})
	if f["deleted"] != false || f["email"] != "a@x.com" {
		t.Fatalf("unexpected filter: %v", f)
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mu := &mongoUser{
		ID:        oid,
		Name:      "Alice",
		Email:     "alice@x.com",
		Role:      string(domain.RoleAdmin),
		Active:    true,
		CreatedAt: created.Unix(),
		UpdatedAt: created.Unix(),
	}
	u := mu.toDomain()
	if u.ID != oid.Hex() || u.Role != domain.RoleAdmin || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Deleted() {
		t.Fatalf("live document mapped as deleted")
	}

	mu.Deleted = true
	mu.DeletedAt = created.Add(time.Hour).Unix()
	if u := mu.toDomain(); !u.Deleted() || !u.DeletedAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("deleted document not mapped: %+v", u)
	}
}

func TestUnixToTime_Zero(t *testing.T) {
	if !unixToTime(0).IsZero() {
		t.Fatal("expected zero time for 0")
	}
}
