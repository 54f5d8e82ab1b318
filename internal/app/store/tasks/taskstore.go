// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// historyCap bounds the embedded history array. Appends keep only the
// newest entries; older ones fall off. See the retention note in DESIGN.md.
const historyCap = 500

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound        = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a new task with its "created" history entry.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	t.History = []models.HistoryEntry{{
		ActorID:   t.CreatedBy,
		Action:    models.ActionCreated,
		Detail:    "task created",
		CreatedAt: now,
	}}
	t.Version = 1
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID retrieves a task by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

// ListByProject returns a project's tasks in board order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "column_index", Value: 1},
		{Key: "position", Value: 1},
	})
	return s.find(ctx, bson.M{"project_id": projectID}, opts)
}

// ListByAssignee returns tasks assigned to a user across all projects,
// soonest due first.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return s.find(ctx, bson.M{"assignee_id": userID}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Apply sets the given fields and appends history entries in one write.
// Callers pass only fields that actually changed; an empty entries slice
// with an empty set map is rejected upstream as a no-op.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, set bson.M, entries []models.HistoryEntry) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if len(entries) > 0 {
		update["$push"] = bson.M{"history": bson.M{
			"$each":  entries,
			"$slice": -historyCap,
		}}
	}

	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject removes all tasks of a project. Part of the project
// delete cascade; not atomic with the project document's removal.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StatusCount is one bucket of the per-status aggregation.
type StatusCount struct {
	Status string `bson:"_id"`
	Count  int64  `bson:"count"`
}

// CountByStatus aggregates task counts per status across the given projects.
func (s *Store) CountByStatus(ctx context.Context, projectIDs []primitive.ObjectID) ([]StatusCount, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"project_id": bson.M{"$in": projectIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []StatusCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountOverdue counts unfinished tasks past their due date. A task is
// unfinished when its status is not the last column of its board; the
// caller passes the set of terminal statuses.
func (s *Store) CountOverdue(ctx context.Context, projectIDs []primitive.ObjectID, terminalStatuses []string, now time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"project_id": bson.M{"$in": projectIDs},
		"due_date":   bson.M{"$lt": now},
		"status":     bson.M{"$nin": terminalStatuses},
	})
}
