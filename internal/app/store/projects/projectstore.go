// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("project not found")
	ErrDuplicateName = errors.New("a project with this name already exists")
	// ErrDuplicatePublicCode surfaces a public-link code collision from the
	// sparse unique index. Not retried in application code.
	ErrDuplicatePublicCode = errors.New("public invite code already in use")
	ErrAlreadyMember       = errors.New("user is already a member of this project")
	ErrMemberNotFound      = errors.New("member not found on this project")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrOwnerImmutable      = errors.New("the owner cannot be removed; transfer ownership first")
	// ErrStaleWrite means a concurrent writer changed the document between
	// our read and conditional update. Callers re-read and retry.
	ErrStaleWrite = errors.New("project was modified concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// dupError decides which unique index a duplicate-key error came from.
// Mongo embeds the index name in the error message.
func dupError(err error) error {
	if strings.Contains(err.Error(), "public_invite_code") {
		return ErrDuplicatePublicCode
	}
	return ErrDuplicateName
}

// Create inserts a new project. The caller supplies the owner membership;
// bookkeeping fields are set here.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, dupError(err)
		}
		return models.Project{}, err
	}
	return p, nil
}

// GetByID retrieves a project by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByInviteCode retrieves the project carrying an invite with the given
// code, regardless of the invite's validity.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (models.Project, error) {
	return s.findOne(ctx, bson.M{"invites.code": code})
}

// GetByPublicCode retrieves a publicly joinable project by its link code.
func (s *Store) GetByPublicCode(ctx context.Context, code string) (models.Project, error) {
	return s.findOne(ctx, bson.M{
		"settings.is_public":          true,
		"settings.public_invite_code": code,
	})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

// ListForUser returns projects where the user is a member, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"members.user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update modifies a project's mutable top-level fields. Empty name and
// status leave the stored value alone; a non-nil empty description
// clears the field; Settings is replaced whole when non-nil.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name string, description *string, status string, tags []string, settings *models.ProjectSettings) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if description != nil {
		if *description == "" {
			unset["description"] = ""
		} else {
			set["description"] = *description
		}
	}
	if status != "" {
		set["status"] = status
	}
	if tags != nil {
		set["tags"] = tags
	}
	if settings != nil {
		set["settings"] = *settings
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return dupError(err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus changes only the project status (archive/complete/reactivate).
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project document. Task cleanup is the caller's job and
// is not atomic with this delete.
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

// Count returns the number of projects matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
