package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Email:         email,
		PasswordHash:  "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtest",
		Status:        "active",
		Notifications: models.DefaultNotificationPrefs(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates a kanban project owned by ownerID with the
// owner as sole member.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project",
		Status:      models.ProjectActive,
		OwnerID:     ownerID,
		Members: []models.Member{{
			UserID:      ownerID,
			Role:        models.RoleOwner,
			Permissions: authz.PermissionsFor(models.RoleOwner),
			JoinedAt:    now,
		}},
		Invites: []models.Invite{},
		Settings: models.ProjectSettings{
			Template: "kanban",
			Columns:  models.TemplateColumns("kanban"),
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// AddMember appends a membership record with the role's derived
// capability snapshot directly to the stored project document.
func (f *Fixtures) AddMember(ctx context.Context, projectID, userID primitive.ObjectID, role string) models.Member {
	f.t.Helper()

	m := models.Member{
		UserID:      userID,
		Role:        role,
		Permissions: authz.PermissionsFor(role),
		JoinedAt:    time.Now().UTC(),
	}
	_, err := f.db.Collection("projects").UpdateByID(ctx, projectID,
		map[string]any{"$push": map[string]any{"members": m}})
	if err != nil {
		f.t.Fatalf("failed to add test member: %v", err)
	}
	return m
}

// AddInvite appends an invite record to the stored project document.
func (f *Fixtures) AddInvite(ctx context.Context, projectID primitive.ObjectID, inv models.Invite) models.Invite {
	f.t.Helper()

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	_, err := f.db.Collection("projects").UpdateByID(ctx, projectID,
		map[string]any{"$push": map[string]any{"invites": inv}})
	if err != nil {
		f.t.Fatalf("failed to add test invite: %v", err)
	}
	return inv
}

// CreateTask creates a task on the given project in its first column.
func (f *Fixtures) CreateTask(ctx context.Context, projectID, creatorID primitive.ObjectID, title string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	t := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		CreatedBy: creatorID,
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    "To Do",
		Priority:  models.PriorityMedium,
		Comments:  []models.Comment{},
		History: []models.HistoryEntry{{
			ActorID:   creatorID,
			Action:    models.ActionCreated,
			Detail:    "task created",
			CreatedAt: now,
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, t); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return t
}
