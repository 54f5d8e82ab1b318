package tasks

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/taskflow/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)

	req := testutil.NewJSONRequest(http.MethodPost, "/",
		`{"project_id":"`+p.ID.Hex()+`","title":"Ship it","priority":"high"}`,
		testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if created.Title != "Ship it" || created.Priority != models.PriorityHigh {
		t.Errorf("created = %+v", created)
	}
	if created.Status != "To Do" {
		t.Errorf("status = %q, want first board column", created.Status)
	}
	if len(created.History) != 1 || created.History[0].Action != models.ActionCreated {
		t.Errorf("history = %+v", created.History)
	}
}

func TestHandleCreateViewerForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	viewer := f.CreateUser(ctx, "Viewer", "v@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, viewer.ID, models.RoleViewer)

	req := testutil.NewJSONRequest(http.MethodPost, "/",
		`{"project_id":"`+p.ID.Hex()+`","title":"Nope"}`,
		testutil.AsUser(viewer.ID, viewer.FullName, viewer.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestTasksInvisibleToNonMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	stranger := f.CreateUser(ctx, "Stranger", "s@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	task := f.CreateTask(ctx, p.ID, owner.ID, "Hidden")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+task.ID.Hex(),
		testutil.AsUser(stranger.ID, stranger.FullName, stranger.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Task not found")
}

func TestHandleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	task := f.CreateTask(ctx, p.ID, owner.ID, "Movable")
	me := testutil.AsUser(owner.ID, owner.FullName, owner.Email)

	// A status outside the board's columns is rejected.
	req := testutil.NewJSONRequest(http.MethodPatch, "/"+task.ID.Hex()+"/status",
		`{"status":"Shipped"}`, me)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	req = testutil.NewJSONRequest(http.MethodPatch, "/"+task.ID.Hex()+"/status",
		`{"status":"Done"}`, me)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var moved models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if moved.Status != "Done" || moved.ColumnIndex != 2 {
		t.Errorf("moved = status %q column %d", moved.Status, moved.ColumnIndex)
	}
	last := moved.History[len(moved.History)-1]
	if last.Action != models.ActionStatusChanged {
		t.Errorf("history tail = %+v", last)
	}
}

func TestCommentsAndDeletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	viewer := f.CreateUser(ctx, "Viewer", "v@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, viewer.ID, models.RoleViewer)
	task := f.CreateTask(ctx, p.ID, owner.ID, "Debated")
	asViewer := testutil.AsUser(viewer.ID, viewer.FullName, viewer.Email)
	asOwner := testutil.AsUser(owner.ID, owner.FullName, owner.Email)

	// Viewers cannot edit tasks but can comment.
	req := testutil.NewJSONRequest(http.MethodPost, "/"+task.ID.Hex()+"/comments",
		`{"text":"<b>hello</b> world"}`, asViewer)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var c models.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if c.Text != "hello world" {
		t.Errorf("text = %q, markup should be stripped", c.Text)
	}

	// Only the author may edit their comment.
	req = testutil.NewJSONRequest(http.MethodPut, "/"+task.ID.Hex()+"/comments/"+c.ID.Hex(),
		`{"text":"revised"}`, asOwner)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The project owner may delete anyone's comment.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+task.ID.Hex()+"/comments/"+c.ID.Hex(), asOwner)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}

func TestHandleDeleteRequiresCapabilityOrAuthorship(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	member := f.CreateUser(ctx, "Member", "m@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, member.ID, models.RoleMember)

	ownersTask := f.CreateTask(ctx, p.ID, owner.ID, "Owner's")
	membersTask := f.CreateTask(ctx, p.ID, member.ID, "Member's")
	asMember := testutil.AsUser(member.ID, member.FullName, member.Email)

	// Plain members lack the delete capability for others' tasks.
	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ownersTask.ID.Hex(), asMember)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// Creators may always delete their own tasks.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+membersTask.ID.Hex(), asMember)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}
