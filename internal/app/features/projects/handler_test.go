package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/invitecode"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/taskflow/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)

	user := testutil.NewTestUser("Ada", "ada@test.com")
	req := testutil.NewJSONRequest(http.MethodPost, "/",
		`{"name":"Apollo","description":"moon shot","template":"scrum"}`, user)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var p models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if p.Name != "Apollo" || len(p.Members) != 1 {
		t.Errorf("created project = %+v", p)
	}
	if p.Members[0].Role != models.RoleOwner || !p.Members[0].Permissions.CanInvite {
		t.Errorf("owner membership = %+v", p.Members[0])
	}
	if len(p.Settings.Columns) != 5 {
		t.Errorf("scrum columns = %v", p.Settings.Columns)
	}
}

func TestHandleCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)

	user := testutil.NewTestUser("Ada", "ada@test.com")
	req := testutil.NewJSONRequest(http.MethodPost, "/", `{"name":"   "}`, user)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "validation_error")
}

func TestRequiresSignedIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeViewHidesProjectFromNonMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	stranger := f.CreateUser(ctx, "Stranger", "s@test.com")
	p := f.CreateProject(ctx, "Secret", owner.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+p.ID.Hex(),
		testutil.AsUser(stranger.ID, stranger.FullName, stranger.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/"+p.ID.Hex(),
		testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}

func TestServeViewStripsInvitesForPlainMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	peer := f.CreateUser(ctx, "Peer", "p@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, peer.ID, models.RoleMember)
	f.AddInvite(ctx, p.ID, models.Invite{Code: "SECRET01", Role: models.RoleMember, IsActive: true})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+p.ID.Hex(),
		testutil.AsUser(peer.ID, peer.FullName, peer.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(got.Invites) != 0 {
		t.Error("invite codes leaked to a member without the invite capability")
	}
}

func TestHandleChangeRoleOwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	peer := f.CreateUser(ctx, "Peer", "p@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, peer.ID, models.RoleViewer)

	// A non-owner member cannot change roles.
	req := testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex()+"/members/"+peer.ID.Hex(),
		`{"role":"admin"}`, testutil.AsUser(peer.ID, peer.FullName, peer.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The owner can, and the snapshot is re-derived.
	req = testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex()+"/members/"+peer.ID.Hex(),
		`{"role":"admin"}`, testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"can_delete":true`)

	// Granting the owner role via role change is rejected.
	req = testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex()+"/members/"+peer.ID.Hex(),
		`{"role":"owner"}`, testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleRemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	peer := f.CreateUser(ctx, "Peer", "p@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, peer.ID, models.RoleMember)

	// Members may leave on their own.
	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+p.ID.Hex()+"/members/"+peer.ID.Hex(),
		testutil.AsUser(peer.ID, peer.FullName, peer.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// The owner cannot be removed, even by themselves.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+p.ID.Hex()+"/members/"+owner.ID.Hex(),
		testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleRemoveMemberByAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	admin := f.CreateUser(ctx, "Admin", "a@test.com")
	peer := f.CreateUser(ctx, "Peer", "p@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, admin.ID, models.RoleAdmin)
	f.AddMember(ctx, p.ID, peer.ID, models.RoleMember)
	asAdmin := testutil.AsUser(admin.ID, admin.FullName, admin.Email)

	// The invite capability is enough to remove a non-owner member.
	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+p.ID.Hex()+"/members/"+peer.ID.Hex(), asAdmin)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/"+p.ID.Hex()+"/members", asAdmin)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	var members []memberDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("member count after removal = %d, want 2", len(members))
	}

	// The owner still cannot be removed this way.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+p.ID.Hex()+"/members/"+owner.ID.Hex(), asAdmin)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleEditClearsDescription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	p := f.CreateProject(ctx, "Documented", owner.ID)
	me := testutil.AsUser(owner.ID, owner.FullName, owner.Email)

	// Omitting the field leaves the description alone.
	req := testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex(), `{"name":"Renamed"}`, me)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"description":"Test project"`)

	// Sending it empty clears the stored value.
	req = testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex(), `{"description":""}`, me)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if got.Description != "" {
		t.Errorf("description = %q, want cleared", got.Description)
	}
}

func TestGenerateErrorTaxonomy(t *testing.T) {
	var he *httperr.Error

	err := generateError(fmt.Errorf("minting code: %w", invitecode.ErrRetryBudget))
	if !errors.As(err, &he) || he.Status != http.StatusBadRequest || he.Code != "conflict" {
		t.Errorf("retry budget: got %+v, want a conflict", err)
	}

	err = generateError(errors.New("entropy source failed"))
	if !errors.As(err, &he) || he.Status != http.StatusInternalServerError {
		t.Errorf("unexpected failure: got %+v, want internal", err)
	}
}

func TestHandleCreateInviteRequiresCapability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	peer := f.CreateUser(ctx, "Peer", "p@test.com")
	p := f.CreateProject(ctx, "Board", owner.ID)
	f.AddMember(ctx, p.ID, peer.ID, models.RoleMember)

	req := testutil.NewJSONRequest(http.MethodPost, "/"+p.ID.Hex()+"/invites",
		`{"role":"member"}`, testutil.AsUser(peer.ID, peer.FullName, peer.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.NewJSONRequest(http.MethodPost, "/"+p.ID.Hex()+"/invites",
		`{"role":"member","max_uses":3}`, testutil.AsUser(owner.ID, owner.FullName, owner.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var inv models.Invite
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(inv.Code) != 8 || !inv.IsActive || inv.MaxUses == nil || *inv.MaxUses != 3 {
		t.Errorf("invite = %+v", inv)
	}
}
