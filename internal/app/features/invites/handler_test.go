package invites

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/taskflow/internal/testutil"
	"go.uber.org/zap"
)

func intPtr(n int) *int { return &n }

func activeInvite(code string, createdBy models.User) models.Invite {
	return models.Invite{
		Code:      code,
		CreatedBy: createdBy.ID,
		Role:      models.RoleMember,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		IsActive:  true,
	}
}

func TestServePreview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	guest := f.CreateUser(ctx, "Guest", "g@test.com")
	p := f.CreateProject(ctx, "Apollo", owner.ID)
	f.AddInvite(ctx, p.ID, activeInvite("JOINCODE", owner))

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/JOINCODE",
		testutil.AsUser(guest.ID, guest.FullName, guest.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"project_name":"Apollo"`)
	rec.AssertContains(t, `"invited_by":"Owner"`)
}

func TestHandleAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	guest := f.CreateUser(ctx, "Guest", "g@test.com")
	p := f.CreateProject(ctx, "Apollo", owner.ID)
	f.AddInvite(ctx, p.ID, activeInvite("JOINCODE", owner))

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/JOINCODE/accept",
		testutil.AsUser(guest.ID, guest.FullName, guest.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// Joined with the invite's role; codes are not echoed back.
	rec.AssertContains(t, `"role":"member"`)
	if strings.Contains(rec.Body.String(), "JOINCODE") {
		t.Error("invite code leaked in the accept response")
	}

	// Accepting twice is rejected up front.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/JOINCODE/accept",
		testutil.AsUser(guest.ID, guest.FullName, guest.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleAcceptExhaustsLimitedInvite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	first := f.CreateUser(ctx, "First", "f@test.com")
	second := f.CreateUser(ctx, "Second", "s@test.com")
	p := f.CreateProject(ctx, "Apollo", owner.ID)

	inv := activeInvite("ONESLOT1", owner)
	inv.MaxUses = intPtr(1)
	f.AddInvite(ctx, p.ID, inv)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/ONESLOT1/accept",
		testutil.AsUser(first.ID, first.FullName, first.Email))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// The single slot is spent; the next caller sees a dead code.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/ONESLOT1/accept",
		testutil.AsUser(second.ID, second.FullName, second.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestInvalidInvitesLookMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	guest := f.CreateUser(ctx, "Guest", "g@test.com")
	p := f.CreateProject(ctx, "Apollo", owner.ID)

	expired := activeInvite("EXPIRED1", owner)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	f.AddInvite(ctx, p.ID, expired)

	revoked := activeInvite("REVOKED1", owner)
	revoked.IsActive = false
	f.AddInvite(ctx, p.ID, revoked)

	for _, code := range []string{"EXPIRED1", "REVOKED1", "NOSUCH99"} {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+code,
			testutil.AsUser(guest.ID, guest.FullName, guest.Email))
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusNotFound)
	}
}

func TestPublicAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, nil, zap.NewNop())
	router := PublicRoutes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "o@test.com")
	guest := f.CreateUser(ctx, "Guest", "g@test.com")
	p := f.CreateProject(ctx, "Open Board", owner.ID)
	_, err := db.Collection("projects").UpdateByID(ctx, p.ID, map[string]any{
		"$set": map[string]any{
			"settings.is_public":          true,
			"settings.public_invite_code": "PUB42PUB42PU",
		},
	})
	if err != nil {
		t.Fatalf("seed public settings: %v", err)
	}

	// Preview is open to anonymous callers.
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/PUB42PUB42PU"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"project_name":"Open Board"`)

	// Joining still requires a signed-in user.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodPost, "/PUB42PUB42PU/accept"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/PUB42PUB42PU/accept",
		testutil.AsUser(guest.ID, guest.FullName, guest.Email))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"role":"member"`)
}
