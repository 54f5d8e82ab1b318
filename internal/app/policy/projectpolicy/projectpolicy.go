// Package projectpolicy provides authorization checks for project-scoped
// requests.
//
// Authorization rules:
//   - Visibility: only members can see a project; non-members get the
//     same "not found" as a missing project.
//   - Capabilities come from the member's stored permission snapshot,
//     not from a live role lookup.
//   - The owner is additionally allowed everything regardless of snapshot.
package projectpolicy

import (
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership resolves the caller's membership record on a project.
// Returns 401 for anonymous callers and 404 for non-members.
func Membership(p models.Project, r *http.Request) (models.Member, primitive.ObjectID, error) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		return models.Member{}, primitive.NilObjectID, httperr.Unauthorized("Authentication required")
	}
	m, found := p.MemberFor(userID)
	if !found {
		return models.Member{}, userID, httperr.NotFound("Project not found")
	}
	return m, userID, nil
}

// RequireEdit resolves membership and checks the edit capability.
func RequireEdit(p models.Project, r *http.Request) (models.Member, primitive.ObjectID, error) {
	m, uid, err := Membership(p, r)
	if err != nil {
		return m, uid, err
	}
	if !m.Permissions.CanEdit && p.OwnerID != uid {
		return m, uid, httperr.Forbidden("You do not have permission to edit this project")
	}
	return m, uid, nil
}

// RequireDelete resolves membership and checks the delete capability.
func RequireDelete(p models.Project, r *http.Request) (models.Member, primitive.ObjectID, error) {
	m, uid, err := Membership(p, r)
	if err != nil {
		return m, uid, err
	}
	if !m.Permissions.CanDelete && p.OwnerID != uid {
		return m, uid, httperr.Forbidden("You do not have permission to delete in this project")
	}
	return m, uid, nil
}

// RequireInvite resolves membership and checks the invite capability.
func RequireInvite(p models.Project, r *http.Request) (models.Member, primitive.ObjectID, error) {
	m, uid, err := Membership(p, r)
	if err != nil {
		return m, uid, err
	}
	if !m.Permissions.CanInvite && p.OwnerID != uid {
		return m, uid, httperr.Forbidden("You do not have permission to manage invites for this project")
	}
	return m, uid, nil
}

// RequireOwner resolves membership and checks for project ownership.
func RequireOwner(p models.Project, r *http.Request) (models.Member, primitive.ObjectID, error) {
	m, uid, err := Membership(p, r)
	if err != nil {
		return m, uid, err
	}
	if p.OwnerID != uid {
		return m, uid, httperr.Forbidden("Only the project owner can do this")
	}
	return m, uid, nil
}
