// internal/app/features/projects/members.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memberDetail joins the membership record with user display fields.
type memberDetail struct {
	UserID      primitive.ObjectID `json:"user_id"`
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	AvatarURL   string             `json:"avatar_url,omitempty"`
	Role        string             `json:"role"`
	Permissions models.Permissions `json:"permissions"`
	JoinedAt    string             `json:"joined_at"`
}

// ServeMembers lists the project's members with their user details.
// GET /projects/{id}/members
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if _, _, err := projectpolicy.Membership(p, r); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	users, err := userstore.New(h.DB).ListByIDs(ctx, ids)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load members", err))
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]memberDetail, 0, len(p.Members))
	for _, m := range p.Members {
		u := byID[m.UserID]
		out = append(out, memberDetail{
			UserID:      m.UserID,
			FullName:    u.FullName,
			Email:       u.Email,
			AvatarURL:   u.AvatarURL,
			Role:        m.Role,
			Permissions: m.Permissions,
			JoinedAt:    m.JoinedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

// memberParam parses the {userID} URL param.
func memberParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		return primitive.NilObjectID, httperr.NotFound("Member not found")
	}
	return id, nil
}

type changeRoleInput struct {
	Role string `json:"role"`
}

// HandleChangeRole assigns a member a new role and re-derives their
// capability snapshot from it. The owner role cannot be granted or
// revoked here; that goes through ownership transfer.
// PUT /projects/{id}/members/{userID}
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	_, uid, err := projectpolicy.RequireOwner(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	targetID, err := memberParam(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var in changeRoleInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if !models.ValidRole(in.Role) {
		httperr.Write(w, h.Log, httperr.Validation(`Role must be "admin", "member", or "viewer"`))
		return
	}
	if in.Role == models.RoleOwner {
		httperr.Write(w, h.Log, httperr.Validation("Ownership is assigned via transfer, not role change"))
		return
	}
	if m, ok := p.MemberFor(targetID); ok && m.Role == models.RoleOwner {
		httperr.Write(w, h.Log, httperr.Forbidden("The owner's role cannot be changed"))
		return
	}

	err = projectstore.New(h.DB).UpdateMemberRole(ctx, p.ID, targetID, in.Role, authz.PermissionsFor(in.Role))
	if err != nil {
		switch err {
		case projectstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
		case projectstore.ErrMemberNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Member not found"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to change role", err))
		}
		return
	}

	h.publishProjectEvent(realtime.EventProjectUpdated, p, uid, map[string]any{
		"member_id": targetID.Hex(),
		"role":      in.Role,
	})
	respond.JSON(w, http.StatusOK, map[string]any{
		"user_id":     targetID.Hex(),
		"role":        in.Role,
		"permissions": authz.PermissionsFor(in.Role),
	})
}

// HandleRemoveMember removes a member, or lets a member leave. Removing
// somebody else takes the invite capability. Owners cannot be removed
// or leave; ownership must be transferred first.
// DELETE /projects/{id}/members/{userID}
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	_, uid, err := projectpolicy.Membership(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	targetID, err := memberParam(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	// Self-removal (leaving) is always allowed for non-owners; removing
	// somebody else is gated on the invite capability.
	if targetID != uid {
		if _, _, err := projectpolicy.RequireInvite(p, r); err != nil {
			httperr.Write(w, h.Log, err)
			return
		}
	}

	if err := projectstore.New(h.DB).RemoveMember(ctx, p.ID, targetID); err != nil {
		switch err {
		case projectstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
		case projectstore.ErrMemberNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Member not found"))
		case projectstore.ErrOwnerImmutable:
			httperr.Write(w, h.Log, httperr.Forbidden("The owner cannot be removed; transfer ownership first"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to remove member", err))
		}
		return
	}

	h.publishProjectEvent(realtime.EventMemberLeft, p, uid, map[string]any{
		"user_id": targetID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]any{"removed": targetID.Hex()})
}

type transferInput struct {
	NewOwnerID string `json:"new_owner_id"`
}

// transferRetries bounds the optimistic retry loop on version conflicts.
const transferRetries = 3

// HandleTransferOwnership hands the owner role to another member. The
// previous owner stays on the project as an admin.
// POST /projects/{id}/transfer-ownership
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in transferInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	newOwnerID, err := primitive.ObjectIDFromHex(in.NewOwnerID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Validation("new_owner_id must be a valid id"))
		return
	}

	store := projectstore.New(h.DB)
	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var uid primitive.ObjectID
	for attempt := 0; ; attempt++ {
		_, uid, err = projectpolicy.RequireOwner(p, r)
		if err != nil {
			httperr.Write(w, h.Log, err)
			return
		}
		if newOwnerID == uid {
			httperr.Write(w, h.Log, httperr.Validation("You already own this project"))
			return
		}
		if _, ok := p.MemberFor(newOwnerID); !ok {
			httperr.Write(w, h.Log, httperr.NotFound("Member not found"))
			return
		}

		err = store.TransferOwnership(ctx, p.ID, p.Version, uid, newOwnerID)
		if err == nil {
			break
		}
		if err != projectstore.ErrStaleWrite || attempt+1 >= transferRetries {
			if err == projectstore.ErrStaleWrite {
				httperr.Write(w, h.Log, httperr.Conflict("Project changed concurrently; retry the transfer"))
				return
			}
			httperr.Write(w, h.Log, httperr.Internal("Failed to transfer ownership", err))
			return
		}
		// Re-read and re-check; ownership may have moved under us.
		p, err = store.GetByID(ctx, p.ID)
		if err != nil {
			if err == projectstore.ErrNotFound {
				httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
				return
			}
			httperr.Write(w, h.Log, httperr.Internal("Failed to load project", err))
			return
		}
	}

	h.Log.Info("ownership transferred",
		zap.String("project_id", p.ID.Hex()),
		zap.String("from", uid.Hex()),
		zap.String("to", newOwnerID.Hex()))

	h.publishProjectEvent(realtime.EventProjectUpdated, p, uid, map[string]any{
		"owner_id": newOwnerID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]any{"owner_id": newOwnerID.Hex()})
}
