// internal/app/features/invites/accept.go
package invites

import (
	"context"
	"net/http"
	"time"

	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// acceptRetries bounds the optimistic retry loop when concurrent accepts
// race on the same invite.
const acceptRetries = 3

// invitePreview is what a prospective member sees before joining.
type invitePreview struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Description string    `json:"description,omitempty"`
	Role        string    `json:"role"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	MemberCount int       `json:"member_count"`
}

// loadByCode fetches the project carrying the invite. Expired, revoked,
// and exhausted invites are indistinguishable from missing ones.
func (h *Handler) loadByCode(ctx context.Context, r *http.Request) (models.Project, models.Invite, error) {
	code := chi.URLParam(r, "code")
	p, err := projectstore.New(h.DB).GetByInviteCode(ctx, code)
	if err != nil {
		if err == projectstore.ErrNotFound {
			return models.Project{}, models.Invite{}, httperr.NotFound("Invite not found")
		}
		return models.Project{}, models.Invite{}, httperr.Internal("Failed to load invite", err)
	}
	inv, ok := p.InviteByCode(code)
	if !ok || !inv.IsValid(time.Now().UTC()) {
		return models.Project{}, models.Invite{}, httperr.NotFound("Invite not found")
	}
	return p, inv, nil
}

// ServePreview shows the project behind an invite code.
// GET /invites/{code}
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, inv, err := h.loadByCode(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	out := invitePreview{
		ProjectID:   p.ID.Hex(),
		ProjectName: p.Name,
		Description: p.Description,
		Role:        inv.Role,
		ExpiresAt:   inv.ExpiresAt,
		MemberCount: len(p.Members),
	}
	if u, err := userstore.New(h.DB).GetByID(ctx, inv.CreatedBy); err == nil {
		out.InvitedBy = u.FullName
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleAccept joins the caller to the project behind the invite. The
// membership push and the invite's used-count increment land in one
// conditional write, so the last slot of a limited invite goes to
// exactly one caller.
// POST /invites/{code}/accept
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := projectstore.New(h.DB)
	var p models.Project
	for attempt := 0; ; attempt++ {
		var inv models.Invite
		var err error
		p, inv, err = h.loadByCode(ctx, r)
		if err != nil {
			httperr.Write(w, h.Log, err)
			return
		}
		if _, member := p.MemberFor(userID); member {
			httperr.Write(w, h.Log, httperr.Validation("You are already a member of this project"))
			return
		}

		invitedBy := inv.CreatedBy
		m := models.Member{
			UserID:      userID,
			Role:        inv.Role,
			Permissions: authz.PermissionsFor(inv.Role),
			JoinedAt:    time.Now().UTC(),
			InvitedBy:   &invitedBy,
		}
		deactivate := inv.MaxUses != nil && inv.UsedCount+1 >= *inv.MaxUses

		err = store.ConsumeInvite(ctx, p.ID, inv.Code, inv.UsedCount, m, deactivate)
		if err == nil {
			break
		}
		if err != projectstore.ErrStaleWrite {
			httperr.Write(w, h.Log, httperr.Internal("Failed to accept invite", err))
			return
		}
		if attempt+1 >= acceptRetries {
			// Repeated guard failures: the invite was likely exhausted or
			// revoked between our read and write.
			httperr.Write(w, h.Log, httperr.NotFound("Invite not found"))
			return
		}
	}

	joined, err := store.GetByID(ctx, p.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load project", err))
		return
	}
	joined.Invites = nil

	h.Log.Info("invite accepted",
		zap.String("project_id", joined.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	if h.Hub != nil {
		h.Hub.PublishExcept(
			realtime.ProjectRoom(joined.ID.Hex()),
			realtime.Event{Type: realtime.EventMemberJoined, Payload: map[string]any{
				"project_id": joined.ID.Hex(),
				"user_id":    userID.Hex(),
			}},
			userID.Hex(),
		)
	}
	respond.JSON(w, http.StatusOK, joined)
}
