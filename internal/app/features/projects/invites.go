// internal/app/features/projects/invites.go
//
// Project-scoped invite management. Accepting an invite lives in the
// invites feature; this file covers creation, listing, and revocation,
// all gated on the invite capability.
package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/invitecode"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

const (
	defaultInviteDays = 7
	maxInviteDays     = 90
)

// generateError maps code-generation failures onto the API taxonomy.
// An exhausted retry budget is a conflict with the project's existing
// codes, not a server fault.
func generateError(err error) error {
	if errors.Is(err, invitecode.ErrRetryBudget) {
		return httperr.Conflict("Could not find an unused invite code; retry the request")
	}
	return httperr.Internal("Failed to generate invite code", err)
}

type createInviteInput struct {
	Role          string `json:"role"`
	ExpiresInDays int    `json:"expires_in_days"`
	MaxUses       *int   `json:"max_uses"`
	Note          string `json:"note"`
}

// HandleCreateInvite mints a new invite code for the project.
// POST /projects/{id}/invites
func (h *Handler) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	_, uid, err := projectpolicy.RequireInvite(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var in createInviteInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if !models.ValidRole(in.Role) || in.Role == models.RoleOwner {
		httperr.Write(w, h.Log, httperr.Validation(`Invite role must be "admin", "member", or "viewer"`))
		return
	}
	if in.ExpiresInDays <= 0 {
		in.ExpiresInDays = defaultInviteDays
	}
	if in.ExpiresInDays > maxInviteDays {
		httperr.Write(w, h.Log, httperr.Validation("Invites may live at most 90 days"))
		return
	}
	if in.MaxUses != nil && *in.MaxUses <= 0 {
		httperr.Write(w, h.Log, httperr.Validation("max_uses must be positive when set"))
		return
	}

	code, err := invitecode.Generate(func(c string) bool {
		_, exists := p.InviteByCode(c)
		return exists
	})
	if err != nil {
		httperr.Write(w, h.Log, generateError(err))
		return
	}

	now := time.Now().UTC()
	inv := models.Invite{
		Code:      code,
		CreatedBy: uid,
		Role:      in.Role,
		ExpiresAt: now.AddDate(0, 0, in.ExpiresInDays),
		MaxUses:   in.MaxUses,
		UsedCount: 0,
		IsActive:  true,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: now,
	}
	if err := projectstore.New(h.DB).AddInvite(ctx, p.ID, inv); err != nil {
		if err == projectstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to create invite", err))
		return
	}

	respond.JSON(w, http.StatusCreated, inv)
}

// ServeInvites lists the project's invites, newest first.
// GET /projects/{id}/invites
func (h *Handler) ServeInvites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if _, _, err := projectpolicy.RequireInvite(p, r); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	out := make([]models.Invite, len(p.Invites))
	copy(out, p.Invites)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleDeactivateInvite revokes an invite. The record stays on the
// project for audit; only its active flag flips.
// DELETE /projects/{id}/invites/{code}
func (h *Handler) HandleDeactivateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if _, _, err := projectpolicy.RequireInvite(p, r); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	code := chi.URLParam(r, "code")
	if err := projectstore.New(h.DB).DeactivateInvite(ctx, p.ID, code); err != nil {
		switch err {
		case projectstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
		case projectstore.ErrInviteNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Invite not found"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to deactivate invite", err))
		}
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"code": code, "is_active": false})
}
