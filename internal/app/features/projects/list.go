// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
)

// projectSummary is the list-view shape: invites are omitted so members
// without the invite capability never see codes.
type projectSummary struct {
	models.Project
	Invites     []models.Invite `json:"invites,omitempty"`
	MemberCount int             `json:"member_count"`
}

// ServeList returns every project the caller belongs to, newest first.
// GET /projects
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := projectstore.New(h.DB).ListForUser(ctx, userID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to list projects", err))
		return
	}

	out := make([]projectSummary, 0, len(list))
	for _, p := range list {
		out = append(out, projectSummary{
			Project:     p,
			Invites:     nil,
			MemberCount: len(p.Members),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
