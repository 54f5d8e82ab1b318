// internal/app/features/invites/public.go
package invites

import (
	"context"
	"net/http"
	"time"

	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// publicPreview is the anonymous-safe shape of a public project.
type publicPreview struct {
	ProjectID   string   `json:"project_id"`
	ProjectName string   `json:"project_name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	MemberCount int      `json:"member_count"`
}

// loadPublic fetches a project by its public link code. Projects that
// turned private keep their code but stop resolving here.
func (h *Handler) loadPublic(ctx context.Context, r *http.Request) (models.Project, error) {
	code := chi.URLParam(r, "code")
	p, err := projectstore.New(h.DB).GetByPublicCode(ctx, code)
	if err != nil {
		if err == projectstore.ErrNotFound {
			return models.Project{}, httperr.NotFound("Project not found")
		}
		return models.Project{}, httperr.Internal("Failed to load project", err)
	}
	if !p.Settings.IsPublic {
		return models.Project{}, httperr.NotFound("Project not found")
	}
	return p, nil
}

// ServePublicPreview shows a public project to anyone holding its link.
// GET /public-invites/{code}
func (h *Handler) ServePublicPreview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.loadPublic(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, publicPreview{
		ProjectID:   p.ID.Hex(),
		ProjectName: p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		MemberCount: len(p.Members),
	})
}

// HandlePublicAccept joins the caller to a public project as a member.
// POST /public-invites/{code}/accept
func (h *Handler) HandlePublicAccept(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m := models.Member{
		UserID:      userID,
		Role:        models.RoleMember,
		Permissions: authz.PermissionsFor(models.RoleMember),
		JoinedAt:    time.Now().UTC(),
	}

	p, err := projectstore.New(h.DB).JoinViaPublicLink(ctx, chi.URLParam(r, "code"), m)
	if err != nil {
		switch err {
		case projectstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
		case projectstore.ErrAlreadyMember:
			httperr.Write(w, h.Log, httperr.Validation("You are already a member of this project"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to join project", err))
		}
		return
	}
	p.Invites = nil

	h.Log.Info("public link join",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	if h.Hub != nil {
		h.Hub.PublishExcept(
			realtime.ProjectRoom(p.ID.Hex()),
			realtime.Event{Type: realtime.EventMemberJoined, Payload: map[string]any{
				"project_id": p.ID.Hex(),
				"user_id":    userID.Hex(),
			}},
			userID.Hex(),
		)
	}
	respond.JSON(w, http.StatusOK, p)
}
