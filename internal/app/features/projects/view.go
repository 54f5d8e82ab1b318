// internal/app/features/projects/view.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// loadProject parses the {id} URL param and fetches the project.
func (h *Handler) loadProject(ctx context.Context, r *http.Request) (models.Project, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Project{}, httperr.NotFound("Project not found")
	}
	p, err := projectstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == projectstore.ErrNotFound {
			return models.Project{}, httperr.NotFound("Project not found")
		}
		return models.Project{}, httperr.Internal("Failed to load project", err)
	}
	return p, nil
}

// ServeView returns one project. Invite codes are stripped for members
// without the invite capability.
// GET /projects/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	m, uid, err := projectpolicy.Membership(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	if !m.Permissions.CanInvite && p.OwnerID != uid {
		p.Invites = nil
	}
	respond.JSON(w, http.StatusOK, p)
}

// publishProjectEvent fans a project-room event out to connected peers.
// Delivery is best effort; a failed or empty broadcast never affects the
// REST response.
func (h *Handler) publishProjectEvent(eventType string, p models.Project, actorID primitive.ObjectID, payload map[string]any) {
	if h.Hub == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["project_id"] = p.ID.Hex()
	h.Hub.PublishExcept(
		realtime.ProjectRoom(p.ID.Hex()),
		realtime.Event{Type: eventType, Payload: payload},
		actorID.Hex(),
	)
	h.Log.Debug("published project event",
		zap.String("type", eventType),
		zap.String("project_id", p.ID.Hex()))
}
