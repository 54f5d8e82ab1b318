// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a project and all of its tasks. Owner only.
// DELETE /projects/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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

	// Tasks go first so a crash between the two deletes leaves the
	// project visible rather than orphaning its tasks.
	removed, err := taskstore.New(h.DB).DeleteByProject(ctx, p.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to delete project tasks", err))
		return
	}
	if err := projectstore.New(h.DB).Delete(ctx, p.ID); err != nil {
		if err == projectstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to delete project", err))
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", p.ID.Hex()),
		zap.String("actor_id", uid.Hex()),
		zap.Int64("tasks_removed", removed))

	h.publishProjectEvent(realtime.EventProjectDeleted, p, uid, nil)
	respond.JSON(w, http.StatusOK, map[string]any{
		"deleted":       true,
		"tasks_removed": removed,
	})
}
