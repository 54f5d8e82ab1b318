// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
)

// HandleDelete removes a task. Allowed for the task's creator and for
// members holding the delete capability.
// DELETE /tasks/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, p, _, uid, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if t.CreatedBy != uid {
		if _, _, err := projectpolicy.RequireDelete(p, r); err != nil {
			httperr.Write(w, h.Log, err)
			return
		}
	}

	if err := taskstore.New(h.DB).Delete(ctx, t.ID); err != nil {
		if err == taskstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to delete task", err))
		return
	}

	h.publishTaskEvent(realtime.EventTaskDeleted, t, uid, nil)
	respond.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
