// internal/app/features/tasks/status.go
package tasks

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

type statusInput struct {
	Status   string `json:"status"`
	Position *int   `json:"position"`
}

// HandleStatus moves a task between board columns. The status string
// must match one of the project's columns; the column index is derived
// from it, never taken from the client.
// PATCH /tasks/{id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, p, _, uid, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if _, _, err := projectpolicy.RequireEdit(p, r); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var in statusInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	col, ok := columnIndex(p, in.Status)
	if !ok {
		httperr.Write(w, h.Log, httperr.Validation("Status must be one of the project's columns"))
		return
	}

	set := bson.M{}
	var entries []models.HistoryEntry
	if in.Status != t.Status {
		set["status"] = in.Status
		set["column_index"] = col
		entries = append(entries, entry(uid, models.ActionStatusChanged, "moved", t.Status, in.Status, time.Now().UTC()))
	}
	if in.Position != nil && *in.Position != t.Position {
		set["position"] = *in.Position
	}
	if len(set) == 0 {
		respond.JSON(w, http.StatusOK, t)
		return
	}

	store := taskstore.New(h.DB)
	if err := store.Apply(ctx, t.ID, set, entries); err != nil {
		if err == taskstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to move task", err))
		return
	}
	updated, err := store.GetByID(ctx, t.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load task", err))
		return
	}

	h.publishTaskEvent(realtime.EventTaskUpdated, updated, uid, map[string]any{
		"status":       updated.Status,
		"column_index": updated.ColumnIndex,
	})
	respond.JSON(w, http.StatusOK, updated)
}
