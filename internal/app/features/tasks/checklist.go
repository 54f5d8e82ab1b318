// internal/app/features/tasks/checklist.go
package tasks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const maxChecklistItems = 100

type checklistInput struct {
	Items []checklistItemInput `json:"items"`
}

type checklistItemInput struct {
	ID   string `json:"id"` // blank for new items
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// checklistEqual reports whether the stored list already matches.
func checklistEqual(a, b []models.ChecklistItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HandleChecklist replaces the task's checklist. Items keep their ids
// across updates so done-state survives reordering; new items get fresh
// ones. A replacement identical to the stored list appends no history.
// PUT /tasks/{id}/checklist
func (h *Handler) HandleChecklist(w http.ResponseWriter, r *http.Request) {
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

	var in checklistInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if len(in.Items) > maxChecklistItems {
		httperr.Write(w, h.Log, httperr.Validation(fmt.Sprintf("Checklist is limited to %d items", maxChecklistItems)))
		return
	}

	items := make([]models.ChecklistItem, 0, len(in.Items))
	for _, it := range in.Items {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			httperr.Write(w, h.Log, httperr.Validation("Checklist items cannot be empty"))
			return
		}
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, models.ChecklistItem{ID: id, Text: text, Done: it.Done})
	}

	if checklistEqual(t.Checklist, items) {
		respond.JSON(w, http.StatusOK, t)
		return
	}

	done := 0
	for _, it := range items {
		if it.Done {
			done++
		}
	}
	entries := []models.HistoryEntry{entry(uid, models.ActionChecklistUpdated,
		fmt.Sprintf("%d/%d items done", done, len(items)), "", "", time.Now().UTC())}

	store := taskstore.New(h.DB)
	if err := store.Apply(ctx, t.ID, bson.M{"checklist": items}, entries); err != nil {
		if err == taskstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to update checklist", err))
		return
	}
	updated, err := store.GetByID(ctx, t.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load task", err))
		return
	}

	h.publishTaskEvent(realtime.EventTaskUpdated, updated, uid, map[string]any{
		"checklist_done":  done,
		"checklist_total": len(items),
	})
	respond.JSON(w, http.StatusOK, updated)
}
