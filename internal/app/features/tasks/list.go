// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// taskSummary is the list-view shape: comments and history are elided,
// only their counts travel.
type taskSummary struct {
	models.Task
	Comments     []models.Comment      `json:"comments,omitempty"`
	History      []models.HistoryEntry `json:"history,omitempty"`
	CommentCount int                   `json:"comment_count"`
}

func summarize(list []models.Task) []taskSummary {
	out := make([]taskSummary, 0, len(list))
	for _, t := range list {
		out = append(out, taskSummary{
			Task:         t,
			Comments:     nil,
			History:      nil,
			CommentCount: len(t.Comments),
		})
	}
	return out
}

// ServeList returns a project's tasks in board order.
// GET /tasks?project_id={id}
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projectID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("project_id"))
	if err != nil {
		httperr.Write(w, h.Log, httperr.Validation("project_id query parameter is required"))
		return
	}
	p, err := projectstore.New(h.DB).GetByID(ctx, projectID)
	if err != nil {
		if err == projectstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to load project", err))
		return
	}
	if _, _, err := projectpolicy.Membership(p, r); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	list, err := taskstore.New(h.DB).ListByProject(ctx, p.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to list tasks", err))
		return
	}
	respond.JSON(w, http.StatusOK, summarize(list))
}

// ServeMine returns the caller's assigned tasks across all projects,
// soonest due first.
// GET /tasks/mine
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := taskstore.New(h.DB).ListByAssignee(ctx, userID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to list tasks", err))
		return
	}
	respond.JSON(w, http.StatusOK, summarize(list))
}

// ServeView returns one task with its comments and history.
// GET /tasks/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, _, _, _, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// ServeHistory returns a task's audit trail, oldest first.
// GET /tasks/{id}/history
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, _, _, _, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	if t.History == nil {
		t.History = []models.HistoryEntry{}
	}
	respond.JSON(w, http.StatusOK, t.History)
}
