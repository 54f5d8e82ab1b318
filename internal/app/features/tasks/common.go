// internal/app/features/tasks/common.go
//
// Shared loading and broadcast helpers for the Tasks feature. Every
// task operation resolves the task, then its project, then the caller's
// membership; non-members get the same "not found" as a missing task.
package tasks

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// loadTask parses the {id} URL param and fetches the task.
func (h *Handler) loadTask(ctx context.Context, r *http.Request) (models.Task, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Task{}, httperr.NotFound("Task not found")
	}
	t, err := taskstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == taskstore.ErrNotFound {
			return models.Task{}, httperr.NotFound("Task not found")
		}
		return models.Task{}, httperr.Internal("Failed to load task", err)
	}
	return t, nil
}

// loadTaskScope fetches the task, its project, and the caller's
// membership in one go.
func (h *Handler) loadTaskScope(ctx context.Context, r *http.Request) (models.Task, models.Project, models.Member, primitive.ObjectID, error) {
	t, err := h.loadTask(ctx, r)
	if err != nil {
		return models.Task{}, models.Project{}, models.Member{}, primitive.NilObjectID, err
	}
	p, err := projectstore.New(h.DB).GetByID(ctx, t.ProjectID)
	if err != nil {
		if err == projectstore.ErrNotFound {
			return models.Task{}, models.Project{}, models.Member{}, primitive.NilObjectID, httperr.NotFound("Task not found")
		}
		return models.Task{}, models.Project{}, models.Member{}, primitive.NilObjectID, httperr.Internal("Failed to load project", err)
	}
	m, uid, err := projectpolicy.Membership(p, r)
	if err != nil {
		var he *httperr.Error
		if errors.As(err, &he) && he.Status == http.StatusNotFound {
			// Hide the project's existence from non-members.
			return models.Task{}, models.Project{}, models.Member{}, uid, httperr.NotFound("Task not found")
		}
		return models.Task{}, models.Project{}, models.Member{}, uid, err
	}
	return t, p, m, uid, nil
}

// publishTaskEvent broadcasts to the task's project room, skipping the
// actor's own latest socket. Delivery is best effort.
func (h *Handler) publishTaskEvent(eventType string, t models.Task, actorID primitive.ObjectID, payload map[string]any) {
	if h.Hub == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["task_id"] = t.ID.Hex()
	payload["project_id"] = t.ProjectID.Hex()

	ev := realtime.Event{Type: eventType, Payload: payload}
	h.Hub.PublishExcept(realtime.ProjectRoom(t.ProjectID.Hex()), ev, actorID.Hex())
	h.Hub.PublishExcept(realtime.TaskRoom(t.ID.Hex()), ev, actorID.Hex())

	h.Log.Debug("published task event",
		zap.String("type", eventType),
		zap.String("task_id", t.ID.Hex()))
}
