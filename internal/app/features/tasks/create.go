// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createTaskInput struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	Position    int        `json:"position"`

	EstimatedMinutes int `json:"estimated_minutes"`
}

// columnIndex maps a status to its position on the project's board.
func columnIndex(p models.Project, status string) (int, bool) {
	for i, c := range p.Settings.Columns {
		if c == status {
			return i, true
		}
	}
	return 0, false
}

// HandleCreate adds a task to a project board. Status must be one of
// the project's columns and defaults to the first.
// POST /tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in createTaskInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}

	projectID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Validation("project_id must be a valid id"))
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
	_, uid, err := projectpolicy.RequireEdit(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		httperr.Write(w, h.Log, httperr.Validation("Task title is required"))
		return
	}
	if len(in.Title) > 300 {
		httperr.Write(w, h.Log, httperr.Validation("Task title must be at most 300 characters"))
		return
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		httperr.Write(w, h.Log, httperr.Validation(`Priority must be "low", "medium", "high", or "critical"`))
		return
	}

	if in.Status == "" {
		in.Status = p.Settings.Columns[0]
	}
	col, ok := columnIndex(p, in.Status)
	if !ok {
		httperr.Write(w, h.Log, httperr.Validation("Status must be one of the project's columns"))
		return
	}

	var assignee *primitive.ObjectID
	if in.AssigneeID != "" {
		aid, err := primitive.ObjectIDFromHex(in.AssigneeID)
		if err != nil {
			httperr.Write(w, h.Log, httperr.Validation("assignee_id must be a valid id"))
			return
		}
		if _, member := p.MemberFor(aid); !member {
			httperr.Write(w, h.Log, httperr.Validation("Assignee must be a project member"))
			return
		}
		assignee = &aid
	}

	t := models.Task{
		ProjectID:        p.ID,
		CreatedBy:        uid,
		AssigneeID:       assignee,
		Title:            in.Title,
		Description:      h.sanitize.Sanitize(in.Description),
		Status:           in.Status,
		Priority:         in.Priority,
		DueDate:          in.DueDate,
		EstimatedMinutes: in.EstimatedMinutes,
		ColumnIndex:      col,
		Position:         in.Position,
	}

	created, err := taskstore.New(h.DB).Create(ctx, t)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to create task", err))
		return
	}

	h.publishTaskEvent(realtime.EventTaskCreated, created, uid, map[string]any{
		"title":  created.Title,
		"status": created.Status,
	})
	respond.JSON(w, http.StatusCreated, created)
}
