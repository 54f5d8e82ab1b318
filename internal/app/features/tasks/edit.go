// internal/app/features/tasks/edit.go
package tasks

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// editTaskInput uses pointers throughout so an omitted field and an
// explicit clear are distinguishable.
type editTaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"` // empty string unassigns
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	Position    *int       `json:"position"`

	EstimatedMinutes *int `json:"estimated_minutes"`
	ActualMinutes    *int `json:"actual_minutes"`
}

// entry builds one history record for a changed field.
func entry(actorID primitive.ObjectID, action, detail, oldV, newV string, at time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		OldValue:  oldV,
		NewValue:  newV,
		CreatedAt: at,
	}
}

// HandleEdit updates task fields. Each changed field lands exactly one
// history entry; a write that changes nothing appends none and leaves
// the version untouched.
// PUT /tasks/{id}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
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

	var in editTaskInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}

	now := time.Now().UTC()
	set := bson.M{}
	var entries []models.HistoryEntry

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			httperr.Write(w, h.Log, httperr.Validation("Task title cannot be empty"))
			return
		}
		if len(title) > 300 {
			httperr.Write(w, h.Log, httperr.Validation("Task title must be at most 300 characters"))
			return
		}
		if title != t.Title {
			entries = append(entries, entry(uid, models.ActionUpdated, "title changed", t.Title, title, now))
			set["title"] = title
			set["title_ci"] = text.Fold(title)
		}
	}
	if in.Description != nil {
		desc := h.sanitize.Sanitize(*in.Description)
		if desc != t.Description {
			entries = append(entries, entry(uid, models.ActionUpdated, "description changed", "", "", now))
			set["description"] = desc
		}
	}
	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			httperr.Write(w, h.Log, httperr.Validation(`Priority must be "low", "medium", "high", or "critical"`))
			return
		}
		if *in.Priority != t.Priority {
			entries = append(entries, entry(uid, models.ActionUpdated, "priority changed", t.Priority, *in.Priority, now))
			set["priority"] = *in.Priority
		}
	}
	if in.AssigneeID != nil {
		oldHex := ""
		if t.AssigneeID != nil {
			oldHex = t.AssigneeID.Hex()
		}
		if *in.AssigneeID == "" {
			if t.AssigneeID != nil {
				entries = append(entries, entry(uid, models.ActionAssigned, "unassigned", oldHex, "", now))
				set["assignee_id"] = nil
			}
		} else {
			aid, err := primitive.ObjectIDFromHex(*in.AssigneeID)
			if err != nil {
				httperr.Write(w, h.Log, httperr.Validation("assignee_id must be a valid id"))
				return
			}
			if _, member := p.MemberFor(aid); !member {
				httperr.Write(w, h.Log, httperr.Validation("Assignee must be a project member"))
				return
			}
			if t.AssigneeID == nil || *t.AssigneeID != aid {
				entries = append(entries, entry(uid, models.ActionAssigned, "assignee changed", oldHex, aid.Hex(), now))
				set["assignee_id"] = aid
			}
		}
	}
	if in.ClearDue {
		if t.DueDate != nil {
			entries = append(entries, entry(uid, models.ActionUpdated, "due date cleared", t.DueDate.Format(time.RFC3339), "", now))
			set["due_date"] = nil
		}
	} else if in.DueDate != nil {
		if t.DueDate == nil || !t.DueDate.Equal(*in.DueDate) {
			oldV := ""
			if t.DueDate != nil {
				oldV = t.DueDate.Format(time.RFC3339)
			}
			entries = append(entries, entry(uid, models.ActionUpdated, "due date changed", oldV, in.DueDate.Format(time.RFC3339), now))
			set["due_date"] = *in.DueDate
		}
	}
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes != t.EstimatedMinutes {
		entries = append(entries, entry(uid, models.ActionUpdated, "estimate changed",
			strconv.Itoa(t.EstimatedMinutes), strconv.Itoa(*in.EstimatedMinutes), now))
		set["estimated_minutes"] = *in.EstimatedMinutes
	}
	if in.ActualMinutes != nil && *in.ActualMinutes != t.ActualMinutes {
		entries = append(entries, entry(uid, models.ActionUpdated, "time logged",
			strconv.Itoa(t.ActualMinutes), strconv.Itoa(*in.ActualMinutes), now))
		set["actual_minutes"] = *in.ActualMinutes
	}
	if in.Position != nil && *in.Position != t.Position {
		// Reordering inside a column is not audit-worthy; no history entry.
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
		httperr.Write(w, h.Log, httperr.Internal("Failed to update task", err))
		return
	}
	updated, err := store.GetByID(ctx, t.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load task", err))
		return
	}

	h.publishTaskEvent(realtime.EventTaskUpdated, updated, uid, nil)
	respond.JSON(w, http.StatusOK, updated)
}
