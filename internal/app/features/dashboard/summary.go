// internal/app/features/dashboard/summary.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary is the dashboard payload: project and task counts across all
// of the user's projects plus their personal assignment load.
type Summary struct {
	Projects struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Archived int `json:"archived"`
		Owned    int `json:"owned"`
	} `json:"projects"`

	Tasks struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"by_status"`
		Overdue  int64            `json:"overdue"`
	} `json:"tasks"`

	Mine struct {
		Assigned    int `json:"assigned"`
		DueThisWeek int `json:"due_this_week"`
	} `json:"mine"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ServeSummary returns the caller's dashboard numbers, cached for a
// short window per user.
// GET /dashboard/summary
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	if s, hit := h.cache.Get(userID.Hex()); hit {
		respond.JSON(w, http.StatusOK, s)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	s, err := h.build(ctx, userID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to build dashboard", err))
		return
	}

	h.cache.Set(userID.Hex(), s)
	respond.JSON(w, http.StatusOK, s)
}

func (h *Handler) build(ctx context.Context, userID primitive.ObjectID) (Summary, error) {
	var s Summary
	s.GeneratedAt = time.Now().UTC()
	s.Tasks.ByStatus = map[string]int64{}

	projects, err := projectstore.New(h.DB).ListForUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(projects))
	terminal := make(map[string]struct{})
	for _, p := range projects {
		ids = append(ids, p.ID)
		s.Projects.Total++
		switch p.Status {
		case models.ProjectActive:
			s.Projects.Active++
		case models.ProjectArchived:
			s.Projects.Archived++
		}
		if p.OwnerID == userID {
			s.Projects.Owned++
		}
		if n := len(p.Settings.Columns); n > 0 {
			terminal[p.Settings.Columns[n-1]] = struct{}{}
		}
	}

	ts := taskstore.New(h.DB)
	if len(ids) > 0 {
		counts, err := ts.CountByStatus(ctx, ids)
		if err != nil {
			return Summary{}, err
		}
		for _, c := range counts {
			s.Tasks.ByStatus[c.Status] = c.Count
			s.Tasks.Total += c.Count
		}

		terminalStatuses := make([]string, 0, len(terminal))
		for st := range terminal {
			terminalStatuses = append(terminalStatuses, st)
		}
		overdue, err := ts.CountOverdue(ctx, ids, terminalStatuses, s.GeneratedAt)
		if err != nil {
			return Summary{}, err
		}
		s.Tasks.Overdue = overdue
	}

	mine, err := ts.ListByAssignee(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	weekOut := s.GeneratedAt.AddDate(0, 0, 7)
	for _, t := range mine {
		s.Mine.Assigned++
		if t.DueDate != nil && t.DueDate.After(s.GeneratedAt) && t.DueDate.Before(weekOut) {
			s.Mine.DueThisWeek++
		}
	}

	return s, nil
}
