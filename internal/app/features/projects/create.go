// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"
	"strings"
	"time"

	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/invitecode"
	"github.com/dalemusser/taskflow/internal/app/system/normalize"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
)

type createProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Template    string   `json:"template"`
	Columns     []string `json:"columns"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
}

// HandleCreate creates a project. The caller becomes its owner and sole
// initial member.
// POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	var in createProjectInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		httperr.Write(w, h.Log, httperr.Validation("Project name is required"))
		return
	}
	if len(in.Name) > 200 {
		httperr.Write(w, h.Log, httperr.Validation("Project name must be at most 200 characters"))
		return
	}

	if in.Template == "" {
		in.Template = "kanban"
	}
	columns := in.Columns
	if len(columns) == 0 {
		columns = models.TemplateColumns(in.Template)
	}

	settings := models.ProjectSettings{
		Template: in.Template,
		Columns:  columns,
		IsPublic: in.IsPublic,
	}
	if in.IsPublic {
		code, err := invitecode.GeneratePublic()
		if err != nil {
			httperr.Write(w, h.Log, httperr.Internal("Failed to create project", err))
			return
		}
		settings.PublicInviteCode = code
	}

	now := time.Now().UTC()
	p := models.Project{
		Name:        in.Name,
		Description: h.sanitize.Sanitize(in.Description),
		OwnerID:     userID,
		Members: []models.Member{{
			UserID:      userID,
			Role:        models.RoleOwner,
			Permissions: authz.PermissionsFor(models.RoleOwner),
			JoinedAt:    now,
		}},
		Invites:  []models.Invite{},
		Settings: settings,
		Tags:     normalize.Tags(in.Tags),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := projectstore.New(h.DB).Create(ctx, p)
	if err != nil {
		switch err {
		case projectstore.ErrDuplicateName:
			httperr.Write(w, h.Log, httperr.Conflict("A project with this name already exists"))
		case projectstore.ErrDuplicatePublicCode:
			httperr.Write(w, h.Log, httperr.Conflict("Public invite code collision; retry the request"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to create project", err))
		}
		return
	}

	respond.JSON(w, http.StatusCreated, created)
}
