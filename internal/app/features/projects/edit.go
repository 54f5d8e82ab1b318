// internal/app/features/projects/edit.go
package projects

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/taskflow/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/invitecode"
	"github.com/dalemusser/taskflow/internal/app/system/normalize"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
)

type editProjectInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`

	Template *string   `json:"template"`
	Columns  *[]string `json:"columns"`
	IsPublic *bool     `json:"is_public"`
}

// HandleEdit updates a project's fields and settings. Marking a project
// public mints its permanent public invite code if one does not exist
// yet; the code survives later visibility flips.
// PUT /projects/{id}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	_, uid, err := projectpolicy.RequireEdit(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var in editProjectInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Status != "" && !models.ValidProjectStatus(in.Status) {
		httperr.Write(w, h.Log, httperr.Validation(`Status must be "active", "archived", or "completed"`))
		return
	}

	var settings *models.ProjectSettings
	if in.Template != nil || in.Columns != nil || in.IsPublic != nil {
		s := p.Settings
		if in.Template != nil {
			s.Template = *in.Template
		}
		if in.Columns != nil {
			if len(*in.Columns) == 0 {
				httperr.Write(w, h.Log, httperr.Validation("A project needs at least one column"))
				return
			}
			s.Columns = *in.Columns
		}
		if in.IsPublic != nil {
			s.IsPublic = *in.IsPublic
			if s.IsPublic && s.PublicInviteCode == "" {
				code, err := invitecode.GeneratePublic()
				if err != nil {
					httperr.Write(w, h.Log, httperr.Internal("Failed to update project", err))
					return
				}
				s.PublicInviteCode = code
			}
		}
		settings = &s
	}

	var tags []string
	if in.Tags != nil {
		tags = normalize.Tags(in.Tags)
	}
	// An explicit empty description clears the stored one.
	var desc *string
	if in.Description != nil {
		d := h.sanitize.Sanitize(*in.Description)
		desc = &d
	}

	store := projectstore.New(h.DB)
	if err := store.Update(ctx, p.ID, in.Name, desc, in.Status, tags, settings); err != nil {
		switch err {
		case projectstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Project not found"))
		case projectstore.ErrDuplicateName:
			httperr.Write(w, h.Log, httperr.Conflict("A project with this name already exists"))
		case projectstore.ErrDuplicatePublicCode:
			httperr.Write(w, h.Log, httperr.Conflict("Public invite code collision; retry the request"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to update project", err))
		}
		return
	}

	updated, err := store.GetByID(ctx, p.ID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load project", err))
		return
	}

	h.publishProjectEvent(realtime.EventProjectUpdated, updated, uid, nil)
	respond.JSON(w, http.StatusOK, updated)
}

// HandleArchive flips a project to archived.
// PATCH /projects/{id}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadProject(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	_, uid, err := projectpolicy.RequireEdit(p, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	if err := projectstore.New(h.DB).SetStatus(ctx, p.ID, models.ProjectArchived); err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to archive project", err))
		return
	}

	p.Status = models.ProjectArchived
	h.publishProjectEvent(realtime.EventProjectUpdated, p, uid, map[string]any{"status": models.ProjectArchived})
	respond.JSON(w, http.StatusOK, map[string]string{"status": models.ProjectArchived})
}
