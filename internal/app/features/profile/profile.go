// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/authz"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

// ServeProfile returns the signed-in user's account.
// GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, userID)
	if err != nil {
		if err == userstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("User not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to load profile", err))
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

type updateProfileInput struct {
	FullName  string   `json:"full_name"`
	Bio       string   `json:"bio"`
	AvatarURL string   `json:"avatar_url"`
	Skills    []string `json:"skills"`
}

// HandleUpdate modifies the signed-in user's display fields.
// PUT /profile
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	var in updateProfileInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	in.FullName = strings.TrimSpace(in.FullName)
	if len(in.Bio) > 2000 {
		httperr.Write(w, h.Log, httperr.Validation("Bio must be at most 2000 characters"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	if err := store.UpdateProfile(ctx, userID, in.FullName, in.Bio, in.AvatarURL, in.Skills); err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to update profile", err))
		return
	}

	u, err := store.GetByID(ctx, userID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load profile", err))
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword verifies the current credential and replaces it.
// PUT /profile/password
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	var in changePasswordInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if len(in.NewPassword) < 8 {
		httperr.Write(w, h.Log, httperr.Validation("Password must be at least 8 characters"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	u, err := store.GetByID(ctx, userID)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to load account", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
		httperr.Write(w, h.Log, httperr.Unauthorized("Current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to update password", err))
		return
	}
	if err := store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to update password", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// HandleUpdatePreferences replaces the notification preference set.
// PUT /profile/preferences
func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httperr.Write(w, h.Log, httperr.Unauthorized("Authentication required"))
		return
	}

	var prefs models.NotificationPrefs
	if err := respond.Decode(r, &prefs); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := userstore.New(h.DB).UpdateNotificationPrefs(ctx, userID, prefs); err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to update preferences", err))
		return
	}
	respond.JSON(w, http.StatusOK, prefs)
}
