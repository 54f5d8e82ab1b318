// internal/app/features/accounts/register.go
package accounts

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister creates an account and returns a bearer token.
// POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.FullName == "":
		httperr.Write(w, h.Log, httperr.Validation("Full name is required"))
		return
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		httperr.Write(w, h.Log, httperr.Validation("A valid email is required"))
		return
	case len(in.Password) < 8:
		httperr.Write(w, h.Log, httperr.Validation("Password must be at least 8 characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to create account", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	u, err := store.Create(ctx, models.User{
		FullName:      in.FullName,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Notifications: models.DefaultNotificationPrefs(),
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			httperr.Write(w, h.Log, httperr.Conflict("A user with this email already exists"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to create account", err))
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.FullName, u.Email)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to issue token", err))
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}
