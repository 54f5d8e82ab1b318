// internal/app/features/accounts/login.go
package accounts

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"golang.org/x/crypto/bcrypt"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a bearer token.
// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if in.Email == "" || in.Password == "" {
		httperr.Write(w, h.Log, httperr.Validation("Email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	u, err := store.GetByEmail(ctx, in.Email)
	if err != nil {
		if err == userstore.ErrNotFound {
			// Same response as a wrong password; do not leak which one it was.
			httperr.Write(w, h.Log, httperr.Unauthorized("Invalid email or password"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Login failed", err))
		return
	}
	if u.Status == "disabled" {
		httperr.Write(w, h.Log, httperr.Unauthorized("Account is disabled"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		httperr.Write(w, h.Log, httperr.Unauthorized("Invalid email or password"))
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.FullName, u.Email)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Internal("Failed to issue token", err))
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{Token: token, User: u})
}
