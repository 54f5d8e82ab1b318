// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the authenticated user's Mongo ObjectID, display name,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns NilObjectID, "", false so callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (userID primitive.ObjectID, name string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		// Malformed user ID in a verified token - fail closed.
		return primitive.NilObjectID, "", false
	}
	return userID, u.Name, true
}

// IsSelf reports whether the current request's user is the given user.
func IsSelf(r *http.Request, id primitive.ObjectID) bool {
	userID, _, ok := UserCtx(r)
	return ok && userID == id
}
