// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account holder. Users are never hard-deleted;
// disabling an account sets Status to "disabled".
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills       []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	AvatarURL    string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	Notifications NotificationPrefs `bson:"notifications" json:"notifications"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NotificationPrefs controls which realtime/digest notifications a user receives.
type NotificationPrefs struct {
	TaskAssigned   bool `bson:"task_assigned" json:"task_assigned"`
	TaskUpdated    bool `bson:"task_updated" json:"task_updated"`
	CommentAdded   bool `bson:"comment_added" json:"comment_added"`
	Mentions       bool `bson:"mentions" json:"mentions"`
	ProjectUpdates bool `bson:"project_updates" json:"project_updates"`
}

// DefaultNotificationPrefs is applied at registration.
func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{
		TaskAssigned:   true,
		TaskUpdated:    true,
		CommentAdded:   true,
		Mentions:       true,
		ProjectUpdates: true,
	}
}
