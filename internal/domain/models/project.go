// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectArchived  = "archived"
	ProjectCompleted = "completed"
)

// Member roles within a project.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Project is the unit of collaboration. Members and invites are embedded;
// there is no separate membership or invite collection.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"` // active | archived | completed
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Members  []Member        `bson:"members" json:"members"`
	Invites  []Invite        `bson:"invites" json:"invites,omitempty"`
	Settings ProjectSettings `bson:"settings" json:"settings"`
	Tags     []string        `bson:"tags,omitempty" json:"tags,omitempty"`

	// Version guards embedded-array mutations that cannot be expressed as a
	// single targeted update. Incremented on every write.
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectSettings holds board configuration and public-link state.
type ProjectSettings struct {
	Template         string   `bson:"template" json:"template"` // kanban | scrum | simple
	Columns          []string `bson:"columns" json:"columns"`
	IsPublic         bool     `bson:"is_public" json:"is_public"`
	PublicInviteCode string   `bson:"public_invite_code,omitempty" json:"public_invite_code,omitempty"`
}

// Member is a user's membership record on a project. Permissions are a
// snapshot taken from the role table at assignment time; they are re-derived
// when the role changes, not when the table changes.
type Member struct {
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role        string              `bson:"role" json:"role"`
	Permissions Permissions         `bson:"permissions" json:"permissions"`
	JoinedAt    time.Time           `bson:"joined_at" json:"joined_at"`
	InvitedBy   *primitive.ObjectID `bson:"invited_by,omitempty" json:"invited_by,omitempty"`
}

// Permissions is the capability set attached to a member.
type Permissions struct {
	CanEdit   bool `bson:"can_edit" json:"can_edit"`
	CanDelete bool `bson:"can_delete" json:"can_delete"`
	CanInvite bool `bson:"can_invite" json:"can_invite"`
}

// Invite is a time- and use-limited join token embedded on its project.
type Invite struct {
	Code      string             `bson:"code" json:"code"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	Role      string             `bson:"role" json:"role"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	MaxUses   *int               `bson:"max_uses,omitempty" json:"max_uses,omitempty"`
	UsedCount int                `bson:"used_count" json:"used_count"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// IsValid reports whether the invite can still be accepted at the given time.
func (i Invite) IsValid(now time.Time) bool {
	if !i.IsActive {
		return false
	}
	if !now.Before(i.ExpiresAt) {
		return false
	}
	if i.MaxUses != nil && i.UsedCount >= *i.MaxUses {
		return false
	}
	return true
}

// Exhausted reports whether the invite has consumed its full use budget.
func (i Invite) Exhausted() bool {
	return i.MaxUses != nil && i.UsedCount >= *i.MaxUses
}

// MemberFor returns the membership record for the given user, if any.
func (p Project) MemberFor(userID primitive.ObjectID) (Member, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// InviteByCode returns the embedded invite with the given code, if any.
func (p Project) InviteByCode(code string) (Invite, bool) {
	for _, inv := range p.Invites {
		if inv.Code == code {
			return inv, true
		}
	}
	return Invite{}, false
}

// OwnerCount returns how many members hold the owner role.
func (p Project) OwnerCount() int {
	n := 0
	for _, m := range p.Members {
		if m.Role == RoleOwner {
			n++
		}
	}
	return n
}

// TemplateColumns returns the board columns for a project template.
// Unknown templates fall back to the kanban layout.
func TemplateColumns(template string) []string {
	switch template {
	case "scrum":
		return []string{"Backlog", "To Do", "In Progress", "Review", "Done"}
	case "simple":
		return []string{"To Do", "Done"}
	default: // kanban
		return []string{"To Do", "In Progress", "Done"}
	}
}

// ValidProjectStatus reports whether s is a recognized project status.
func ValidProjectStatus(s string) bool {
	return s == ProjectActive || s == ProjectArchived || s == ProjectCompleted
}

// ValidRole reports whether r is a recognized member role.
func ValidRole(r string) bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember || r == RoleViewer
}
