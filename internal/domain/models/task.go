// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// History action tags. Every mutating task operation appends exactly one
// entry; a write that changes nothing appends none.
const (
	ActionCreated          = "created"
	ActionUpdated          = "updated"
	ActionStatusChanged    = "status_changed"
	ActionAssigned         = "assigned"
	ActionCommented        = "commented"
	ActionChecklistUpdated = "checklist_updated"
	ActionAttachmentAdded  = "attachment_added"
)

// Task is a unit of work on a project board. Comments and history are
// embedded; history is append-only and capped at the newest entries by
// the store.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"project_id"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	AssigneeID  *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	TitleCI     string              `bson:"title_ci" json:"-"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      string              `bson:"status" json:"status"` // one of the project's columns
	Priority    string              `bson:"priority" json:"priority"`
	DueDate     *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`

	EstimatedMinutes int `bson:"estimated_minutes,omitempty" json:"estimated_minutes,omitempty"`
	ActualMinutes    int `bson:"actual_minutes,omitempty" json:"actual_minutes,omitempty"`

	// Board ordering: which column the task sits in and its position inside it.
	ColumnIndex int `bson:"column_index" json:"column_index"`
	Position    int `bson:"position" json:"position"`

	Checklist []ChecklistItem `bson:"checklist,omitempty" json:"checklist,omitempty"`
	Comments  []Comment       `bson:"comments" json:"comments"`
	History   []HistoryEntry  `bson:"history" json:"history,omitempty"`

	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ChecklistItem is a single checkbox line on a task.
type ChecklistItem struct {
	ID   string `bson:"id" json:"id"` // uuid
	Text string `bson:"text" json:"text"`
	Done bool   `bson:"done" json:"done"`
}

// Comment is an embedded discussion entry on a task.
type Comment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Text        string             `bson:"text" json:"text"`
	Edited      bool               `bson:"edited" json:"edited"`
	EditedAt    *time.Time         `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	Attachments []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Attachment is a descriptor for an uploaded file. Upload mechanics live
// elsewhere; tasks only carry the metadata.
type Attachment struct {
	ID           string             `bson:"id" json:"id"` // uuid
	FileName     string             `bson:"file_name" json:"file_name"`
	OriginalName string             `bson:"original_name" json:"original_name"`
	Size         int64              `bson:"size" json:"size"`
	UploadedBy   primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
}

// HistoryEntry is an append-only audit record. Entries are never edited
// or removed individually.
type HistoryEntry struct {
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Action    string             `bson:"action" json:"action"`
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	OldValue  string             `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue  string             `bson:"new_value,omitempty" json:"new_value,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// CommentByID returns the embedded comment with the given ID, if any.
func (t Task) CommentByID(id primitive.ObjectID) (Comment, bool) {
	for _, c := range t.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// ValidPriority reports whether p is a recognized task priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
