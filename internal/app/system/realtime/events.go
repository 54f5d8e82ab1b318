// internal/app/system/realtime/events.go
package realtime

// Server-emitted event types.
const (
	EventConnected      = "connected"
	EventPong           = "pong"
	EventProjectJoined  = "project_joined"
	EventTaskCreated    = "task_created"
	EventTaskUpdated    = "task_updated"
	EventTaskDeleted    = "task_deleted"
	EventCommentAdded   = "comment_added"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
	EventProjectUpdated = "project_updated"
	EventProjectDeleted = "project_deleted"
	EventMemberJoined   = "member_joined"
	EventMemberLeft     = "member_left"
	EventUserMentioned  = "user_mentioned"
)

// Client-emitted message types.
const (
	MsgJoinProject  = "join_project"
	MsgLeaveProject = "leave_project"
	MsgJoinTask     = "join_task"
	MsgLeaveTask    = "leave_task"
	MsgPing         = "ping"
)

// Event is the wire format for server-to-client messages.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ClientMessage is the wire format for client-to-server messages.
type ClientMessage struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
}

// Room name helpers. Rooms are broadcast groups keyed by entity ID;
// connections subscribe and unsubscribe explicitly, except for the
// personal user room which every authenticated connection joins.
func UserRoom(userID string) string       { return "user:" + userID }
func ProjectRoom(projectID string) string { return "project:" + projectID }
func TaskRoom(taskID string) string       { return "task:" + taskID }
