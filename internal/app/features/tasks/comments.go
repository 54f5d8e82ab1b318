// internal/app/features/tasks/comments.go
package tasks

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskflow/internal/app/store/users"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxCommentLen = 5000

var mentionRe = regexp.MustCompile(`@([\p{L}\p{N}._-]+)`)

type commentInput struct {
	Text string `json:"text"`
}

func commentParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		return primitive.NilObjectID, httperr.NotFound("Comment not found")
	}
	return id, nil
}

// HandleAddComment appends a comment to a task. Any member can comment,
// viewers included. Mentioned members get a direct notification on
// their personal room.
// POST /tasks/{id}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, p, _, uid, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	var in commentInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	body := strings.TrimSpace(h.sanitize.Sanitize(in.Text))
	if body == "" {
		httperr.Write(w, h.Log, httperr.Validation("Comment text is required"))
		return
	}
	if len(body) > maxCommentLen {
		httperr.Write(w, h.Log, httperr.Validation("Comment is too long"))
		return
	}

	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		AuthorID:  uid,
		Text:      body,
		CreatedAt: now,
	}
	he := entry(uid, models.ActionCommented, "comment added", "", "", now)

	if err := taskstore.New(h.DB).AddComment(ctx, t.ID, c, he); err != nil {
		if err == taskstore.ErrNotFound {
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
			return
		}
		httperr.Write(w, h.Log, httperr.Internal("Failed to add comment", err))
		return
	}

	h.publishTaskEvent(realtime.EventCommentAdded, t, uid, map[string]any{
		"comment_id": c.ID.Hex(),
		"author_id":  uid.Hex(),
	})
	h.notifyMentions(ctx, t, p, c, uid)

	respond.JSON(w, http.StatusCreated, c)
}

// HandleEditComment rewrites a comment's text. Authors only.
// PUT /tasks/{id}/comments/{commentID}
func (h *Handler) HandleEditComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, _, _, uid, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	commentID, err := commentParam(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	c, ok := t.CommentByID(commentID)
	if !ok {
		httperr.Write(w, h.Log, httperr.NotFound("Comment not found"))
		return
	}
	if c.AuthorID != uid {
		httperr.Write(w, h.Log, httperr.Forbidden("Only the author can edit a comment"))
		return
	}

	var in commentInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	body := strings.TrimSpace(h.sanitize.Sanitize(in.Text))
	if body == "" {
		httperr.Write(w, h.Log, httperr.Validation("Comment text is required"))
		return
	}
	if len(body) > maxCommentLen {
		httperr.Write(w, h.Log, httperr.Validation("Comment is too long"))
		return
	}

	if err := taskstore.New(h.DB).UpdateComment(ctx, t.ID, commentID, body); err != nil {
		switch err {
		case taskstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
		case taskstore.ErrCommentNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Comment not found"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to edit comment", err))
		}
		return
	}

	h.publishTaskEvent(realtime.EventCommentUpdated, t, uid, map[string]any{
		"comment_id": commentID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]any{"id": commentID.Hex(), "text": body, "edited": true})
}

// HandleDeleteComment removes a comment. Allowed for the comment's
// author, the task's creator, and the project owner.
// DELETE /tasks/{id}/comments/{commentID}
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, p, _, uid, err := h.loadTaskScope(ctx, r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	commentID, err := commentParam(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	c, ok := t.CommentByID(commentID)
	if !ok {
		httperr.Write(w, h.Log, httperr.NotFound("Comment not found"))
		return
	}
	if c.AuthorID != uid && t.CreatedBy != uid && p.OwnerID != uid {
		httperr.Write(w, h.Log, httperr.Forbidden("You cannot delete this comment"))
		return
	}

	if err := taskstore.New(h.DB).DeleteComment(ctx, t.ID, commentID); err != nil {
		switch err {
		case taskstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
		case taskstore.ErrCommentNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Comment not found"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to delete comment", err))
		}
		return
	}

	h.publishTaskEvent(realtime.EventCommentDeleted, t, uid, map[string]any{
		"comment_id": commentID.Hex(),
	})
	respond.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// notifyMentions resolves @tokens in a comment against the project's
// members and pings each match on their personal room. Matching is
// case-insensitive against the member's folded full name with spaces
// removed and their email local part. Best effort; lookup failures are
// logged and dropped.
func (h *Handler) notifyMentions(ctx context.Context, t models.Task, p models.Project, c models.Comment, actorID primitive.ObjectID) {
	if h.Hub == nil {
		return
	}
	matches := mentionRe.FindAllStringSubmatch(c.Text, -1)
	if len(matches) == 0 {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	users, err := userstore.New(h.DB).ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("mention lookup failed", zap.Error(err))
		return
	}

	tokens := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tokens[text.Fold(m[1])] = struct{}{}
	}

	for _, u := range users {
		if u.ID == actorID {
			continue
		}
		name := strings.ReplaceAll(text.Fold(u.FullName), " ", "")
		local := u.Email
		if i := strings.IndexByte(local, '@'); i >= 0 {
			local = local[:i]
		}
		_, byName := tokens[name]
		_, byEmail := tokens[text.Fold(local)]
		if !byName && !byEmail {
			continue
		}
		h.Hub.NotifyUser(u.ID.Hex(), realtime.Event{
			Type: realtime.EventUserMentioned,
			Payload: map[string]any{
				"task_id":    t.ID.Hex(),
				"project_id": t.ProjectID.Hex(),
				"comment_id": c.ID.Hex(),
				"by":         actorID.Hex(),
			},
		})
	}
}
