// internal/app/features/tasks/attachments.go
package tasks

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/httperr"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/respond"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"github.com/dalemusser/taskflow/internal/domain/models"
	"github.com/google/uuid"
)

const maxAttachmentsPerCall = 10

type attachmentInput struct {
	Files []attachmentFileInput `json:"files"`
}

type attachmentFileInput struct {
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// HandleAddAttachments records attachment metadata on a comment. The
// bytes themselves travel through the upload service; tasks only carry
// descriptors with server-generated file names.
// POST /tasks/{id}/comments/{commentID}/attachments
func (h *Handler) HandleAddAttachments(w http.ResponseWriter, r *http.Request) {
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
		httperr.Write(w, h.Log, httperr.Forbidden("Only the author can attach files to a comment"))
		return
	}

	var in attachmentInput
	if err := respond.Decode(r, &in); err != nil {
		httperr.Write(w, h.Log, httperr.Validation("Invalid request body"))
		return
	}
	if len(in.Files) == 0 {
		httperr.Write(w, h.Log, httperr.Validation("At least one file is required"))
		return
	}
	if len(in.Files) > maxAttachmentsPerCall {
		httperr.Write(w, h.Log, httperr.Validation("Too many files in one request"))
		return
	}

	atts := make([]models.Attachment, 0, len(in.Files))
	for _, f := range in.Files {
		name := strings.TrimSpace(path.Base(f.OriginalName))
		if name == "" || name == "." || name == "/" {
			httperr.Write(w, h.Log, httperr.Validation("File name is required"))
			return
		}
		if f.Size < 0 {
			httperr.Write(w, h.Log, httperr.Validation("File size cannot be negative"))
			return
		}
		id := uuid.NewString()
		atts = append(atts, models.Attachment{
			ID:           id,
			FileName:     id + path.Ext(name),
			OriginalName: name,
			Size:         f.Size,
			UploadedBy:   uid,
		})
	}

	he := entry(uid, models.ActionAttachmentAdded,
		fmt.Sprintf("%d file(s) attached", len(atts)), "", "", time.Now().UTC())

	if err := taskstore.New(h.DB).AddAttachments(ctx, t.ID, commentID, atts, he); err != nil {
		switch err {
		case taskstore.ErrNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Task not found"))
		case taskstore.ErrCommentNotFound:
			httperr.Write(w, h.Log, httperr.NotFound("Comment not found"))
		default:
			httperr.Write(w, h.Log, httperr.Internal("Failed to add attachments", err))
		}
		return
	}

	h.publishTaskEvent(realtime.EventCommentUpdated, t, uid, map[string]any{
		"comment_id":  commentID.Hex(),
		"attachments": len(atts),
	})
	respond.JSON(w, http.StatusCreated, atts)
}
