// internal/app/store/tasks/comments.go
package taskstore

import (
	"context"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddComment appends a comment and its history entry in one write.
func (s *Store) AddComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment, entry models.HistoryEntry) error {
	res, err := s.c.UpdateByID(ctx, taskID, bson.M{
		"$push": bson.M{
			"comments": c,
			"history":  bson.M{"$each": []models.HistoryEntry{entry}, "$slice": -historyCap},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateComment rewrites a comment's text and marks it edited.
func (s *Store) UpdateComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": taskID, "comments._id": commentID},
		bson.M{
			"$set": bson.M{
				"comments.$.text":      text,
				"comments.$.edited":    true,
				"comments.$.edited_at": now,
				"updated_at":           now,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, taskID); err != nil {
			return err
		}
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment pulls a comment from the task.
func (s *Store) DeleteComment(ctx context.Context, taskID, commentID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, taskID, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// AddAttachments appends attachment descriptors to a comment along with
// the task's history entry.
func (s *Store) AddAttachments(ctx context.Context, taskID, commentID primitive.ObjectID, atts []models.Attachment, entry models.HistoryEntry) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$push": bson.M{
				"comments.$[c].attachments": bson.M{"$each": atts},
				"history":                   bson.M{"$each": []models.HistoryEntry{entry}, "$slice": -historyCap},
			},
			"$set": bson.M{"updated_at": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"c._id": commentID}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}
