// internal/app/store/projects/invites.go
package projectstore

import (
	"context"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddInvite appends an invite record to the project.
func (s *Store) AddInvite(ctx context.Context, projectID primitive.ObjectID, inv models.Invite) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{
			"$push": bson.M{"invites": inv},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateInvite flips an invite's active flag off unconditionally.
// Reports ErrInviteNotFound when no invite carries the code.
func (s *Store) DeactivateInvite(ctx context.Context, projectID primitive.ObjectID, code string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "invites.code": code},
		bson.M{
			"$set": bson.M{
				"invites.$.is_active": false,
				"updated_at":          time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, projectID); err != nil {
			return err
		}
		return ErrInviteNotFound
	}
	return nil
}

// ConsumeInvite atomically adds the member and increments the invite's
// used count. The update is guarded on the used count the caller observed
// and on the user not already being a member, so concurrent accepts of
// the last slot cannot both succeed. When deactivate is set (this accept
// exhausts the budget), the active flag is flipped in the same write.
//
// ErrStaleWrite means the guard failed: the caller re-reads the project,
// revalidates the invite, and retries or reports.
func (s *Store) ConsumeInvite(ctx context.Context, projectID primitive.ObjectID, code string, prevUsedCount int, m models.Member, deactivate bool) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if deactivate {
		set["invites.$[inv].is_active"] = false
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":             projectID,
			"members.user_id": bson.M{"$ne": m.UserID},
			"invites": bson.M{"$elemMatch": bson.M{
				"code":       code,
				"is_active":  true,
				"used_count": prevUsedCount,
			}},
		},
		bson.M{
			"$push": bson.M{"members": m},
			"$inc":  bson.M{"invites.$[inv].used_count": 1, "version": 1},
			"$set":  set,
		},
		arrayFilters(bson.M{"inv.code": code}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleWrite
	}
	return nil
}

// JoinViaPublicLink adds the member, guarded on the project still being
// public under the given code and the user not already belonging.
func (s *Store) JoinViaPublicLink(ctx context.Context, code string, m models.Member) (models.Project, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"settings.is_public":          true,
			"settings.public_invite_code": code,
			"members.user_id":             bson.M{"$ne": m.UserID},
		},
		bson.M{
			"$push": bson.M{"members": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return models.Project{}, err
	}
	if res.MatchedCount == 0 {
		// Either no public project carries this code, or the user already
		// belongs to it.
		if _, err := s.GetByPublicCode(ctx, code); err != nil {
			return models.Project{}, err
		}
		return models.Project{}, ErrAlreadyMember
	}
	return s.GetByPublicCode(ctx, code)
}
