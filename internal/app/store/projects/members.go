// internal/app/store/projects/members.go
//
// Member mutations use targeted, conditional updates rather than
// read-modify-write on the whole document, so two concurrent member
// changes cannot silently drop each other.
package projectstore

import (
	"context"
	"time"

	"github.com/dalemusser/taskflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// arrayFilters builds update options with the given $[ident] filters.
func arrayFilters(filters ...interface{}) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{Filters: filters})
}

// AddMember appends a membership record. The push is guarded on the user
// not already appearing in the member list.
func (s *Store) AddMember(ctx context.Context, projectID primitive.ObjectID, m models.Member) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":             projectID,
			"members.user_id": bson.M{"$ne": m.UserID},
		},
		bson.M{
			"$push": bson.M{"members": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the project is gone or the user is already a member.
		if _, err := s.GetByID(ctx, projectID); err != nil {
			return err
		}
		return ErrAlreadyMember
	}
	return nil
}

// UpdateMemberRole changes a member's role and replaces their capability
// snapshot with the set derived for the new role.
func (s *Store) UpdateMemberRole(ctx context.Context, projectID, userID primitive.ObjectID, role string, perms models.Permissions) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "members.user_id": userID},
		bson.M{
			"$set": bson.M{
				"members.$.role":        role,
				"members.$.permissions": perms,
				"updated_at":            time.Now().UTC(),
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
		return ErrMemberNotFound
	}
	return nil
}

// RemoveMember pulls a non-owner member from the project. The owner role
// is excluded in the pull itself, so a racing role change cannot strand a
// project without its owner.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{
			"$pull": bson.M{"members": bson.M{
				"user_id": userID,
				"role":    bson.M{"$ne": models.RoleOwner},
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		// Nothing pulled: the member is absent, or holds the owner role.
		p, err := s.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if m, ok := p.MemberFor(userID); ok && m.Role == models.RoleOwner {
			return ErrOwnerImmutable
		}
		return ErrMemberNotFound
	}
	return nil
}

// TransferOwnership atomically flips the owner role from one member to
// another and repoints owner_id. Guarded on the version read by the
// caller; ErrStaleWrite means a concurrent writer won and the caller
// should re-read and retry.
func (s *Store) TransferOwnership(ctx context.Context, projectID primitive.ObjectID, version int64, fromID, toID primitive.ObjectID) error {
	ownerPerms := models.Permissions{CanEdit: true, CanDelete: true, CanInvite: true}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "version": version},
		bson.M{
			"$set": bson.M{
				"owner_id": toID,
				"members.$[from].role":        models.RoleAdmin,
				"members.$[from].permissions": ownerPerms,
				"members.$[to].role":          models.RoleOwner,
				"members.$[to].permissions":   ownerPerms,
				"updated_at":                  time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		},
		arrayFilters(
			bson.M{"from.user_id": fromID},
			bson.M{"to.user_id": toID},
		),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, projectID); err != nil {
			return err
		}
		return ErrStaleWrite
	}
	return nil
}
