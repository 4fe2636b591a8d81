package relations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/metrics"
	"github.com/storynest/storynest/internal/store"
)

// Admin ratification. A two-party-approved relation is not final until
// the circle admin signs off (or erases it). Rows are visible to,
// and actionable by, the exact admin of the circle only.

// circleForAdmin loads the circle and enforces the exact-admin guard.
func (s *Service) circleForAdmin(ctx context.Context, adminID, circleID string) (*model.Circle, error) {
	circle, err := s.circles.GetCircle(ctx, circleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if circle.AdminID != adminID {
		return nil, fmt.Errorf("%w: only the circle admin may ratify relationships", ErrUnauthorized)
	}
	return circle, nil
}

// memberSet is the admin plus the member list.
func memberSet(c *model.Circle) []string {
	members := make([]string, 0, len(c.MemberIDs)+1)
	members = append(members, c.AdminID)
	for _, id := range c.MemberIDs {
		if id != c.AdminID {
			members = append(members, id)
		}
	}
	return members
}

// PendingForAdmin lists relations awaiting ratification where both
// parties belong to the admin's circle.
func (s *Service) PendingForAdmin(ctx context.Context, adminID, circleID string) ([]*model.Relation, error) {
	circle, err := s.circleForAdmin(ctx, adminID, circleID)
	if err != nil {
		return nil, err
	}
	return s.relations.PendingRatification(ctx, memberSet(circle))
}

// ratifiable fetches the relation and checks it is eligible for this
// admin to act on. Rows outside the circle are reported as not found,
// not as unauthorized: this admin cannot know they exist.
func (s *Service) ratifiable(ctx context.Context, circle *model.Circle, relationID string) (*model.Relation, error) {
	relation, err := s.getRelation(ctx, relationID)
	if err != nil {
		return nil, err
	}
	if !circle.Contains(relation.RequesterID) || !circle.Contains(relation.RecipientID) {
		return nil, ErrNotFound
	}
	if relation.Status != model.RelationApproved {
		return nil, fmt.Errorf("%w: relation is %s, not approved", ErrConflict, relation.Status)
	}
	return relation, nil
}

// AdminApprove ratifies an approved relation: approvedByAdmin flips
// true and the audit fields are recorded. Restating status=approved is
// idempotent.
func (s *Service) AdminApprove(ctx context.Context, adminID, circleID, relationID string) (*model.Relation, error) {
	circle, err := s.circleForAdmin(ctx, adminID, circleID)
	if err != nil {
		return nil, err
	}
	relation, err := s.ratifiable(ctx, circle, relationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.relations.AdminApproveRelation(ctx, relationID, adminID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	relation.ApprovedByAdmin = true
	relation.AdminApprovedBy = adminID
	relation.AdminApprovedAt = &now
	metrics.RelationTransitions.WithLabelValues("ratified").Inc()
	s.log.Info("relationship ratified", "relation_id", relationID, "admin", adminID)
	return relation, nil
}

// AdminReject erases the relation outright. There is no
// rejected-by-admin state; the claim must be re-requested from scratch.
// A ratified relation is terminal and cannot be rejected.
func (s *Service) AdminReject(ctx context.Context, adminID, circleID, relationID string) error {
	circle, err := s.circleForAdmin(ctx, adminID, circleID)
	if err != nil {
		return err
	}
	relation, err := s.ratifiable(ctx, circle, relationID)
	if err != nil {
		return err
	}
	if relation.ApprovedByAdmin {
		return fmt.Errorf("%w: relation is already ratified", ErrConflict)
	}

	if err := s.relations.DeleteRelation(ctx, relationID); err != nil {
		return err
	}
	metrics.RelationTransitions.WithLabelValues("admin_rejected").Inc()
	s.log.Info("relationship rejected by admin", "relation_id", relationID, "admin", adminID)
	return nil
}
