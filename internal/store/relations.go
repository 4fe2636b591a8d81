package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/storynest/storynest/internal/core/model"
)

// CreateRelation inserts a pending relation. If any relation already
// exists for the unordered user pair, in either direction and any
// status, it returns ErrDuplicatePair. The check rides on the MERGE by
// pair key, so two concurrent requests cannot both win.
func (s *Store) CreateRelation(ctx context.Context, r *model.Relation) error {
	params := map[string]interface{}{
		"pair_key":     r.PairKey,
		"id":           r.ID,
		"requester_id": r.RequesterID,
		"recipient_id": r.RecipientID,
		"type":         string(r.Type),
		"status":       string(r.Status),
		"created_at":   formatTime(r.CreatedAt),
	}

	result, err := s.driver.ExecuteQuery(ctx, CreateRelationQuery, params)
	if err != nil {
		return fmt.Errorf("failed to create relation: %w", err)
	}
	if len(result.Records) == 0 {
		return fmt.Errorf("relation create returned no record")
	}
	if recordString(result.Records[0], "id") != r.ID {
		return ErrDuplicatePair
	}
	return nil
}

func (s *Store) GetRelation(ctx context.Context, id string) (*model.Relation, error) {
	result, err := s.driver.ExecuteQuery(ctx, GetRelationQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}
	return relationFromRecord(result.Records[0]), nil
}

func (s *Store) SetRelationStatus(ctx context.Context, id string, status model.RelationStatus) error {
	result, err := s.driver.ExecuteQuery(ctx, SetRelationStatusQuery, map[string]interface{}{
		"id":     id,
		"status": string(status),
	})
	if err != nil {
		return fmt.Errorf("failed to update relation %s: %w", id, err)
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminApproveRelation records ratification. Setting status to approved
// again is an idempotent restatement.
func (s *Store) AdminApproveRelation(ctx context.Context, id, adminID string, at time.Time) error {
	result, err := s.driver.ExecuteQuery(ctx, AdminApproveRelationQuery, map[string]interface{}{
		"id":                id,
		"admin_id":          adminID,
		"admin_approved_at": formatTime(at),
	})
	if err != nil {
		return fmt.Errorf("failed to ratify relation %s: %w", id, err)
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRelation erases a relation outright. Admin rejection uses this:
// there is no rejected-by-admin state to park the row in.
func (s *Store) DeleteRelation(ctx context.Context, id string) error {
	if _, err := s.driver.ExecuteQuery(ctx, DeleteRelationQuery, map[string]interface{}{"id": id}); err != nil {
		return fmt.Errorf("failed to delete relation %s: %w", id, err)
	}
	return nil
}

// PendingForRecipient lists pending requests addressed to userID.
func (s *Store) PendingForRecipient(ctx context.Context, userID string) ([]*model.Relation, error) {
	result, err := s.driver.ExecuteQuery(ctx, PendingForRecipientQuery, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}
	return relationsFromRecords(result.Records), nil
}

// RelationsForUser lists relations with the given status where userID
// is on either side.
func (s *Store) RelationsForUser(ctx context.Context, userID string, status model.RelationStatus) ([]*model.Relation, error) {
	result, err := s.driver.ExecuteQuery(ctx, RelationsForUserQuery, map[string]interface{}{
		"user_id": userID,
		"status":  string(status),
	})
	if err != nil {
		return nil, err
	}
	return relationsFromRecords(result.Records), nil
}

// ApprovedRelations lists every approved relation, for whole-graph
// consumers like the family-group suggester.
func (s *Store) ApprovedRelations(ctx context.Context) ([]*model.Relation, error) {
	result, err := s.driver.ExecuteQuery(ctx, ApprovedRelationsQuery, nil)
	if err != nil {
		return nil, err
	}
	return relationsFromRecords(result.Records), nil
}

// PendingRatification lists two-party-approved, not-yet-ratified
// relations whose parties are both inside the given membership set.
func (s *Store) PendingRatification(ctx context.Context, memberIDs []string) ([]*model.Relation, error) {
	result, err := s.driver.ExecuteQuery(ctx, PendingRatificationQuery, map[string]interface{}{
		"member_ids": memberIDs,
	})
	if err != nil {
		return nil, err
	}
	return relationsFromRecords(result.Records), nil
}

func relationsFromRecords(records []*neo4j.Record) []*model.Relation {
	relations := make([]*model.Relation, 0, len(records))
	for _, rec := range records {
		relations = append(relations, relationFromRecord(rec))
	}
	return relations
}

func relationFromRecord(rec *neo4j.Record) *model.Relation {
	r := &model.Relation{
		ID:              recordString(rec, "id"),
		PairKey:         recordString(rec, "pair_key"),
		RequesterID:     recordString(rec, "requester_id"),
		RecipientID:     recordString(rec, "recipient_id"),
		Type:            model.RelationshipType(recordString(rec, "type")),
		Status:          model.RelationStatus(recordString(rec, "status")),
		ApprovedByAdmin: recordBool(rec, "approved_by_admin"),
		AdminApprovedBy: recordString(rec, "admin_approved_by"),
		CreatedAt:       recordTime(rec, "created_at"),
	}
	if t := recordTime(rec, "admin_approved_at"); !t.IsZero() {
		r.AdminApprovedAt = &t
	}
	return r
}
