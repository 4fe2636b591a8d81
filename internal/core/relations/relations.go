// Package relations implements the lifecycle of a relationship claim
// between two users: symmetric request/response between the parties,
// then ratification by the family-circle admin.
package relations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/metrics"
	"github.com/storynest/storynest/internal/store"
)

var (
	// ErrNotFound covers both genuinely missing rows and rows the
	// caller is not allowed to know exist.
	ErrNotFound = errors.New("relations: not found")
	// ErrUnauthorized is returned when the caller exists in the flow
	// but holds the wrong seat (not the recipient, not the admin).
	ErrUnauthorized = errors.New("relations: not authorized")
	// ErrConflict is returned for duplicate pairs and wrong-state
	// transitions.
	ErrConflict = errors.New("relations: conflict")
	// ErrInvalidType is returned for unrecognized relationship types.
	ErrInvalidType = errors.New("relations: invalid relationship type")
)

// RelationStore is the persistence surface the state machine drives.
type RelationStore interface {
	CreateRelation(ctx context.Context, r *model.Relation) error
	GetRelation(ctx context.Context, id string) (*model.Relation, error)
	SetRelationStatus(ctx context.Context, id string, status model.RelationStatus) error
	AdminApproveRelation(ctx context.Context, id, adminID string, at time.Time) error
	DeleteRelation(ctx context.Context, id string) error
	PendingForRecipient(ctx context.Context, userID string) ([]*model.Relation, error)
	RelationsForUser(ctx context.Context, userID string, status model.RelationStatus) ([]*model.Relation, error)
	PendingRatification(ctx context.Context, memberIDs []string) ([]*model.Relation, error)
}

// CircleStore resolves family-circle membership for admin guards.
type CircleStore interface {
	GetCircle(ctx context.Context, id string) (*model.Circle, error)
}

type Service struct {
	relations RelationStore
	circles   CircleStore
	log       *slog.Logger
}

func NewService(relations RelationStore, circles CircleStore) *Service {
	return &Service{
		relations: relations,
		circles:   circles,
		log:       slog.With("component", "relations"),
	}
}

// SendRequest creates a pending claim from requester toward recipient.
// The relationship type describes the requester's side ("I am your
// Parent"). Any existing relation for the unordered pair, in either
// direction and any status, makes this a conflict.
func (s *Service) SendRequest(ctx context.Context, requesterID, recipientID string, t model.RelationshipType) (*model.Relation, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("%w: cannot relate a user to themselves", ErrConflict)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	relation := &model.Relation{
		ID:          uuid.New().String(),
		PairKey:     model.PairKey(requesterID, recipientID),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Type:        t,
		Status:      model.RelationPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.relations.CreateRelation(ctx, relation); err != nil {
		if errors.Is(err, store.ErrDuplicatePair) {
			return nil, fmt.Errorf("%w: a relationship already exists between these users", ErrConflict)
		}
		return nil, err
	}

	metrics.RelationTransitions.WithLabelValues("requested").Inc()
	s.log.Info("relationship requested",
		"relation_id", relation.ID,
		"requester", requesterID,
		"recipient", recipientID,
		"type", t)
	return relation, nil
}

// Respond lets the recipient move a pending claim to approved or
// rejected. Nobody else may respond, the requester included.
func (s *Service) Respond(ctx context.Context, callerID, relationID string, approve bool) (*model.Relation, error) {
	relation, err := s.getRelation(ctx, relationID)
	if err != nil {
		return nil, err
	}
	if callerID != relation.RecipientID {
		return nil, fmt.Errorf("%w: only the recipient may respond", ErrUnauthorized)
	}
	if relation.Status != model.RelationPending {
		return nil, fmt.Errorf("%w: request already %s", ErrConflict, relation.Status)
	}

	status := model.RelationRejected
	transition := "rejected"
	if approve {
		status = model.RelationApproved
		transition = "approved"
	}
	if err := s.relations.SetRelationStatus(ctx, relationID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	relation.Status = status
	metrics.RelationTransitions.WithLabelValues(transition).Inc()
	s.log.Info("relationship response recorded", "relation_id", relationID, "status", status)
	return relation, nil
}

// PendingRequest is a pending claim annotated with the caller's own
// side of it: if someone claims to be your Parent, your role is Child.
type PendingRequest struct {
	Relation *model.Relation        `json:"relation"`
	YourRole model.RelationshipType `json:"yourRole"`
}

// PendingFor lists pending requests addressed to userID.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]PendingRequest, error) {
	relations, err := s.relations.PendingForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending := make([]PendingRequest, 0, len(relations))
	for _, r := range relations {
		pending = append(pending, PendingRequest{
			Relation: r,
			YourRole: r.Type.Inverse(),
		})
	}
	return pending, nil
}

// RelatedPerson is one member of a family bucket.
type RelatedPerson struct {
	UserID     string `json:"userId"`
	RelationID string `json:"relationId"`
	Ratified   bool   `json:"ratified"`
}

// FamilyBuckets groups a user's approved relationships by the
// counterparty's role relative to the user.
type FamilyBuckets struct {
	Parents       []RelatedPerson `json:"parents"`
	Children      []RelatedPerson `json:"children"`
	Spouse        []RelatedPerson `json:"spouse"`
	Siblings      []RelatedPerson `json:"siblings"`
	Grandparents  []RelatedPerson `json:"grandparents"`
	Grandchildren []RelatedPerson `json:"grandchildren"`
}

// ApprovedFor classifies every approved relationship of userID into the
// six buckets, applying the inverse map from whichever side the user
// occupies.
func (s *Service) ApprovedFor(ctx context.Context, userID string) (*FamilyBuckets, error) {
	relations, err := s.relations.RelationsForUser(ctx, userID, model.RelationApproved)
	if err != nil {
		return nil, err
	}

	buckets := &FamilyBuckets{
		Parents:       []RelatedPerson{},
		Children:      []RelatedPerson{},
		Spouse:        []RelatedPerson{},
		Siblings:      []RelatedPerson{},
		Grandparents:  []RelatedPerson{},
		Grandchildren: []RelatedPerson{},
	}
	for _, r := range relations {
		otherID, role := r.Other(userID)
		person := RelatedPerson{UserID: otherID, RelationID: r.ID, Ratified: r.ApprovedByAdmin}
		switch role {
		case model.RelParent:
			buckets.Parents = append(buckets.Parents, person)
		case model.RelChild:
			buckets.Children = append(buckets.Children, person)
		case model.RelSpouse:
			buckets.Spouse = append(buckets.Spouse, person)
		case model.RelSibling:
			buckets.Siblings = append(buckets.Siblings, person)
		case model.RelGrandparent:
			buckets.Grandparents = append(buckets.Grandparents, person)
		case model.RelGrandchild:
			buckets.Grandchildren = append(buckets.Grandchildren, person)
		}
	}
	return buckets, nil
}

func (s *Service) getRelation(ctx context.Context, id string) (*model.Relation, error) {
	relation, err := s.relations.GetRelation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return relation, nil
}
