package model

import (
	"sort"
	"strings"
	"time"
)

// RelationshipType is a familial relationship as seen from the
// requester's point of view.
type RelationshipType string

const (
	RelParent      RelationshipType = "Parent"
	RelChild       RelationshipType = "Child"
	RelSpouse      RelationshipType = "Spouse"
	RelSibling     RelationshipType = "Sibling"
	RelGrandparent RelationshipType = "Grandparent"
	RelGrandchild  RelationshipType = "Grandchild"
)

// inverseTypes is the fixed symmetric map between the two sides of a
// relationship claim. Spouse and Sibling are its only fixed points.
var inverseTypes = map[RelationshipType]RelationshipType{
	RelParent:      RelChild,
	RelChild:       RelParent,
	RelSpouse:      RelSpouse,
	RelSibling:     RelSibling,
	RelGrandparent: RelGrandchild,
	RelGrandchild:  RelGrandparent,
}

// Inverse returns the relationship from the other party's perspective.
// Unmapped types resolve to the generic label "related".
func (t RelationshipType) Inverse() RelationshipType {
	if inv, ok := inverseTypes[t]; ok {
		return inv
	}
	return RelationshipType("related")
}

// Valid reports whether t is one of the six recognized types.
func (t RelationshipType) Valid() bool {
	_, ok := inverseTypes[t]
	return ok
}

// RelationStatus is the two-party state of a relationship claim.
type RelationStatus string

const (
	RelationPending  RelationStatus = "pending"
	RelationApproved RelationStatus = "approved"
	RelationRejected RelationStatus = "rejected"
)

// Relation is one relationship claim between two users. At most one
// relation may exist per unordered user pair, enforced through PairKey.
type Relation struct {
	ID              string           `json:"id"`
	PairKey         string           `json:"-"`
	RequesterID     string           `json:"requesterId"`
	RecipientID     string           `json:"recipientId"`
	Type            RelationshipType `json:"relationshipType"`
	Status          RelationStatus   `json:"status"`
	ApprovedByAdmin bool             `json:"approvedByAdmin"`
	AdminApprovedBy string           `json:"adminApprovedBy,omitempty"`
	AdminApprovedAt *time.Time       `json:"adminApprovedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Other returns the party opposite userID, and the relationship type as
// seen from userID's side.
func (r *Relation) Other(userID string) (string, RelationshipType) {
	if userID == r.RequesterID {
		// The stored type is the requester's claim about themselves, so
		// the counterparty is its inverse from the requester's seat.
		return r.RecipientID, r.Type.Inverse()
	}
	return r.RequesterID, r.Type
}

// PairKey canonicalizes an unordered user pair into a single key, so the
// storage layer can enforce at-most-one relation per pair atomically.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
