package model

import "time"

// Story is a user-authored post belonging to one family circle.
type Story struct {
	ID        string     `json:"id"`
	CircleID  string     `json:"circleId"`
	AuthorID  string     `json:"authorId"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Media     []MediaRef `json:"media,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Circle is a named group of users with one distinguished admin.
type Circle struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	AdminID   string   `json:"adminId"`
	MemberIDs []string `json:"memberIds"`
}

// Contains reports whether userID is the circle admin or a member.
func (c *Circle) Contains(userID string) bool {
	if userID == c.AdminID {
		return true
	}
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// StoryEventKind names the lifecycle events that can trigger analysis.
type StoryEventKind string

const (
	EventCreate      StoryEventKind = "create"
	EventUpdate      StoryEventKind = "update"
	EventMediaUpload StoryEventKind = "media_upload"
	EventManual      StoryEventKind = "manual"
)

// StoryEvent is a story lifecycle notification from the API layer.
// AuthorOptOut carries the story owner's already-resolved analysis
// opt-out preference; no user lookup happens in the core.
type StoryEvent struct {
	Kind         StoryEventKind
	StoryID      string
	Title        string
	Content      string
	Media        []MediaRef
	AuthorOptOut bool
}
