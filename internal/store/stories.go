package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storynest/storynest/internal/core/model"
)

func (s *Store) SaveStory(ctx context.Context, story *model.Story) error {
	media, err := json.Marshal(story.Media)
	if err != nil {
		return fmt.Errorf("failed to encode media: %w", err)
	}

	params := map[string]interface{}{
		"id":         story.ID,
		"circle_id":  story.CircleID,
		"author_id":  story.AuthorID,
		"title":      story.Title,
		"content":    story.Content,
		"media":      string(media),
		"created_at": formatTime(story.CreatedAt),
		"updated_at": formatTime(story.UpdatedAt),
	}

	if _, err := s.driver.ExecuteQuery(ctx, SaveStoryQuery, params); err != nil {
		return fmt.Errorf("failed to save story %s: %w", story.ID, err)
	}
	return nil
}

func (s *Store) GetStory(ctx context.Context, id string) (*model.Story, error) {
	result, err := s.driver.ExecuteQuery(ctx, GetStoryQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	rec := result.Records[0]
	story := &model.Story{
		ID:        recordString(rec, "id"),
		CircleID:  recordString(rec, "circle_id"),
		AuthorID:  recordString(rec, "author_id"),
		Title:     recordString(rec, "title"),
		Content:   recordString(rec, "content"),
		CreatedAt: recordTime(rec, "created_at"),
		UpdatedAt: recordTime(rec, "updated_at"),
	}
	if raw := recordString(rec, "media"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &story.Media); err != nil {
			return nil, fmt.Errorf("failed to decode media for story %s: %w", id, err)
		}
	}
	return story, nil
}

func (s *Store) SaveCircle(ctx context.Context, c *model.Circle) error {
	params := map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"admin_id":   c.AdminID,
		"member_ids": c.MemberIDs,
	}
	if _, err := s.driver.ExecuteQuery(ctx, SaveCircleQuery, params); err != nil {
		return fmt.Errorf("failed to save circle %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) GetCircle(ctx context.Context, id string) (*model.Circle, error) {
	result, err := s.driver.ExecuteQuery(ctx, GetCircleQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	rec := result.Records[0]
	return &model.Circle{
		ID:        recordString(rec, "id"),
		Name:      recordString(rec, "name"),
		AdminID:   recordString(rec, "admin_id"),
		MemberIDs: recordStrings(rec, "member_ids"),
	}, nil
}
