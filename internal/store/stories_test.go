package store

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/internal/core/model"
)

func TestSaveStoryEncodesMedia(t *testing.T) {
	driver := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			record([]string{"id"}, []interface{}{"s1"}),
		}},
	}
	s := New(driver)

	story := &model.Story{
		ID:       "s1",
		CircleID: "c1",
		AuthorID: "alice",
		Title:    "Sunday Dinners",
		Content:  "Every Sunday we gathered.",
		Media: []model.MediaRef{
			{Kind: model.MediaImage, URL: "https://cdn/photo.jpg", Description: "the table"},
		},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveStory(context.Background(), story))

	assert.Equal(t, SaveStoryQuery, driver.QueryExecuted)
	assert.JSONEq(t,
		`[{"kind":"image","url":"https://cdn/photo.jpg","description":"the table"}]`,
		driver.QueryParams["media"].(string))
}

func TestGetStoryRoundTripsMedia(t *testing.T) {
	keys := []string{"id", "circle_id", "author_id", "title", "content", "media", "created_at", "updated_at"}
	driver := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			record(keys, []interface{}{
				"s1", "c1", "alice", "Sunday Dinners", "Every Sunday we gathered.",
				`[{"kind":"image","url":"https://cdn/photo.jpg"}]`,
				"2024-03-01T12:00:00Z", "2024-03-01T12:00:00Z",
			}),
		}},
	}
	s := New(driver)

	story, err := s.GetStory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", story.AuthorID)
	require.Len(t, story.Media, 1)
	assert.Equal(t, model.MediaImage, story.Media[0].Kind)
}

func TestGetStoryNotFound(t *testing.T) {
	s := New(&MockDriver{MockResult: neo4j.EagerResult{}})

	_, err := s.GetStory(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCircleParsesMembers(t *testing.T) {
	driver := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			record([]string{"id", "name", "admin_id", "member_ids"},
				[]interface{}{"c1", "The Rossis", "carol", []interface{}{"alice", "bob"}}),
		}},
	}
	s := New(driver)

	c, err := s.GetCircle(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "carol", c.AdminID)
	assert.Equal(t, []string{"alice", "bob"}, c.MemberIDs)
}
