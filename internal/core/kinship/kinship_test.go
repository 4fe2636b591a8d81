package kinship

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/internal/core/model"
)

func approved(a, b string) *model.Relation {
	return &model.Relation{
		RequesterID: a,
		RecipientID: b,
		Type:        model.RelSibling,
		Status:      model.RelationApproved,
	}
}

func ratified(a, b string) *model.Relation {
	r := approved(a, b)
	r.ApprovedByAdmin = true
	return r
}

func TestGroupsTwoSeparateFamilies(t *testing.T) {
	relations := []*model.Relation{
		// The Rossis: a triangle.
		approved("anna", "bruno"), approved("bruno", "carla"), approved("carla", "anna"),
		// The Webers: a triangle.
		approved("dora", "emil"), approved("emil", "frieda"), approved("frieda", "dora"),
	}

	groups := NewSuggester().Groups(relations)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"anna", "bruno", "carla"}, groups[0])
	assert.Equal(t, []string{"dora", "emil", "frieda"}, groups[1])
}

func TestGroupsBridgedFamiliesStaySeparate(t *testing.T) {
	relations := []*model.Relation{
		approved("anna", "bruno"), approved("bruno", "carla"), approved("carla", "anna"),
		// One marriage bridges the families.
		approved("carla", "dora"),
		approved("dora", "emil"), approved("emil", "frieda"), approved("frieda", "dora"),
	}

	groups := NewSuggester().Groups(relations)
	assert.Len(t, groups, 2, "intra-family ties outweigh the single bridge")
}

func TestGroupsIgnoresPendingAndRejected(t *testing.T) {
	relations := []*model.Relation{
		approved("anna", "bruno"),
		{RequesterID: "bruno", RecipientID: "carla", Status: model.RelationPending},
		{RequesterID: "carla", RecipientID: "dora", Status: model.RelationRejected},
	}

	groups := NewSuggester().Groups(relations)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"anna", "bruno"}, groups[0])
}

func TestGroupsRatifiedEdgesWeighHeavier(t *testing.T) {
	// Bruno sits between two pairs; the ratified tie should pull him in.
	relations := []*model.Relation{
		ratified("anna", "bruno"),
		approved("bruno", "carla"),
		ratified("anna", "zoe"),
		approved("carla", "dora"),
	}

	groups := NewSuggester().Groups(relations)
	require.NotEmpty(t, groups)

	memberOf := map[string]int{}
	for i, g := range groups {
		for _, m := range g {
			memberOf[m] = i
		}
	}
	assert.Equal(t, memberOf["anna"], memberOf["bruno"], "the ratified edge binds bruno to anna's group")
}

func TestGroupsEmptyInput(t *testing.T) {
	assert.Nil(t, NewSuggester().Groups(nil))
}

func TestGroupsDeterministic(t *testing.T) {
	relations := []*model.Relation{
		approved("anna", "bruno"), approved("bruno", "carla"),
		approved("dora", "emil"),
	}
	first := NewSuggester().Groups(relations)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NewSuggester().Groups(relations))
	}
}
