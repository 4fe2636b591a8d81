// Package kinship proposes family groupings from the approved
// relationship graph: users connected by approved claims tend to belong
// in one circle, and label propagation finds those clusters without any
// global knowledge of the graph.
package kinship

import (
	"sort"

	"github.com/storynest/storynest/internal/core/model"
)

// Edge weights. A ratified relation is a stronger signal than one that
// only the two parties have approved.
const (
	weightApproved = 1
	weightRatified = 2
)

type Suggester struct {
	MaxIterations int
}

func NewSuggester() *Suggester {
	return &Suggester{MaxIterations: 20}
}

// Groups clusters the users appearing in relations into suggested family
// groups. Only approved relations contribute edges; singleton users are
// not a group and are dropped. Output is deterministic: members sorted
// within each group, groups sorted by size descending, then by first
// member.
func (s *Suggester) Groups(relations []*model.Relation) [][]string {
	adj := make(map[string]map[string]int)

	touch := func(id string) {
		if adj[id] == nil {
			adj[id] = make(map[string]int)
		}
	}

	for _, r := range relations {
		if r.Status != model.RelationApproved {
			continue
		}
		weight := weightApproved
		if r.ApprovedByAdmin {
			weight = weightRatified
		}
		touch(r.RequesterID)
		touch(r.RecipientID)
		adj[r.RequesterID][r.RecipientID] += weight
		adj[r.RecipientID][r.RequesterID] += weight
	}

	if len(adj) == 0 {
		return nil
	}

	// Deterministic processing order keeps the propagation stable from
	// run to run.
	userIDs := make([]string, 0, len(adj))
	for id := range adj {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	// Every user starts in their own group, labeled by their own ID.
	labels := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		labels[id] = id
	}

	for iter := 0; iter < s.MaxIterations; iter++ {
		changed := 0
		for _, u := range userIDs {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				label := labels[v]
				counts[label] += weight
				if counts[label] > maxCount {
					maxCount = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			// Ties resolve to the lexicographically largest label so the
			// outcome does not depend on map order.
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[u] != best {
				labels[u] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	clusters := make(map[string][]string)
	for _, id := range userIDs {
		label := labels[id]
		clusters[label] = append(clusters[label], id)
	}

	var groups [][]string
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})
	return groups
}
