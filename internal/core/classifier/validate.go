package classifier

import (
	"strings"

	"github.com/storynest/storynest/internal/core/common"
	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/core/taxonomy"
)

// rawAnalysis is the JSON shape requested from the model, before any
// validation. All fields are optional; clampResult supplies defaults.
type rawAnalysis struct {
	Themes     []string    `json:"themes"`
	Emotions   []string    `json:"emotions"`
	TimePeriod string      `json:"timePeriod"`
	LifeStage  string      `json:"lifeStage"`
	People     []rawPerson `json:"people"`
	Locations  []string    `json:"locations"`
	KeyEvents  []string    `json:"keyEvents"`
	Summary    string      `json:"summary"`
}

type rawPerson struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// clampResult filters model output down to taxonomy members and the
// configured size caps. Model output is advisory; this is the boundary
// where it becomes trusted data.
func clampResult(raw rawAnalysis, limits limitSet) model.AnalysisResult {
	themes := filterMembers(raw.Themes, taxonomy.IsTheme, limits.maxThemes)
	emotions := filterMembers(raw.Emotions, taxonomy.IsEmotion, limits.maxEmotions)

	timePeriod := strings.ToLower(strings.TrimSpace(raw.TimePeriod))
	if !taxonomy.IsTimePeriod(timePeriod) {
		timePeriod = taxonomy.Unknown
	}
	lifeStage := strings.ToLower(strings.TrimSpace(raw.LifeStage))
	if !taxonomy.IsLifeStage(lifeStage) {
		lifeStage = taxonomy.Unknown
	}

	people := make([]model.Person, 0, len(raw.People))
	for _, p := range raw.People {
		if len(people) == limits.maxPeople {
			break
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "Unknown"
		}
		relationship := strings.TrimSpace(p.Relationship)
		if relationship == "" {
			relationship = "unknown"
		}
		people = append(people, model.Person{Name: name, Relationship: relationship})
	}

	return model.AnalysisResult{
		Themes:     themes,
		Emotions:   emotions,
		TimePeriod: timePeriod,
		LifeStage:  lifeStage,
		People:     people,
		Locations:  filterNonEmpty(raw.Locations, limits.maxLocations),
		KeyEvents:  filterNonEmpty(raw.KeyEvents, limits.maxEvents),
		Summary:    common.Truncate(strings.TrimSpace(raw.Summary), limits.summaryLength),
	}
}

func filterMembers(values []string, member func(string) bool, max int) []string {
	out := []string{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || !member(v) {
			continue
		}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}

func filterNonEmpty(values []string, max int) []string {
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
