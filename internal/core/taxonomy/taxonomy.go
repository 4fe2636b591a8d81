// Package taxonomy holds the fixed vocabularies of permitted story tags.
// Classifier output is validated against these sets; anything outside
// them is dropped before persistence.
package taxonomy

import "strings"

// Unknown is the sentinel for an undetectable time period or life stage.
const Unknown = "unknown"

// Themes are the permitted story theme labels.
var Themes = []string{
	"childhood",
	"family",
	"cooking",
	"travel",
	"celebration",
	"military",
	"education",
	"career",
	"music",
	"sports",
	"tradition",
	"heritage",
	"friendship",
	"immigration",
	"holiday",
	"faith",
	"nature",
	"home",
}

// Emotions are the permitted story emotion labels.
var Emotions = []string{
	"joy",
	"nostalgia",
	"pride",
	"sadness",
	"hope",
	"gratitude",
	"love",
	"peace",
	"excitement",
	"wonder",
	"longing",
	"bittersweet",
}

// TimePeriods are the recognized decades.
var TimePeriods = []string{
	"1920s", "1930s", "1940s", "1950s", "1960s",
	"1970s", "1980s", "1990s", "2000s", "2010s", "2020s",
}

// LifeStages are the recognized life stages, ordered youngest first.
var LifeStages = []string{
	"infancy",
	"childhood",
	"adolescence",
	"young-adult",
	"middle-age",
	"senior",
	"multi-generational",
}

var (
	themeSet     = toSet(Themes)
	emotionSet   = toSet(Emotions)
	periodSet    = toSet(TimePeriods)
	lifeStageSet = toSet(LifeStages)
)

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func IsTheme(v string) bool     { return themeSet[strings.ToLower(v)] }
func IsEmotion(v string) bool   { return emotionSet[strings.ToLower(v)] }
func IsLifeStage(v string) bool { return lifeStageSet[strings.ToLower(v)] }

// IsTimePeriod accepts recognized decades only; Unknown is handled by
// the caller as the fallback value, not as a member.
func IsTimePeriod(v string) bool { return periodSet[strings.ToLower(v)] }
