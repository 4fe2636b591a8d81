package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/storynest/storynest/internal/core/common"
	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/core/taxonomy"
)

// The heuristic classifier is the offline fallback: a pure function of
// (title, content) built from ordered rule tables, so its precedence
// behavior can be audited and tested in isolation.

type detector struct {
	label   string
	pattern *regexp.Regexp
}

var themeDetectors = []detector{
	{"childhood", regexp.MustCompile(`growing up|child|kid|playground|school days|little girl|little boy`)},
	{"family", regexp.MustCompile(`famil|mother|father|mom|dad|brother|sister|aunt|uncle|cousin`)},
	{"cooking", regexp.MustCompile(`cook|recipe|kitchen|baking|baked|meal|dinner|supper`)},
	{"travel", regexp.MustCompile(`travel|trip|journey|visited|vacation|voyage|abroad`)},
	{"celebration", regexp.MustCompile(`birthday|wedding|anniversary|christmas|hanukkah|thanksgiving|party|celebrat`)},
	{"military", regexp.MustCompile(`army|navy|war|soldier|military|deployed|veteran|drafted`)},
	{"education", regexp.MustCompile(`school|college|university|teacher|graduat|classroom|studied`)},
	{"career", regexp.MustCompile(`job|work|career|factory|office|business|retired from`)},
	{"music", regexp.MustCompile(`music|song|piano|guitar|singing|sang|band|choir`)},
	{"sports", regexp.MustCompile(`baseball|football|basketball|soccer|game|team|coach|played`)},
	{"tradition", regexp.MustCompile(`tradition|every year|always|custom|ritual|passed down`)},
}

var emotionDetectors = []detector{
	{"joy", regexp.MustCompile(`happy|joy|laugh|fun|delight|wonderful`)},
	{"nostalgia", regexp.MustCompile(`remember|memor|back then|those days|used to|miss`)},
	{"pride", regexp.MustCompile(`proud|pride|accomplish|achievement`)},
	{"sadness", regexp.MustCompile(`sad|cried|tears|loss|passed away|funeral`)},
	{"hope", regexp.MustCompile(`hope|dream|wish|future|someday`)},
	{"gratitude", regexp.MustCompile(`grateful|thankful|blessed|appreciate`)},
	{"love", regexp.MustCompile(`love|adore|cherish|dear|sweetheart`)},
	{"peace", regexp.MustCompile(`peaceful|calm|quiet|serene|content`)},
	{"excitement", regexp.MustCompile(`excit|thrill|adventure|amazing|couldn't wait`)},
}

// lifeStageRules is an ordered decision list: first match wins.
var lifeStageRules = []detector{
	{"infancy", regexp.MustCompile(`\bbaby\b|infant|newborn|toddler`)},
	{"childhood", regexp.MustCompile(`\bchild\b|childhood|\bkid\b|elementary|grade school|growing up`)},
	{"adolescence", regexp.MustCompile(`teenager|\bteen\b|high school|adolescen`)},
	{"young-adult", regexp.MustCompile(`college|university|first job|newlywed|wedding day|my twenties`)},
	{"middle-age", regexp.MustCompile(`raising (my|our) (kids|children)|middle age|my forties|my fifties`)},
	{"senior", regexp.MustCompile(`retire|elderly|golden years|nursing home|old age`)},
	{"multi-generational", regexp.MustCompile(`generations|family reunion|ancestor|descendant`)},
}

var grandparentPattern = regexp.MustCompile(`grandparent|grandmother|grandfather|grandma|grandpa|granny|nana`)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// gazetteer is the fixed set of place names the fallback can spot.
var gazetteer = []string{
	"New York", "Brooklyn", "Chicago", "Boston", "California",
	"Texas", "Ohio", "London", "Paris", "Ireland", "Italy",
	"Poland", "Germany", "Mexico", "Vietnam", "Korea", "Japan",
}

// heuristicAnalyze produces a keyword-based analysis without touching
// the model. Output is deterministic for a given (title, content).
func heuristicAnalyze(title, content string, limits limitSet) model.AnalysisResult {
	text := strings.ToLower(title + " " + content)

	themes := matchDetectors(themeDetectors, text)
	switch len(themes) {
	case 0:
		themes = []string{"family", "tradition"}
	case 1:
		themes = append(themes, "heritage")
	}

	emotions := matchDetectors(emotionDetectors, text)
	switch len(emotions) {
	case 0:
		emotions = []string{"nostalgia", "love"}
	case 1:
		emotions = append(emotions, "gratitude")
	}

	lifeStage := taxonomy.Unknown
	for _, rule := range lifeStageRules {
		if rule.pattern.MatchString(text) {
			lifeStage = rule.label
			break
		}
	}
	if lifeStage == taxonomy.Unknown && grandparentPattern.MatchString(text) {
		lifeStage = "multi-generational"
	}

	locations := []string{}
	for _, place := range gazetteer {
		if strings.Contains(text, strings.ToLower(place)) {
			locations = append(locations, place)
			if len(locations) == limits.maxLocations {
				break
			}
		}
	}

	titleTrimmed := strings.TrimSpace(title)
	summary := common.Truncate(titleTrimmed, limits.summaryLength)
	if titleTrimmed == "" {
		summary = bodySummary(strings.TrimSpace(content), limits.summaryLength)
	}

	return model.AnalysisResult{
		Themes:     clampList(themes, limits.maxThemes),
		Emotions:   clampList(emotions, limits.maxEmotions),
		TimePeriod: detectDecade(text),
		LifeStage:  lifeStage,
		People:     []model.Person{},
		Locations:  locations,
		KeyEvents:  []string{},
		Summary:    summary,
		Confidence: model.ConfidenceDemo,
	}
}

// bodySummary excerpts the opening of the body. The ellipsis is
// unconditional: a summary lifted from the body is always an excerpt.
func bodySummary(body string, max int) string {
	runes := []rune(body)
	if cut := max - 3; cut > 0 && len(runes) > cut {
		runes = runes[:cut]
	}
	return string(runes) + "..."
}

func matchDetectors(detectors []detector, text string) []string {
	labels := []string{}
	for _, d := range detectors {
		if d.pattern.MatchString(text) {
			labels = append(labels, d.label)
		}
	}
	return labels
}

// detectDecade prefers a literal decade mention ("the 1950s"), then
// falls back to flooring any 4-digit year. A floored decade outside the
// recognized set (a 1915 birth year, say) reads as unknown.
func detectDecade(text string) string {
	for _, decade := range taxonomy.TimePeriods {
		if strings.Contains(text, decade) {
			return decade
		}
	}
	if match := yearPattern.FindString(text); match != "" {
		year, err := strconv.Atoi(match)
		if err == nil {
			if decade := fmt.Sprintf("%ds", year/10*10); taxonomy.IsTimePeriod(decade) {
				return decade
			}
		}
	}
	return taxonomy.Unknown
}

func clampList(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}
