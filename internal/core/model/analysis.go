package model

import "time"

// Confidence grades an analysis result. "demo" marks heuristic output
// produced without the external model; "none" marks total failure.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
	ConfidenceDemo   Confidence = "demo"
)

// Person is one person mentioned in a story, as seen by the classifier.
type Person struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// AnalysisResult is the structured output of a single classification run.
// It is always structurally valid: themes/emotions are taxonomy members,
// sequence lengths respect the configured caps, and the summary is bounded.
type AnalysisResult struct {
	Themes     []string   `json:"themes"`
	Emotions   []string   `json:"emotions"`
	TimePeriod string     `json:"timePeriod"`
	LifeStage  string     `json:"lifeStage"`
	People     []Person   `json:"people"`
	Locations  []string   `json:"locations"`
	KeyEvents  []string   `json:"keyEvents"`
	Summary    string     `json:"summary"`
	Confidence Confidence `json:"confidence"`
}

// EmptyResult is the last-resort record persisted when the whole analysis
// pipeline fails. Absence of a row means "pending"; this means "gave up".
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		Themes:     []string{},
		Emotions:   []string{},
		TimePeriod: "unknown",
		LifeStage:  "unknown",
		People:     []Person{},
		Locations:  []string{},
		KeyEvents:  []string{},
		Confidence: ConfidenceNone,
	}
}

// StoryAnalysis is the persisted form of an AnalysisResult, unique per
// story. Re-analysis overwrites the row wholesale; no history is kept.
type StoryAnalysis struct {
	StoryID    string    `json:"storyId"`
	AnalysisResult
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// AnalysisJob is the queue-resident unit of work. Retries redeliver the
// same job identity rather than minting a new one.
type AnalysisJob struct {
	ID      string     `json:"id"`
	StoryID string     `json:"storyId"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Media   []MediaRef `json:"media,omitempty"`
	Attempt int        `json:"attempt"`
}
