// Package analysis turns free-form text into a sentiment/energy/keyword result.
//
// Service.ProcessText is the entry point used by the HTTP and MCP surfaces. It
// asks the configured LLM provider first and falls back to AnalyzeHeuristic
// on any failure, so callers always receive an in-range Result.
package analysis

import "time"

const (
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelPositive = "positive"
)

// Result is the canonical analysis output. Values are always in range:
// scores in [0,1], label one of the Label* constants, keywords non-nil.
type Result struct {
	SentimentScore float64  `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
	Energy         float64  `json:"energy"`
	Keywords       []string `json:"keywords"`
}

// Source says where a Result came from.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceCache     Source = "cache"
	SourceHeuristic Source = "heuristic"
)

// FailureKind tags why the LLM path was abandoned. Empty means it was not.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureConfig    FailureKind = "config"
	FailureTransport FailureKind = "transport"
	FailureParse     FailureKind = "parse"
	FailureCoercion  FailureKind = "coercion"
	FailureUnknown   FailureKind = "unknown"
)

// Outcome records how a Result was produced. It is published on the event
// bus and logged; the HTTP response only carries Result.
type Outcome struct {
	Result     Result
	Source     Source
	Provider   string
	Model      string
	Failure    FailureKind
	Err        error
	Duration   time.Duration
	TextLength int
	TextSHA256 string
	At         time.Time
}

// TopicAnalysisCompleted is published once per analysis with an Outcome payload.
const TopicAnalysisCompleted = "analysis.completed"
