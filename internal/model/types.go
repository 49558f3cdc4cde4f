// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/compquiz/internal/levels"
)

// Time limit bounds for timed sessions, in seconds.
const (
	MinTimeLimit     = 10
	MaxTimeLimit     = 600
	TimeLimitStep    = 10
	DefaultTimeLimit = 120
)

// Config defines client settings.
type Config struct {
	APIURL    string
	TimeLimit int
	Levels    levels.Set
	Timeout   time.Duration
	Retries   int
	LogLevel  string
	LogFile   string
}

// ContextEntry is one variable shown alongside a question prompt.
type ContextEntry struct {
	Name  string
	Value string
}

// Question is a single code-prediction exercise. It is not modified after fetch.
type Question struct {
	ID      string
	Level   int
	Prompt  string
	Context []ContextEntry
}

// Verdict is the evaluator's answer to a submission.
// Expected and UserResult are set only for incorrect answers without Error.
type Verdict struct {
	Correct    bool
	Expected   string
	UserResult string
	Error      string
}

// HasError reports whether evaluation failed instead of producing a result.
func (v Verdict) HasError() bool {
	return v.Error != ""
}

// TimedConfig holds the timed mode setup.
type TimedConfig struct {
	TimeLimit int
	Levels    levels.Set
}

// DefaultTimedConfig returns the initial timed setup: 120 seconds, every level.
func DefaultTimedConfig() TimedConfig {
	return TimedConfig{TimeLimit: DefaultTimeLimit, Levels: levels.All()}
}

// Attempt captures one evaluated submission.
type Attempt struct {
	RunID      string
	Timed      bool
	Level      int
	QuestionID string
	Correct    bool
	Errored    bool
	Elapsed    time.Duration
	AnsweredAt time.Time
}

// LevelSummary aggregates attempts for one level.
type LevelSummary struct {
	Level   int
	Correct int
	Total   int
}

// RunSummary aggregates every attempt of a run.
type RunSummary struct {
	RunID    string
	Levels   []LevelSummary
	Elapsed  []time.Duration
	Correct  int
	Total    int
	Errored  int
	Finished time.Time
}
