// Package game implements the quiz session state machine.
//
// A Session never performs I/O. Operations that need the remote service return
// a request tagged with a Ticket; the caller performs the request and hands the
// outcome back through ApplyFetch or ApplySubmit. Every transition that makes
// outstanding work irrelevant opens a new round, and results carrying an older
// round are discarded.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
)

// Mode is the active screen of a session.
type Mode int

const (
	// ModeMenu is the initial mode selection screen.
	ModeMenu Mode = iota
	// ModeTimedSetup configures a timed session.
	ModeTimedSetup
	// ModePlay shows questions, timed or untimed.
	ModePlay
	// ModeTimedResults shows the final score of an expired timed session.
	ModeTimedResults
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModeTimedSetup:
		return "timed-setup"
	case ModePlay:
		return "play"
	case ModeTimedResults:
		return "timed-results"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SubmissionFailedMessage is the verdict error shown when the evaluator could not be reached.
const SubmissionFailedMessage = "submission failed"

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current mode.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNoLevels is returned when a timed session is started without eligible levels.
	ErrNoLevels = errors.New("no levels selected")
	// ErrTimedExitLocked is returned when leaving a running timed session.
	ErrTimedExitLocked = errors.New("timed session is running")
	// ErrTimeLimit is returned for a time limit outside the allowed range.
	ErrTimeLimit = errors.New("time limit out of range")
	// ErrNotReady is returned when an action is unavailable in the current question state.
	ErrNotReady = errors.New("action not available")
)

// Ticket identifies an outstanding request.
type Ticket struct {
	Round uint64
	Seq   uint64
}

// FetchRequest asks for a new question. Level 0 lets the server choose.
type FetchRequest struct {
	Ticket Ticket
	Level  int
}

// SubmitRequest asks the evaluator to check Code against QuestionID.
type SubmitRequest struct {
	Ticket     Ticket
	QuestionID string
	Level      int
	Code       string
}

// Session owns all quiz state. It is not safe for concurrent use; callers
// serialize access through a single event loop.
type Session struct {
	mode          Mode
	score         int
	total         int
	question      *model.Question
	verdict       *model.Verdict
	selectedLevel int
	timedConfig   model.TimedConfig
	timed         *TimedState
	input         string

	loading     bool
	fetchFailed bool
	submitting  bool

	round         uint64
	seq           uint64
	pendingFetch  uint64
	pendingSubmit uint64
	runID         string

	rnd   *rand.Rand
	newID func() string
}

// Option customizes a Session.
type Option func(*Session)

// WithRand sets the random source used for timed level draws.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) {
		s.rnd = rnd
	}
}

// WithRunIDs sets the generator for run identifiers.
func WithRunIDs(next func() string) Option {
	return func(s *Session) {
		s.newID = next
	}
}

// New returns a session in ModeMenu seeded with the given timed setup.
func New(cfg model.TimedConfig, opts ...Option) *Session {
	if cfg.TimeLimit < model.MinTimeLimit || cfg.TimeLimit > model.MaxTimeLimit {
		cfg.TimeLimit = model.DefaultTimeLimit
	}
	s := &Session{
		mode:        ModeMenu,
		timedConfig: cfg,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Score returns the number of correct answers.
func (s *Session) Score() int { return s.score }

// Total returns the number of evaluated submissions.
func (s *Session) Total() int { return s.total }

// Question returns the active question, if any.
func (s *Session) Question() (model.Question, bool) {
	if s.question == nil {
		return model.Question{}, false
	}
	return *s.question, true
}

// Verdict returns the last verdict, if any.
func (s *Session) Verdict() (model.Verdict, bool) {
	if s.verdict == nil {
		return model.Verdict{}, false
	}
	return *s.verdict, true
}

// SelectedLevel returns the level used for untimed refetches, 0 if none yet.
func (s *Session) SelectedLevel() int { return s.selectedLevel }

// TimedConfig returns the timed setup.
func (s *Session) TimedConfig() model.TimedConfig { return s.timedConfig }

// Timed returns the countdown state of the current or last timed session.
func (s *Session) Timed() (TimedState, bool) {
	if s.timed == nil {
		return TimedState{}, false
	}
	return *s.timed, true
}

// IsTimed reports whether the session is in a timed round (running or finished).
func (s *Session) IsTimed() bool { return s.timed != nil }

// Input returns the learner's code buffer.
func (s *Session) Input() string { return s.input }

// Loading reports whether a question fetch is outstanding.
func (s *Session) Loading() bool { return s.loading }

// FetchFailed reports whether the last fetch failed.
func (s *Session) FetchFailed() bool { return s.fetchFailed }

// Submitting reports whether a submission is outstanding.
func (s *Session) Submitting() bool { return s.submitting }

// Round returns the identity of the current round.
func (s *Session) Round() uint64 { return s.round }

// RunID identifies the current practice or timed run.
func (s *Session) RunID() string { return s.runID }

// InputLocked reports whether the code buffer rejects edits.
func (s *Session) InputLocked() bool {
	if s.mode != ModePlay || s.question == nil || s.submitting {
		return true
	}
	return s.verdict != nil && s.verdict.Correct
}

// CanSubmit reports whether Submit would succeed.
func (s *Session) CanSubmit() bool {
	return !s.InputLocked() && strings.TrimSpace(s.input) != ""
}

// CanStartTimed reports whether StartTimed would succeed.
func (s *Session) CanStartTimed() bool {
	return s.mode == ModeTimedSetup && !s.timedConfig.Levels.Empty()
}

// SetInput replaces the code buffer. Edits are dropped while the input is locked.
func (s *Session) SetInput(code string) {
	if s.InputLocked() {
		return
	}
	s.input = code
}

// StartPractice enters untimed play and requests an unconstrained question.
// Score and total carry over from earlier untimed rounds.
func (s *Session) StartPractice() (FetchRequest, error) {
	if err := s.require("start practice", ModeMenu); err != nil {
		return FetchRequest{}, err
	}
	s.newRound()
	s.timed = nil
	s.runID = s.newID()
	s.mode = ModePlay
	return s.issueFetch(0), nil
}

// OpenTimedSetup shows the timed setup, keeping the last used configuration.
func (s *Session) OpenTimedSetup() error {
	if err := s.require("open timed setup", ModeMenu); err != nil {
		return err
	}
	s.mode = ModeTimedSetup
	return nil
}

// SetTimeLimit sets the timed session length in seconds.
func (s *Session) SetTimeLimit(seconds int) error {
	if err := s.require("set time limit", ModeTimedSetup); err != nil {
		return err
	}
	if seconds < model.MinTimeLimit || seconds > model.MaxTimeLimit {
		return fmt.Errorf("%w: %d not in %d-%d", ErrTimeLimit, seconds, model.MinTimeLimit, model.MaxTimeLimit)
	}
	s.timedConfig.TimeLimit = seconds
	return nil
}

// AdjustTimeLimit moves the time limit by delta seconds, clamped to the allowed range.
func (s *Session) AdjustTimeLimit(delta int) error {
	if err := s.require("adjust time limit", ModeTimedSetup); err != nil {
		return err
	}
	next := s.timedConfig.TimeLimit + delta
	if next < model.MinTimeLimit {
		next = model.MinTimeLimit
	}
	if next > model.MaxTimeLimit {
		next = model.MaxTimeLimit
	}
	s.timedConfig.TimeLimit = next
	return nil
}

// ToggleLevel flips eligibility of level for timed draws.
func (s *Session) ToggleLevel(level int) error {
	if err := s.require("toggle level", ModeTimedSetup); err != nil {
		return err
	}
	return s.timedConfig.Levels.Toggle(level)
}

// StartTimed resets the score and starts the countdown. The caller starts the
// timer with Round() after this returns.
func (s *Session) StartTimed() (FetchRequest, error) {
	if err := s.require("start timed", ModeTimedSetup); err != nil {
		return FetchRequest{}, err
	}
	if s.timedConfig.Levels.Empty() {
		return FetchRequest{}, ErrNoLevels
	}
	s.newRound()
	s.score = 0
	s.total = 0
	s.timed = &TimedState{Remaining: s.timedConfig.TimeLimit, Active: true}
	s.runID = s.newID()
	s.mode = ModePlay
	return s.issueFetch(s.drawLevel()), nil
}

// Submit marks the current answer as in flight.
func (s *Session) Submit() (SubmitRequest, error) {
	if err := s.require("submit", ModePlay); err != nil {
		return SubmitRequest{}, err
	}
	switch {
	case s.question == nil:
		return SubmitRequest{}, fmt.Errorf("%w: no active question", ErrNotReady)
	case s.submitting:
		return SubmitRequest{}, fmt.Errorf("%w: submission in flight", ErrNotReady)
	case s.verdict != nil && s.verdict.Correct:
		return SubmitRequest{}, fmt.Errorf("%w: question already answered", ErrNotReady)
	case strings.TrimSpace(s.input) == "":
		return SubmitRequest{}, fmt.Errorf("%w: empty answer", ErrNotReady)
	}
	s.seq++
	s.pendingSubmit = s.seq
	s.submitting = true
	return SubmitRequest{
		Ticket:     Ticket{Round: s.round, Seq: s.seq},
		QuestionID: s.question.ID,
		Level:      s.question.Level,
		Code:       s.input,
	}, nil
}

// Next requests the following question after a correct answer.
func (s *Session) Next() (FetchRequest, error) {
	if err := s.require("next question", ModePlay); err != nil {
		return FetchRequest{}, err
	}
	if s.verdict == nil || !s.verdict.Correct {
		return FetchRequest{}, fmt.Errorf("%w: answer not correct yet", ErrNotReady)
	}
	if s.timed != nil {
		if !s.timed.Active {
			return FetchRequest{}, fmt.Errorf("%w: time is up", ErrNotReady)
		}
		return s.issueFetch(s.drawLevel()), nil
	}
	return s.issueFetch(s.selectedLevel), nil
}

// Retry clears an incorrect verdict so the learner can edit the answer again.
func (s *Session) Retry() error {
	if err := s.require("retry", ModePlay); err != nil {
		return err
	}
	if s.verdict == nil || s.verdict.Correct {
		return fmt.Errorf("%w: nothing to retry", ErrNotReady)
	}
	s.verdict = nil
	return nil
}

// SwitchLevel abandons the current question and fetches one of the given level.
func (s *Session) SwitchLevel(level int) (FetchRequest, error) {
	if err := s.require("switch level", ModePlay); err != nil {
		return FetchRequest{}, err
	}
	if s.timed != nil {
		return FetchRequest{}, fmt.Errorf("%w: switch level during timed session", ErrInvalidTransition)
	}
	if !levels.Valid(level) {
		return FetchRequest{}, fmt.Errorf("level %d out of range %d-%d", level, levels.Min, levels.Max)
	}
	s.selectedLevel = level
	return s.issueFetch(level), nil
}

// BackToMenu returns to the menu. A running timed session cannot be left.
func (s *Session) BackToMenu() error {
	switch s.mode {
	case ModeTimedSetup:
	case ModePlay:
		if s.timed != nil {
			return ErrTimedExitLocked
		}
		s.newRound()
		s.question = nil
		s.verdict = nil
		s.input = ""
		s.fetchFailed = false
	case ModeTimedResults:
		s.timed = nil
	default:
		return fmt.Errorf("%w: back to menu from %s", ErrInvalidTransition, s.mode)
	}
	s.mode = ModeMenu
	return nil
}

// ApplyFetch applies the outcome of a FetchRequest. It reports whether the
// outcome was applied; outcomes of superseded requests are dropped.
func (s *Session) ApplyFetch(t Ticket, q model.Question, err error) bool {
	if s.mode != ModePlay || t.Round != s.round || s.pendingFetch == 0 || t.Seq != s.pendingFetch {
		return false
	}
	s.pendingFetch = 0
	s.loading = false
	if err != nil {
		s.question = nil
		s.fetchFailed = true
		return true
	}
	s.question = &q
	s.verdict = nil
	s.input = ""
	s.selectedLevel = q.Level
	s.fetchFailed = false
	return true
}

// ApplySubmit applies the outcome of a SubmitRequest. A transport failure
// produces a local incorrect verdict that is not counted toward the total.
func (s *Session) ApplySubmit(t Ticket, v model.Verdict, err error) bool {
	if s.mode != ModePlay || t.Round != s.round || s.pendingSubmit == 0 || t.Seq != s.pendingSubmit {
		return false
	}
	s.pendingSubmit = 0
	s.submitting = false
	if err != nil {
		s.verdict = &model.Verdict{Correct: false, Error: SubmissionFailedMessage}
		return true
	}
	s.total++
	if v.Correct {
		s.score++
	}
	s.verdict = &v
	return true
}

func (s *Session) issueFetch(level int) FetchRequest {
	s.seq++
	s.pendingFetch = s.seq
	s.pendingSubmit = 0
	s.submitting = false
	s.loading = true
	s.fetchFailed = false
	s.question = nil
	s.verdict = nil
	s.input = ""
	return FetchRequest{Ticket: Ticket{Round: s.round, Seq: s.seq}, Level: level}
}

func (s *Session) newRound() {
	s.round++
	s.pendingFetch = 0
	s.pendingSubmit = 0
	s.loading = false
	s.submitting = false
}

func (s *Session) drawLevel() int {
	level, ok := s.timedConfig.Levels.Draw(s.rnd)
	if !ok {
		return 0
	}
	return level
}

func (s *Session) require(op string, modes ...Mode) error {
	for _, m := range modes {
		if s.mode == m {
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, s.mode)
}
