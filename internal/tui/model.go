// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/compquiz/internal/game"
	"github.com/verte-zerg/compquiz/internal/model"
	"github.com/verte-zerg/compquiz/internal/stats"
	"github.com/verte-zerg/compquiz/internal/store"
)

// Service is the remote question bank and evaluator.
type Service interface {
	FetchQuestion(ctx context.Context, level int) (model.Question, error)
	CheckAnswer(ctx context.Context, questionID, code string) (model.Verdict, error)
}

type questionMsg struct {
	ticket   game.Ticket
	level    int
	question model.Question
	err      error
}

type verdictMsg struct {
	ticket  game.Ticket
	request game.SubmitRequest
	verdict model.Verdict
	err     error
}

type tickMsg struct {
	round uint64
}

// Model implements the Bubble Tea quiz UI. All session mutations happen in
// Update, which serializes key presses, timer ticks and network responses.
type Model struct {
	session *game.Session
	service Service
	store   *store.Store
	logger  zerolog.Logger
	now     func() time.Time

	width  int
	height int

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	shownAt    time.Time
	status     string
	results    model.RunSummary
	resultsErr string
}

// NewModel constructs a quiz TUI model.
func NewModel(session *game.Session, service Service, st *store.Store, logger zerolog.Logger) *Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Enter your Python code here..."
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = accentStyle

	return &Model{
		session: session,
		service: service,
		store:   st,
		logger:  logger.With().Str("component", "tui").Logger(),
		now:     time.Now,
		input:   input,
		spinner: spin,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, m.contentWidth()-lipglossWidth(m.input.Prompt)-1)
		m.help.Width = m.width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case questionMsg:
		return m, m.handleQuestion(msg)
	case verdictMsg:
		return m, m.handleVerdict(msg)
	case tickMsg:
		return m, m.handleTick(msg)
	case spinner.TickMsg:
		if !m.session.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch m.session.Mode() {
	case game.ModeMenu:
		return m, m.handleMenuKey(msg)
	case game.ModeTimedSetup:
		return m, m.handleSetupKey(msg)
	case game.ModePlay:
		return m, m.handlePlayKey(msg)
	case game.ModeTimedResults:
		if key.Matches(msg, m.keys.Done) {
			m.transition(m.session.BackToMenu())
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Normal):
		req, err := m.session.StartPractice()
		if !m.transition(err) {
			return nil
		}
		m.logger.Info().Str("run_id", m.session.RunID()).Msg("practice started")
		return m.fetch(req)
	case key.Matches(msg, m.keys.Timed):
		m.transition(m.session.OpenTimedSetup())
	case key.Matches(msg, m.keys.MenuOut):
		return tea.Quit
	}
	return nil
}

func (m *Model) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Shorter):
		m.transition(m.session.AdjustTimeLimit(-model.TimeLimitStep))
	case key.Matches(msg, m.keys.Longer):
		m.transition(m.session.AdjustTimeLimit(model.TimeLimitStep))
	case key.Matches(msg, m.keys.Toggle):
		m.transition(m.session.ToggleLevel(levelFromKey(msg.String())))
	case key.Matches(msg, m.keys.Start):
		req, err := m.session.StartTimed()
		if !m.transition(err) {
			return nil
		}
		cfg := m.session.TimedConfig()
		m.logger.Info().
			Str("run_id", m.session.RunID()).
			Int("time_limit", cfg.TimeLimit).
			Str("levels", cfg.Levels.String()).
			Msg("timed session started")
		return tea.Batch(m.fetch(req), tick(m.session.Round()))
	case key.Matches(msg, m.keys.Back):
		m.transition(m.session.BackToMenu())
	}
	return nil
}

func (m *Model) handlePlayKey(msg tea.KeyMsg) tea.Cmd {
	verdict, hasVerdict := m.session.Verdict()
	switch {
	case hasVerdict && verdict.Correct && key.Matches(msg, m.keys.Next):
		req, err := m.session.Next()
		if !m.transition(err) {
			return nil
		}
		return m.fetch(req)
	case key.Matches(msg, m.keys.Submit):
		if !m.session.CanSubmit() {
			return nil
		}
		req, err := m.session.Submit()
		if !m.transition(err) {
			return nil
		}
		m.syncInput()
		return m.submit(req)
	case key.Matches(msg, m.keys.Retry):
		if m.transition(m.session.Retry()) {
			m.syncInput()
			return m.input.Focus()
		}
		return nil
	case key.Matches(msg, m.keys.Switch):
		if m.session.IsTimed() {
			return nil
		}
		req, err := m.session.SwitchLevel(levelFromKey(msg.String()))
		if !m.transition(err) {
			return nil
		}
		return m.fetch(req)
	case key.Matches(msg, m.keys.Menu):
		if m.transition(m.session.BackToMenu()) {
			m.syncInput()
		}
		return nil
	}
	if m.session.InputLocked() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	return cmd
}

func (m *Model) handleQuestion(msg questionMsg) tea.Cmd {
	if !m.session.ApplyFetch(msg.ticket, msg.question, msg.err) {
		m.logger.Debug().Uint64("round", msg.ticket.Round).Uint64("seq", msg.ticket.Seq).Msg("dropped stale question response")
		return nil
	}
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Int("level", msg.level).Msg("failed to fetch question")
		m.syncInput()
		return nil
	}
	m.shownAt = m.now()
	m.syncInput()
	return m.input.Focus()
}

func (m *Model) handleVerdict(msg verdictMsg) tea.Cmd {
	if !m.session.ApplySubmit(msg.ticket, msg.verdict, msg.err) {
		m.logger.Debug().Uint64("round", msg.ticket.Round).Uint64("seq", msg.ticket.Seq).Msg("dropped stale verdict")
		return nil
	}
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Str("question_id", msg.request.QuestionID).Msg("failed to submit answer")
		m.syncInput()
		return m.input.Focus()
	}
	m.recordAttempt(msg)
	m.syncInput()
	if msg.verdict.Correct {
		m.input.Blur()
		return nil
	}
	return m.input.Focus()
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	switch m.session.Tick(msg.round) {
	case game.TickRunning:
		return tick(msg.round)
	case game.TickExpired:
		m.logger.Info().
			Str("run_id", m.session.RunID()).
			Int("score", m.session.Score()).
			Int("total", m.session.Total()).
			Msg("timed session finished")
		m.syncInput()
		m.loadResults()
	}
	return nil
}

func (m *Model) recordAttempt(msg verdictMsg) {
	now := m.now()
	attempt := model.Attempt{
		RunID:      m.session.RunID(),
		Timed:      m.session.IsTimed(),
		Level:      msg.request.Level,
		QuestionID: msg.request.QuestionID,
		Correct:    msg.verdict.Correct,
		Errored:    msg.verdict.HasError(),
		Elapsed:    now.Sub(m.shownAt),
		AnsweredAt: now,
	}
	if _, err := m.store.InsertAttempt(context.Background(), attempt); err != nil {
		m.logger.Error().Err(err).Msg("failed to record attempt")
	}
}

func (m *Model) loadResults() {
	summary, err := stats.BuildRunSummary(context.Background(), m.store, m.session.RunID())
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load results")
		m.results = model.RunSummary{}
		m.resultsErr = "Failed to load the level breakdown."
		return
	}
	m.results = summary
	m.resultsErr = ""
}

// transition reports whether err is nil and turns a refused transition into a
// status line.
func (m *Model) transition(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, game.ErrNoLevels):
		m.status = "Select at least one level."
	case errors.Is(err, game.ErrTimedExitLocked):
		m.status = "The timed round runs until time is up."
	case errors.Is(err, game.ErrNotReady):
	default:
		m.logger.Debug().Err(err).Str("mode", m.session.Mode().String()).Msg("transition refused")
	}
	return false
}

func (m *Model) fetch(req game.FetchRequest) tea.Cmd {
	m.syncInput()
	svc := m.service
	fetch := func() tea.Msg {
		q, err := svc.FetchQuestion(context.Background(), req.Level)
		return questionMsg{ticket: req.Ticket, level: req.Level, question: q, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m *Model) submit(req game.SubmitRequest) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		v, err := svc.CheckAnswer(context.Background(), req.QuestionID, req.Code)
		return verdictMsg{ticket: req.Ticket, request: req, verdict: v, err: err}
	}
}

func tick(round uint64) tea.Cmd {
	return tea.Tick(game.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{round: round}
	})
}

// syncInput mirrors the session's code buffer into the text input.
func (m *Model) syncInput() {
	if m.input.Value() != m.session.Input() {
		m.input.SetValue(m.session.Input())
		m.input.CursorEnd()
	}
	if m.session.InputLocked() {
		m.input.Blur()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
