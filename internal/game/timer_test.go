package game

import (
	"testing"

	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
)

// startTimed starts a timed session whose countdown begins at remaining seconds,
// which may be below the configurable minimum.
func startTimed(t *testing.T, remaining int, set levels.Set) (*Session, FetchRequest) {
	t.Helper()
	s := newTestSession(model.TimedConfig{TimeLimit: model.MinTimeLimit, Levels: set})
	if err := s.OpenTimedSetup(); err != nil {
		t.Fatalf("open timed setup: %v", err)
	}
	req, err := s.StartTimed()
	if err != nil {
		t.Fatalf("start timed: %v", err)
	}
	s.timed.Remaining = remaining
	return s, req
}

func TestTimedStateTick(t *testing.T) {
	for n := 1; n <= 15; n++ {
		ts := TimedState{Remaining: n, Active: true}
		ticks := 0
		for {
			ticks++
			if ts.tick() {
				break
			}
			if ticks > n {
				t.Fatalf("n=%d: countdown did not expire", n)
			}
		}
		if ticks != n {
			t.Fatalf("n=%d: expected %d ticks, got %d", n, n, ticks)
		}
		if ts.Remaining != 0 || ts.Active {
			t.Fatalf("n=%d: unexpected final state %+v", n, ts)
		}
		if ts.tick() {
			t.Fatalf("n=%d: expired twice", n)
		}
	}
}

func TestTickExpiresAfterExactlyNTicks(t *testing.T) {
	for _, n := range []int{1, 2, 10, 37} {
		s, _ := startTimed(t, n, levels.All())
		round := s.Round()
		for i := 1; i < n; i++ {
			if got := s.Tick(round); got != TickRunning {
				t.Fatalf("n=%d tick %d: expected running, got %s", n, i, got)
			}
		}
		if got := s.Tick(round); got != TickExpired {
			t.Fatalf("n=%d: expected expiry on tick %d, got %s", n, n, got)
		}
		if s.Mode() != ModeTimedResults {
			t.Fatalf("n=%d: expected results, got %s", n, s.Mode())
		}
		ts, _ := s.Timed()
		if ts.Remaining != 0 || ts.Active {
			t.Fatalf("n=%d: unexpected timed state %+v", n, ts)
		}
		if got := s.Tick(round); got != TickStale {
			t.Fatalf("n=%d: expected stale after expiry, got %s", n, got)
		}
	}
}

func TestTimedScenarioNoSubmissions(t *testing.T) {
	s, _ := startTimed(t, 10, levels.Of(1))
	round := s.Round()
	results := 0
	for i := 0; i < 10; i++ {
		if s.Tick(round) == TickExpired {
			results++
		}
	}
	if results != 1 {
		t.Fatalf("expected exactly one expiry, got %d", results)
	}
	if s.Mode() != ModeTimedResults {
		t.Fatalf("expected results, got %s", s.Mode())
	}
	if s.Score() != 0 || s.Total() != 0 {
		t.Fatalf("expected 0/0, got %d/%d", s.Score(), s.Total())
	}
}

func TestLateResponsesAfterExpiryAreDropped(t *testing.T) {
	s, fetch := startTimed(t, 3, levels.Of(1))
	mustFetch(t, s, fetch, question("q1", 1))
	answer(t, s, "x", model.Verdict{Correct: true})

	next, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	mustFetch(t, s, next, question("q2", 1))
	s.SetInput("y")
	sub, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	round := s.Round()
	for s.Tick(round) == TickRunning {
	}
	if s.Mode() != ModeTimedResults {
		t.Fatalf("expected results, got %s", s.Mode())
	}
	if s.ApplySubmit(sub.Ticket, model.Verdict{Correct: true}, nil) {
		t.Fatalf("expected late submit to be dropped")
	}
	if s.ApplyFetch(next.Ticket, question("late", 1), nil) {
		t.Fatalf("expected late fetch to be dropped")
	}
	if s.Score() != 1 || s.Total() != 1 {
		t.Fatalf("expected 1/1 after expiry, got %d/%d", s.Score(), s.Total())
	}
	if _, ok := s.Question(); ok {
		t.Fatalf("expected no active question on results")
	}
}

func TestLateFetchAfterExpiryIsDropped(t *testing.T) {
	s, fetch := startTimed(t, 1, levels.Of(2))
	if got := s.Tick(s.Round()); got != TickExpired {
		t.Fatalf("expected expiry, got %s", got)
	}
	if s.ApplyFetch(fetch.Ticket, question("late", 2), nil) {
		t.Fatalf("expected late fetch to be dropped")
	}
	if _, ok := s.Question(); ok {
		t.Fatalf("expected no question")
	}
}

func TestResultsBackToMenuClearsTimedState(t *testing.T) {
	s, _ := startTimed(t, 1, levels.All())
	round := s.Round()
	s.Tick(round)
	if err := s.BackToMenu(); err != nil {
		t.Fatalf("back to menu: %v", err)
	}
	if _, ok := s.Timed(); ok {
		t.Fatalf("expected timed state cleared")
	}
	if s.Mode() != ModeMenu {
		t.Fatalf("expected menu, got %s", s.Mode())
	}
}

func TestTickFromAbandonedRoundIsIgnored(t *testing.T) {
	s, _ := startTimed(t, 30, levels.All())
	oldRound := s.Round()
	if s.Tick(oldRound) != TickRunning {
		t.Fatalf("expected running")
	}
	s.Tick(oldRound)
	for s.Tick(oldRound) == TickRunning {
	}
	_ = s.BackToMenu()
	_ = s.OpenTimedSetup()
	if err := s.SetTimeLimit(30); err != nil {
		t.Fatalf("set time limit: %v", err)
	}
	if _, err := s.StartTimed(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := s.Tick(oldRound); got != TickStale {
		t.Fatalf("expected stale tick from previous run, got %s", got)
	}
	ts, _ := s.Timed()
	if ts.Remaining != 30 {
		t.Fatalf("expected untouched countdown, got %d", ts.Remaining)
	}
}

func TestTickIgnoredInUntimedPlay(t *testing.T) {
	s := newTestSession(model.DefaultTimedConfig())
	_, _ = s.StartPractice()
	if got := s.Tick(s.Round()); got != TickStale {
		t.Fatalf("expected stale tick in untimed play, got %s", got)
	}
}
