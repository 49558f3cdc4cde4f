package game

import "time"

// TickInterval is the countdown resolution of timed sessions.
const TickInterval = time.Second

// TimedState is the countdown of a timed session.
type TimedState struct {
	Remaining int
	Active    bool
}

// TickResult reports what a timer tick did.
type TickResult int

const (
	// TickStale means the tick belonged to a finished or abandoned round and was ignored.
	TickStale TickResult = iota
	// TickRunning means a second was consumed and the countdown continues.
	TickRunning
	// TickExpired means the countdown reached zero and the session moved to results.
	TickExpired
)

func (r TickResult) String() string {
	switch r {
	case TickRunning:
		return "running"
	case TickExpired:
		return "expired"
	default:
		return "stale"
	}
}

// tick consumes one second. It reports true exactly once, when the countdown ends.
func (t *TimedState) tick() bool {
	if !t.Active {
		return false
	}
	if t.Remaining <= 1 {
		t.Remaining = 0
		t.Active = false
		return true
	}
	t.Remaining--
	return false
}

// Tick advances the countdown of the timed round identified by round.
// Ticks scheduled under an earlier round are ignored, so a timer that outlives
// its session can never fire a transition. The caller keeps ticking only while
// the result is TickRunning.
func (s *Session) Tick(round uint64) TickResult {
	if round != s.round || s.mode != ModePlay || s.timed == nil || !s.timed.Active {
		return TickStale
	}
	if !s.timed.tick() {
		return TickRunning
	}
	s.newRound()
	s.mode = ModeTimedResults
	s.question = nil
	s.verdict = nil
	s.input = ""
	s.fetchFailed = false
	return TickExpired
}
