package engine

import (
	"time"
)

// Time allocation constants.
const (
	DefaultMoveTime = 2 * time.Second
	turnSafety      = 10 // percent of timeout_turn kept in reserve
	minMoveTime     = 10 * time.Millisecond
	minMovesToGo    = 10
)

// TurnLimits are the clock constraints known for the next move. Zero values
// mean "not reported by the referee".
type TurnLimits struct {
	MoveTime    time.Duration // configured budget per move
	TimeoutTurn time.Duration // INFO timeout_turn
	TimeLeft    time.Duration // INFO time_left
	MovesPlayed int           // stones on the board, to estimate moves to go
}

// TimeManager handles the wall-clock deadline of one search.
type TimeManager struct {
	budget    time.Duration
	startTime time.Time
	deadline  time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new move.
func (tm *TimeManager) Init(limits TurnLimits) {
	tm.startTime = time.Now()
	tm.budget = Budget(limits)
	tm.deadline = tm.startTime.Add(tm.budget)
}

// Budget computes the time to spend on a move.
func Budget(limits TurnLimits) time.Duration {
	budget := limits.MoveTime
	if budget <= 0 {
		budget = DefaultMoveTime
	}

	capped := false
	if limits.TimeoutTurn > 0 {
		turn := limits.TimeoutTurn * (100 - turnSafety) / 100
		if turn < budget {
			budget = turn
			capped = true
		}
	}

	if limits.TimeLeft > 0 {
		// Sudden death: estimate moves remaining based on stones placed
		mtg := (400 - limits.MovesPlayed) / 4
		if mtg < minMovesToGo {
			mtg = minMovesToGo
		}
		share := limits.TimeLeft / time.Duration(mtg)
		if share < budget {
			budget = share
			capped = true
		}
	}

	// A referee clock never squeezes a move below minMoveTime; an explicit
	// configured budget is honoured as given.
	if capped && budget < minMoveTime {
		budget = minMoveTime
	}
	return budget
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the time allotted to this move.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Expired reports whether the deadline has passed.
func (tm *TimeManager) Expired() bool {
	return !time.Now().Before(tm.deadline)
}

// PastHalf reports whether more than half the budget is used; starting another
// iteration after that point rarely completes.
func (tm *TimeManager) PastHalf() bool {
	return tm.Elapsed()*2 > tm.budget
}
