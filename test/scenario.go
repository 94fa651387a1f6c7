// Package test - scenario.go
// Scripted scenario: "El Primer Minuto"
// Drives a real Session through the canonical early-game progression
// with a manual clock and validates the economy invariants end to end.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/ClickAndHide/server/internal/clock"
	"github.com/MRamiBalles/ClickAndHide/server/internal/game"
	"github.com/MRamiBalles/ClickAndHide/server/internal/platform/logger"
)

// TestResult captures the outcome of each checkpoint.
type TestResult struct {
	ScenarioName string
	Detail       string
	Passed       bool
}

// FirstMinuteTest simulates a new player's first minute of play.
type FirstMinuteTest struct {
	session *game.Session
	clk     *clock.ManualClock
	logger  *logger.Logger
	results []TestResult
}

// NewFirstMinuteTest builds the scenario against an in-memory session.
func NewFirstMinuteTest() *FirstMinuteTest {
	log := logger.NewLogger()
	clk := clock.NewManualClock(time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC))
	session := game.NewSession(game.DefaultConfig(), clk, nil, nil, nil, nil, log)
	return &FirstMinuteTest{session: session, clk: clk, logger: log}
}

func (t *FirstMinuteTest) check(name, detail string, passed bool) {
	t.results = append(t.results, TestResult{ScenarioName: name, Detail: detail, Passed: passed})
	if !passed {
		t.logger.Error("CHECK FAILED: " + name + " | " + detail)
	}
}

// RunTest executes the scenario.
func (t *FirstMinuteTest) RunTest(ctx context.Context) {
	s := t.session

	// A click before the cooldown has ever elapsed must be rejected.
	res := s.AttemptClick()
	t.check("Cooldown on fresh account", "first instant click rejected", !res.Accepted)

	// One legitimate click.
	t.clk.Advance(200 * time.Millisecond)
	res = s.AttemptClick()
	t.check("First click", fmt.Sprintf("accepted=%v balance=%.0f", res.Accepted, res.NewBalance),
		res.Accepted && res.NewBalance == 1)

	view := s.Snapshot()
	t.check("First click counter", fmt.Sprintf("total_clicks=%d", view.TotalClicks), view.TotalClicks == 1)

	// Spam inside the cooldown window: nothing moves.
	t.clk.Advance(50 * time.Millisecond)
	res = s.AttemptClick()
	view = s.Snapshot()
	t.check("Cooldown spam", fmt.Sprintf("accepted=%v total_clicks=%d", res.Accepted, view.TotalClicks),
		!res.Accepted && view.TotalClicks == 1)

	// Buying the mouse ($15) with $1 is a normal rejection, not an error.
	pres, err := s.AttemptPurchase(0)
	view = s.Snapshot()
	t.check("Premature purchase", fmt.Sprintf("success=%v balance=%.0f", pres.Success, view.Money),
		err == nil && !pres.Success && view.Money == 1 && view.Shop[0].Amount == 0 && view.Shop[0].Cost == 15)

	// Unknown upgrade id fails loudly and mutates nothing.
	_, err = s.AttemptPurchase(99)
	view = s.Snapshot()
	t.check("Unknown upgrade", fmt.Sprintf("err=%v balance=%.0f", err, view.Money),
		err != nil && view.Money == 1)

	// Click up to $15, respecting the cooldown.
	for i := 0; i < 14; i++ {
		t.clk.Advance(200 * time.Millisecond)
		s.AttemptClick()
	}
	view = s.Snapshot()
	t.check("Grind to $15", fmt.Sprintf("balance=%.0f clicks=%d", view.Money, view.TotalClicks),
		view.Money == 15 && view.TotalClicks == 15)

	// The purchase goes through: balance drains, cost escalates to 17.
	pres, err = s.AttemptPurchase(0)
	view = s.Snapshot()
	t.check("First purchase", fmt.Sprintf("success=%v balance=%.0f cost=%d", pres.Success, view.Money, pres.NewCost),
		err == nil && pres.Success && view.Money == 0 &&
			pres.NewCost == 17 && view.Shop[0].Amount == 1 && view.UpgradesBought == 1)

	t.check("Click income routed", fmt.Sprintf("click_income=%.0f", view.ClickIncome), view.ClickIncome == 2)

	// Exactly PRIMER CLICK and PRIMERA MEJORA are unlocked, once each.
	unlocked := map[string]bool{}
	for _, a := range view.Achievements {
		if a.Unlocked {
			unlocked[a.Name] = true
		}
	}
	t.check("Achievements fired", fmt.Sprintf("unlocked=%v", unlocked),
		len(unlocked) == 2 && unlocked["PRIMER CLICK"] && unlocked["PRIMERA MEJORA"])
	t.check("Notifications queued", fmt.Sprintf("pending=%d", len(view.Notifications)),
		len(view.Notifications) == 2)

	// Notifications expire after their lifetime and are pruned.
	t.clk.Advance(4 * time.Second)
	view = s.Snapshot()
	t.check("Notifications expired", fmt.Sprintf("pending=%d", len(view.Notifications)),
		len(view.Notifications) == 0)

	// Passive income: no auto upgrades yet, so ticking credits nothing.
	credited := s.Tick()
	t.check("No passive income yet", fmt.Sprintf("credited=%.0f", credited), credited == 0)

	// New game wipes the run.
	s.NewGame(ctx)
	view = s.Snapshot()
	t.check("New game reset", fmt.Sprintf("balance=%.0f clicks=%d cost=%d", view.Money, view.TotalClicks, view.Shop[0].Cost),
		view.Money == 0 && view.TotalClicks == 0 && view.Shop[0].Cost == 15 && view.UpgradesBought == 0)
}

// GetResults returns the checkpoint outcomes.
func (t *FirstMinuteTest) GetResults() []TestResult {
	return t.results
}
