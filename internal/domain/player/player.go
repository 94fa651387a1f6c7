// Package player defines the core account entity of a run.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package player

import (
	"errors"
	"time"

	"github.com/MRamiBalles/ClickAndHide/server/internal/clock"
)

// ErrInsufficientFunds is returned by Debit when the balance cannot
// cover the requested amount. Purchase callers must check CanAfford
// first; hitting this error indicates a caller bug.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Default balance parameters. The session may override both via config.
const (
	DefaultClickCooldown = 200 * time.Millisecond
	DefaultTickPeriod    = time.Second
)

// Player represents the account state of a single run.
type Player struct {
	Money          float64 `json:"money"` // invariant: >= 0
	TotalClicks    int     `json:"total_clicks"`
	ClickIncome    float64 `json:"click_income"` // per accepted click, >= 1
	AutoIncome     float64 `json:"auto_income"`  // per passive tick, >= 0
	UpgradesBought int     `json:"upgrades_bought"`

	LastClickTime time.Time `json:"-"`
	LastAutoTime  time.Time `json:"-"`

	Cooldown   time.Duration `json:"-"`
	TickPeriod time.Duration `json:"-"`
}

// ClickResult reports the outcome of one manual click attempt.
type ClickResult struct {
	Accepted   bool    `json:"accepted"`
	NewBalance float64 `json:"new_balance"`
}

// NewPlayer creates a fresh account. The cooldown timers start at now,
// so the very first click is only accepted once the cooldown has passed.
func NewPlayer(startingMoney float64, now time.Time) *Player {
	return &Player{
		Money:         startingMoney,
		TotalClicks:   0,
		ClickIncome:   1,
		AutoIncome:    0,
		LastClickTime: now,
		LastAutoTime:  now,
		Cooldown:      DefaultClickCooldown,
		TickPeriod:    DefaultTickPeriod,
	}
}

// Reset restores the account to its initial state. Used for "new game"
// only, never implicitly.
func (p *Player) Reset(startingMoney float64, now time.Time) {
	p.Money = startingMoney
	p.TotalClicks = 0
	p.ClickIncome = 1
	p.AutoIncome = 0
	p.UpgradesBought = 0
	p.LastClickTime = now
	p.LastAutoTime = now
}

// Click credits the click income if the cooldown has elapsed. A rejected
// click mutates nothing; it is a normal, frequent outcome under
// key/mouse auto-repeat, not an error.
func (p *Player) Click(now time.Time) ClickResult {
	if !clock.ElapsedAtLeast(now, p.LastClickTime, p.Cooldown) {
		return ClickResult{Accepted: false, NewBalance: p.Money}
	}
	p.Money += p.ClickIncome
	p.TotalClicks++
	p.LastClickTime = now
	p.clamp()
	return ClickResult{Accepted: true, NewBalance: p.Money}
}

// ApplyAutoIncome credits the passive income once if a full tick period
// has elapsed since the last application, and returns the credited
// amount (0 while the gate is closed). The credit is exactly one tick's
// worth regardless of overshoot; fractional seconds are never pro-rated.
func (p *Player) ApplyAutoIncome(now time.Time) float64 {
	if !clock.ElapsedAtLeast(now, p.LastAutoTime, p.TickPeriod) {
		return 0
	}
	p.Money += p.AutoIncome
	p.LastAutoTime = now
	p.clamp()
	return p.AutoIncome
}

// CanAfford reports whether the balance covers amount.
func (p *Player) CanAfford(amount float64) bool {
	return p.Money >= amount
}

// Debit removes amount from the balance. The check happens before any
// mutation, so a failed debit leaves the account untouched.
func (p *Player) Debit(amount float64) error {
	if amount > p.Money {
		return ErrInsufficientFunds
	}
	p.Money -= amount
	return nil
}

// Credit adds amount to the balance and clamps to the zero floor.
func (p *Player) Credit(amount float64) {
	p.Money += amount
	p.clamp()
}

// clamp enforces the non-negative balance floor after credit paths.
func (p *Player) clamp() {
	if p.Money < 0 {
		p.Money = 0
	}
}
