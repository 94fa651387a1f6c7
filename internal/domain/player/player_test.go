package player

import (
	"testing"
	"time"
)

var base = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

func TestClickCooldown(t *testing.T) {
	p := NewPlayer(0, base)

	// The cooldown timer starts at creation, so an instant click is gated.
	res := p.Click(base)
	if res.Accepted {
		t.Errorf("Expected instant click to be rejected by cooldown")
	}
	if p.TotalClicks != 0 || p.Money != 0 {
		t.Errorf("Rejected click must not mutate state, got clicks=%d money=%.0f", p.TotalClicks, p.Money)
	}

	res = p.Click(base.Add(200 * time.Millisecond))
	if !res.Accepted || res.NewBalance != 1 {
		t.Errorf("Expected accepted click crediting 1, got accepted=%v balance=%.0f", res.Accepted, res.NewBalance)
	}
	if p.TotalClicks != 1 {
		t.Errorf("Expected total_clicks=1, got %d", p.TotalClicks)
	}

	// Two clicks inside one cooldown window credit exactly once.
	res = p.Click(base.Add(300 * time.Millisecond))
	if res.Accepted {
		t.Errorf("Expected spam click inside the cooldown window to be rejected")
	}
	if p.TotalClicks != 1 || p.Money != 1 {
		t.Errorf("Expected exactly one credited click, got clicks=%d money=%.0f", p.TotalClicks, p.Money)
	}

	// A rejected click must not reset the cooldown timer.
	res = p.Click(base.Add(400 * time.Millisecond))
	if !res.Accepted {
		t.Errorf("Expected click one full cooldown after the last accepted one")
	}
}

func TestApplyAutoIncomeIdempotent(t *testing.T) {
	p := NewPlayer(0, base)
	p.AutoIncome = 5

	if credited := p.ApplyAutoIncome(base.Add(500 * time.Millisecond)); credited != 0 {
		t.Errorf("Expected no credit before a full second, got %.0f", credited)
	}

	if credited := p.ApplyAutoIncome(base.Add(time.Second)); credited != 5 {
		t.Errorf("Expected one tick's credit, got %.0f", credited)
	}

	// Repeated calls within the same sub-second window credit nothing.
	if credited := p.ApplyAutoIncome(base.Add(1500 * time.Millisecond)); credited != 0 {
		t.Errorf("Expected no double-credit inside the window, got %.0f", credited)
	}

	if credited := p.ApplyAutoIncome(base.Add(2 * time.Second)); credited != 5 {
		t.Errorf("Expected credit once the next window opened, got %.0f", credited)
	}

	if p.Money != 10 {
		t.Errorf("Expected balance 10 after two ticks, got %.0f", p.Money)
	}
}

func TestAutoIncomeNoCatchUp(t *testing.T) {
	p := NewPlayer(0, base)
	p.AutoIncome = 3

	// An hour of idle time credits exactly one tick's worth.
	if credited := p.ApplyAutoIncome(base.Add(time.Hour)); credited != 3 {
		t.Errorf("Expected a single tick credit after a long idle, got %.0f", credited)
	}
	if p.Money != 3 {
		t.Errorf("Expected balance 3, got %.0f", p.Money)
	}
}

func TestDebitChecksBeforeMutating(t *testing.T) {
	p := NewPlayer(10, base)

	if err := p.Debit(11); err != ErrInsufficientFunds {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}
	if p.Money != 10 {
		t.Errorf("Failed debit must not touch the balance, got %.0f", p.Money)
	}

	if err := p.Debit(10); err != nil {
		t.Errorf("Expected exact-balance debit to succeed, got %v", err)
	}
	if p.Money != 0 {
		t.Errorf("Expected balance 0, got %.0f", p.Money)
	}
}

func TestCreditClampsToZero(t *testing.T) {
	p := NewPlayer(0, base)

	p.Credit(-5)
	if p.Money != 0 {
		t.Errorf("Expected clamp to zero floor, got %.0f", p.Money)
	}

	p.Credit(7)
	if !p.CanAfford(7) || p.CanAfford(8) {
		t.Errorf("Expected CanAfford boundary at 7, got money=%.0f", p.Money)
	}
}

func TestReset(t *testing.T) {
	p := NewPlayer(0, base)
	p.Click(base.Add(time.Second))
	p.ClickIncome = 12
	p.AutoIncome = 30
	p.UpgradesBought = 4

	later := base.Add(time.Minute)
	p.Reset(0, later)

	if p.Money != 0 || p.TotalClicks != 0 || p.ClickIncome != 1 || p.AutoIncome != 0 || p.UpgradesBought != 0 {
		t.Errorf("Expected pristine account after reset, got %+v", p)
	}
	if !p.LastClickTime.Equal(later) || !p.LastAutoTime.Equal(later) {
		t.Errorf("Expected cooldown timers rebased to reset time")
	}
}
