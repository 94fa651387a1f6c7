package game

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/ClickAndHide/server/internal/clock"
	"github.com/MRamiBalles/ClickAndHide/server/internal/domain/shop"
	"github.com/MRamiBalles/ClickAndHide/server/internal/infra/storage"
)

var base = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

// memAchievementStore is an in-memory unlock ledger for tests.
type memAchievementStore struct {
	names []string
}

func (m *memAchievementStore) Upsert(_ context.Context, name string, _ time.Time) error {
	for _, n := range m.names {
		if n == name {
			return nil
		}
	}
	m.names = append(m.names, name)
	return nil
}

func (m *memAchievementStore) GetUnlocked(_ context.Context) ([]string, error) {
	return append([]string(nil), m.names...), nil
}

func (m *memAchievementStore) Clear(_ context.Context) error {
	m.names = nil
	return nil
}

func newTestSession(t *testing.T, clk clock.Clock, saves *storage.SaveFileGateway, achStore AchievementStore) *Session {
	t.Helper()
	return NewSession(DefaultConfig(), clk, nil, saves, achStore, nil, nil)
}

// TestFirstUpgradeScenario walks the canonical opening: one click, a
// premature purchase, the grind to $15 and the first upgrade.
func TestFirstUpgradeScenario(t *testing.T) {
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, nil)

	clk.Advance(200 * time.Millisecond)
	res := s.AttemptClick()
	if !res.Accepted || res.NewBalance != 1 {
		t.Fatalf("Expected first click to credit 1, got %+v", res)
	}
	if v := s.Snapshot(); v.TotalClicks != 1 {
		t.Fatalf("Expected total_clicks=1, got %d", v.TotalClicks)
	}

	// $1 against a $15 mouse: normal rejection.
	pres, err := s.AttemptPurchase(0)
	if err != nil || pres.Success {
		t.Fatalf("Expected affordable rejection, got res=%+v err=%v", pres, err)
	}
	if v := s.Snapshot(); v.Money != 1 {
		t.Fatalf("Rejected purchase must not move the balance, got %.0f", v.Money)
	}

	// Fourteen more clicks, one cooldown apart.
	for i := 0; i < 14; i++ {
		clk.Advance(200 * time.Millisecond)
		if res := s.AttemptClick(); !res.Accepted {
			t.Fatalf("Click %d unexpectedly rejected", i+2)
		}
	}
	if v := s.Snapshot(); v.Money != 15 {
		t.Fatalf("Expected $15 after 15 clicks, got %.0f", v.Money)
	}

	pres, err = s.AttemptPurchase(0)
	if err != nil || !pres.Success {
		t.Fatalf("Expected purchase to succeed at $15, got res=%+v err=%v", pres, err)
	}
	if pres.NewCost != 17 {
		t.Errorf("Expected cost escalation 15 -> 17, got %d", pres.NewCost)
	}

	v := s.Snapshot()
	if v.Money != 0 || v.Shop[0].Amount != 1 || v.UpgradesBought != 1 {
		t.Errorf("Expected drained balance and one owned mouse, got money=%.0f shop=%+v", v.Money, v.Shop[0])
	}

	// PRIMER CLICK and PRIMERA MEJORA fire exactly once each.
	want := map[string]bool{"PRIMER CLICK": false, "PRIMERA MEJORA": false}
	for _, n := range v.Notifications {
		if _, ok := want[n.Achievement]; !ok {
			t.Errorf("Unexpected notification %q", n.Achievement)
			continue
		}
		if want[n.Achievement] {
			t.Errorf("Duplicate notification %q", n.Achievement)
		}
		want[n.Achievement] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Missing notification %q", name)
		}
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, nil)

	// An arbitrary interleaving of all mutating operations.
	for i := 0; i < 200; i++ {
		switch i % 4 {
		case 0:
			clk.Advance(70 * time.Millisecond)
			s.AttemptClick()
		case 1:
			s.AttemptPurchase(i % 9)
		case 2:
			clk.Advance(400 * time.Millisecond)
			s.Tick()
		default:
			clk.Advance(10 * time.Millisecond)
			s.AttemptClick()
		}
		if v := s.Snapshot(); v.Money < 0 {
			t.Fatalf("Balance went negative at step %d: %.2f", i, v.Money)
		}
	}
}

func TestWriteThroughSaveRoundTrip(t *testing.T) {
	saves := storage.NewSaveFileGateway(filepath.Join(t.TempDir(), "savegame.json"))
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, saves, nil)

	// Earn and spend a bit; every mutation is written through.
	for i := 0; i < 20; i++ {
		clk.Advance(200 * time.Millisecond)
		s.AttemptClick()
	}
	if res, err := s.AttemptPurchase(0); err != nil || !res.Success {
		t.Fatalf("Setup purchase failed: %v", err)
	}
	before := s.Snapshot()

	// A second session restored from the same file sees identical state.
	s2 := newTestSession(t, clock.NewManualClock(base.Add(time.Hour)), saves, nil)
	s2.Bootstrap(context.Background())
	after := s2.Snapshot()

	if after.Money != before.Money || after.TotalClicks != before.TotalClicks ||
		after.ClickIncome != before.ClickIncome || after.AutoIncome != before.AutoIncome ||
		after.UpgradesBought != before.UpgradesBought {
		t.Errorf("Account mismatch after reload:\n got %+v\nwant %+v", after, before)
	}
	for i := range before.Shop {
		if after.Shop[i].Cost != before.Shop[i].Cost || after.Shop[i].Amount != before.Shop[i].Amount {
			t.Errorf("Shop item %d mismatch: got %+v want %+v", i, after.Shop[i], before.Shop[i])
		}
	}
}

func TestBootstrapWithoutSaveStartsFresh(t *testing.T) {
	saves := storage.NewSaveFileGateway(filepath.Join(t.TempDir(), "savegame.json"))
	s := newTestSession(t, clock.NewManualClock(base), saves, nil)
	s.Bootstrap(context.Background())

	v := s.Snapshot()
	if v.Money != 0 || v.TotalClicks != 0 || v.ClickIncome != 1 {
		t.Errorf("Expected pristine state without a save, got %+v", v)
	}
}

func TestAchievementLedgerSuppressesRefire(t *testing.T) {
	store := &memAchievementStore{}
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, store)

	clk.Advance(200 * time.Millisecond)
	s.AttemptClick()
	if len(store.names) != 1 || store.names[0] != "PRIMER CLICK" {
		t.Fatalf("Expected PRIMER CLICK persisted, got %v", store.names)
	}

	// A restarted session restores the ledger: the unlock holds but no
	// banner re-fires.
	clk2 := clock.NewManualClock(base.Add(time.Hour))
	s2 := newTestSession(t, clk2, nil, store)
	s2.Bootstrap(context.Background())

	v := s2.Snapshot()
	if len(v.Notifications) != 0 {
		t.Errorf("Restored unlocks must not notify, got %d banners", len(v.Notifications))
	}
	clk2.Advance(200 * time.Millisecond)
	s2.AttemptClick()
	if v := s2.Snapshot(); len(v.Notifications) != 0 {
		t.Errorf("Restored achievement re-fired, got %d banners", len(v.Notifications))
	}
}

func TestTickCreditsOncePerWindow(t *testing.T) {
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, nil)

	// Buy passive income: grind to $50 then take Apuntes (+1/s).
	for i := 0; i < 50; i++ {
		clk.Advance(200 * time.Millisecond)
		s.AttemptClick()
	}
	if res, err := s.AttemptPurchase(1); err != nil || !res.Success {
		t.Fatalf("Setup purchase failed: res=%+v err=%v", res, err)
	}

	clk.Advance(time.Second)
	if credited := s.Tick(); credited != 1 {
		t.Fatalf("Expected one passive credit, got %.0f", credited)
	}
	// Same window: idempotent.
	if credited := s.Tick(); credited != 0 {
		t.Errorf("Expected no double credit within the window, got %.0f", credited)
	}
	clk.Advance(time.Second)
	if credited := s.Tick(); credited != 1 {
		t.Errorf("Expected credit in the next window, got %.0f", credited)
	}
}

func TestNewGameResetsEverything(t *testing.T) {
	store := &memAchievementStore{}
	saves := storage.NewSaveFileGateway(filepath.Join(t.TempDir(), "savegame.json"))
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, saves, store)

	for i := 0; i < 20; i++ {
		clk.Advance(200 * time.Millisecond)
		s.AttemptClick()
	}
	s.AttemptPurchase(0)

	s.NewGame(context.Background())

	v := s.Snapshot()
	if v.Money != 0 || v.TotalClicks != 0 || v.UpgradesBought != 0 ||
		v.Shop[0].Cost != 15 || v.Shop[0].Amount != 0 {
		t.Errorf("Expected pristine run after new game, got %+v", v)
	}
	if len(store.names) != 0 {
		t.Errorf("Expected cleared unlock ledger, got %v", store.names)
	}

	// The fresh state was written through: a reload starts clean too.
	s2 := newTestSession(t, clock.NewManualClock(base.Add(time.Hour)), saves, store)
	s2.Bootstrap(context.Background())
	if v := s2.Snapshot(); v.Money != 0 || v.TotalClicks != 0 {
		t.Errorf("Expected clean save after new game, got %+v", v)
	}
}

func TestCheapestAffordablePolicy(t *testing.T) {
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, nil)

	if _, ok := s.CheapestAffordable(); ok {
		t.Errorf("Expected nothing affordable at $0")
	}

	for i := 0; i < 16; i++ {
		clk.Advance(200 * time.Millisecond)
		s.AttemptClick()
	}
	if id, ok := s.CheapestAffordable(); !ok || id != 0 {
		t.Errorf("Expected the $15 mouse as cheapest pick, got id=%d ok=%v", id, ok)
	}
}

func TestPurchaseUnknownUpgradeIsNoOp(t *testing.T) {
	clk := clock.NewManualClock(base)
	s := newTestSession(t, clk, nil, nil)

	clk.Advance(200 * time.Millisecond)
	s.AttemptClick()

	if _, err := s.AttemptPurchase(42); err != shop.ErrUnknownUpgrade {
		t.Fatalf("Expected ErrUnknownUpgrade, got %v", err)
	}
	if v := s.Snapshot(); v.Money != 1 || v.UpgradesBought != 0 {
		t.Errorf("Contract violation must not corrupt state, got %+v", v)
	}
}
