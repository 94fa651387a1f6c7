// Package game contains the progression engine for one run: it owns the
// account, the catalog and the achievement engine behind a single mutex
// and drives every state transition in a strict order.
//
// ARCHITECTURAL RULE: within one operation the order is always
// mutate -> evaluate achievements -> persist -> emit events. Renderers
// only ever observe Snapshot() results, never a mid-mutation state.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MRamiBalles/ClickAndHide/server/internal/achievements"
	"github.com/MRamiBalles/ClickAndHide/server/internal/clock"
	"github.com/MRamiBalles/ClickAndHide/server/internal/domain/player"
	"github.com/MRamiBalles/ClickAndHide/server/internal/domain/shop"
	"github.com/MRamiBalles/ClickAndHide/server/internal/events"
	"github.com/MRamiBalles/ClickAndHide/server/internal/infra/storage"
	"github.com/MRamiBalles/ClickAndHide/server/internal/platform/logger"
	"github.com/MRamiBalles/ClickAndHide/server/internal/platform/metrics"
)

// ActorPlayer identifies the human (or scripted) player in the audit log.
const ActorPlayer = "PLAYER"

// AchievementStore is the durable ledger of achievement unlocks.
type AchievementStore interface {
	Upsert(ctx context.Context, name string, unlockedAt time.Time) error
	GetUnlocked(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// ClickPayload records one accepted click in the audit log.
type ClickPayload struct {
	NewBalance  float64 `json:"new_balance"`
	TotalClicks int     `json:"total_clicks"`
}

// PurchasePayload records one successful purchase in the audit log.
type PurchasePayload struct {
	UpgradeID  int     `json:"upgrade_id"`
	Name       string  `json:"name"`
	NewCost    int     `json:"new_cost"`
	Kind       string  `json:"kind"`
	NewBalance float64 `json:"new_balance"`
}

// AutoIncomePayload records one applied passive income tick.
type AutoIncomePayload struct {
	Credited   float64 `json:"credited"`
	NewBalance float64 `json:"new_balance"`
}

// AchievementPayload records an unlock.
type AchievementPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// View is the read-only snapshot handed to renderers and observers.
type View struct {
	Money          float64                     `json:"money"`
	TotalClicks    int                         `json:"total_clicks"`
	ClickIncome    float64                     `json:"click_income"`
	AutoIncome     float64                     `json:"auto_income"`
	UpgradesBought int                         `json:"upgrades_bought"`
	Shop           []shop.Item                 `json:"shop"`
	Notifications  []achievements.Notification `json:"notifications"`
	Achievements   []achievements.Status       `json:"achievements"`
}

// Config holds the session balance parameters.
type Config struct {
	StartingMoney float64
	ClickCooldown time.Duration
	TickPeriod    time.Duration
}

// DefaultConfig returns the original game balance.
func DefaultConfig() Config {
	return Config{
		StartingMoney: 0,
		ClickCooldown: player.DefaultClickCooldown,
		TickPeriod:    player.DefaultTickPeriod,
	}
}

// Session is the single-threaded progression engine for one run. All
// entry points serialize on one mutex, so every operation is atomic with
// respect to the others.
type Session struct {
	mu sync.Mutex

	cfg      Config
	clk      clock.Clock
	player   *player.Player
	catalog  *shop.Catalog
	achs     *achievements.Engine
	achDefs  []achievements.Definition
	saves    *storage.SaveFileGateway
	achStore AchievementStore
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewSession wires a fresh run. saves, achStore and eventLog may be nil
// (useful in tests); the session then simply skips that concern.
func NewSession(cfg Config, clk clock.Clock, achDefs []achievements.Definition,
	saves *storage.SaveFileGateway, achStore AchievementStore,
	eventLog *events.EventLog, log *logger.Logger) *Session {

	if log == nil {
		log = logger.NewLogger()
	}
	now := clk.Now()
	p := player.NewPlayer(cfg.StartingMoney, now)
	if cfg.ClickCooldown > 0 {
		p.Cooldown = cfg.ClickCooldown
	}
	if cfg.TickPeriod > 0 {
		p.TickPeriod = cfg.TickPeriod
	}

	return &Session{
		cfg:      cfg,
		clk:      clk,
		player:   p,
		catalog:  shop.NewCatalog(),
		achs:     achievements.NewEngine(achDefs),
		achDefs:  achDefs,
		saves:    saves,
		achStore: achStore,
		eventLog: eventLog,
		logger:   log,
	}
}

// Bootstrap restores the previous run from the save file and the unlock
// ledger. Best effort on every path: a missing save starts fresh, a
// damaged one recovers what it can, and no failure blocks game start.
func (s *Session) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saves != nil {
		rec, err := s.saves.Load()
		switch {
		case err != nil:
			s.logger.Error("Save file could not be read, starting fresh: " + err.Error())
		case rec == nil:
			s.logger.Info("No previous save found at " + s.saves.Path())
		default:
			s.applyRecord(rec)
			s.logger.Info(fmt.Sprintf("Save restored: $%.0f, %d clicks, %d upgrades",
				s.player.Money, s.player.TotalClicks, s.player.UpgradesBought))
		}
	}

	if s.achStore != nil {
		names, err := s.achStore.GetUnlocked(ctx)
		if err != nil {
			s.logger.Error("Achievement ledger could not be read: " + err.Error())
		} else if len(names) > 0 {
			s.achs.Restore(names)
			s.logger.Info(fmt.Sprintf("Restored %d achievement unlocks", len(names)))
		}
	}
}

// applyRecord copies a loaded save onto the fresh state. Fields that
// fail validation keep their defaults, which is the graceful-degradation
// policy for damaged saves.
func (s *Session) applyRecord(rec *storage.SaveRecord) {
	if rec.Player.Money >= 0 {
		s.player.Money = rec.Player.Money
	}
	if rec.Player.TotalClicks >= 0 {
		s.player.TotalClicks = rec.Player.TotalClicks
	}
	if rec.Player.ClickIncome >= 1 {
		s.player.ClickIncome = rec.Player.ClickIncome
	}
	if rec.Player.AutoIncome >= 0 {
		s.player.AutoIncome = rec.Player.AutoIncome
	}

	// Positional application; a shorter saved list keeps trailing defaults.
	upgrades := 0
	for i, item := range rec.Shop {
		if i >= s.catalog.Len() {
			break
		}
		s.catalog.Restore(i, item.Cost, item.Amount)
		if item.Amount > 0 {
			upgrades += item.Amount
		}
	}
	if upgrades > s.player.UpgradesBought {
		s.player.UpgradesBought = upgrades
	}
}

// AttemptClick processes one manual click through the cooldown gate.
func (s *Session) AttemptClick() player.ClickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	res := s.player.Click(now)
	metrics.Get().RecordClick(res.Accepted)
	if !res.Accepted {
		return res
	}

	s.evaluateLocked(now)
	s.persistLocked()
	s.appendEvent(events.EventTypeClick, ClickPayload{
		NewBalance:  res.NewBalance,
		TotalClicks: s.player.TotalClicks,
	})
	return res
}

// AttemptPurchase runs the buy transaction for the upgrade at id.
// success=false with nil error is the ordinary "can't afford yet"
// outcome; ErrUnknownUpgrade signals a caller bug and mutates nothing.
func (s *Session) AttemptPurchase(id int) (shop.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	res, err := s.catalog.Purchase(id, s.player)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Purchase rejected for upgrade id %d: %v", id, err))
		return res, err
	}
	metrics.Get().RecordPurchase(res.Success)
	if !res.Success {
		return res, nil
	}

	items := s.catalog.Items()
	s.evaluateLocked(now)
	s.persistLocked()
	s.appendEvent(events.EventTypePurchase, PurchasePayload{
		UpgradeID:  id,
		Name:       items[id].Name,
		NewCost:    res.NewCost,
		Kind:       string(res.Kind),
		NewBalance: s.player.Money,
	})
	return res, nil
}

// Tick applies passive income if the one-second gate has opened and
// returns the credited amount. Safe to call every frame; extra calls
// within the same window credit nothing.
func (s *Session) Tick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	credited := s.player.ApplyAutoIncome(now)
	if credited == 0 {
		return 0
	}
	metrics.Get().RecordAutoCredit()

	s.evaluateLocked(now)
	s.persistLocked()
	s.appendEvent(events.EventTypeAutoIncome, AutoIncomePayload{
		Credited:   credited,
		NewBalance: s.player.Money,
	})
	return credited
}

// NewGame discards the current run: account and catalog return to their
// base values, the unlock ledger is wiped and the fresh state is saved.
func (s *Session) NewGame(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	s.player.Reset(s.cfg.StartingMoney, now)
	s.catalog.ResetAll()
	s.achs = achievements.NewEngine(s.achDefs)

	if s.achStore != nil {
		if err := s.achStore.Clear(ctx); err != nil {
			s.logger.Error("Failed to clear achievement ledger: " + err.Error())
		}
	}

	s.persistLocked()
	s.appendEvent(events.EventTypeNewGame, nil)
	s.logger.Info("New game started")
}

// Snapshot returns the read-only view for renderers and observers.
// Pending notifications are pruned as part of building it, so the
// consumer should poll once per frame.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	return View{
		Money:          s.player.Money,
		TotalClicks:    s.player.TotalClicks,
		ClickIncome:    s.player.ClickIncome,
		AutoIncome:     s.player.AutoIncome,
		UpgradesBought: s.player.UpgradesBought,
		Shop:           s.catalog.Items(),
		Notifications:  s.achs.Pending(now),
		Achievements:   s.achs.Statuses(),
	}
}

// CheapestAffordable exposes the deterministic selection policy for
// automated play: lowest current cost wins, ties by catalog order.
func (s *Session) CheapestAffordable() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.CheapestAffordable(s.player)
}

// evaluateLocked runs the achievement scan against the current state.
// Caller must hold s.mu.
func (s *Session) evaluateLocked(now time.Time) {
	snap := achievements.Snapshot{
		Money:          s.player.Money,
		TotalClicks:    s.player.TotalClicks,
		UpgradesBought: s.player.UpgradesBought,
	}
	for _, name := range s.achs.Evaluate(snap, now) {
		metrics.Get().RecordUnlock()
		s.logger.Event("ACHIEVEMENT", ActorPlayer, name)

		if s.achStore != nil {
			if err := s.achStore.Upsert(context.Background(), name, now); err != nil {
				s.logger.Error("Failed to persist unlock " + name + ": " + err.Error())
			}
		}

		desc := ""
		for _, st := range s.achs.Statuses() {
			if st.Name == name {
				desc = st.Description
			}
		}
		s.appendEvent(events.EventTypeAchievementUnlocked, AchievementPayload{
			Name:        name,
			Description: desc,
		})
	}
}

// persistLocked writes the current state through to the save file.
// Write failures are reported and recorded, never fatal. Caller must
// hold s.mu.
func (s *Session) persistLocked() {
	if s.saves == nil {
		return
	}
	rec := s.buildRecord()
	err := s.saves.Save(rec)
	metrics.Get().RecordSave(err)
	if err != nil {
		s.logger.Error("Save failed, continuing with in-memory state: " + err.Error())
		s.appendEvent(events.EventTypeSaveFailed, map[string]string{"error": err.Error()})
	}
}

// buildRecord snapshots account + catalog into the durable save shape.
func (s *Session) buildRecord() storage.SaveRecord {
	items := s.catalog.Items()
	rec := storage.SaveRecord{
		Player: storage.PlayerRecord{
			Money:       s.player.Money,
			TotalClicks: s.player.TotalClicks,
			ClickIncome: s.player.ClickIncome,
			AutoIncome:  s.player.AutoIncome,
		},
		Shop: make([]storage.ShopItemRecord, len(items)),
	}
	for i, item := range items {
		rec.Shop[i] = storage.ShopItemRecord{
			Name:       item.Name,
			Cost:       item.Cost,
			BaseIncome: item.BaseIncome,
			Tipo:       string(item.Kind),
			Amount:     item.Amount,
		}
	}
	return rec
}

func (s *Session) appendEvent(t events.EventType, payload interface{}) {
	if s.eventLog == nil {
		return
	}
	s.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: s.clk.Now(),
		Type:      t,
		ActorID:   ActorPlayer,
		Payload:   payload,
	})
}
