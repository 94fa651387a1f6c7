// Package achievements evaluates milestone predicates against account
// snapshots and owns the transient notification queue.
//
// Predicates are data, not closures: a Condition names a metric and a
// threshold, so the table can be persisted, extended or replaced without
// touching the engine.
package achievements

import "time"

// Notification lifecycle timing. The slide interval is the entrance/exit
// animation phase consumed by the view layer.
const (
	NotificationDuration = 3 * time.Second
	SlideDuration        = 400 * time.Millisecond
)

// Metric names an observable quantity of the account snapshot.
type Metric string

const (
	MetricMoney          Metric = "money"
	MetricTotalClicks    Metric = "total_clicks"
	MetricUpgradesBought Metric = "upgrades_bought"
)

// Condition is a data-driven milestone predicate: metric >= threshold.
type Condition struct {
	Metric    Metric  `json:"metric"`
	Threshold float64 `json:"threshold"`
}

// Snapshot is the read-only state a Condition is evaluated against.
type Snapshot struct {
	Money          float64
	TotalClicks    int
	UpgradesBought int
}

// Met reports whether the condition holds for the snapshot.
func (c Condition) Met(s Snapshot) bool {
	switch c.Metric {
	case MetricMoney:
		return s.Money >= c.Threshold
	case MetricTotalClicks:
		return float64(s.TotalClicks) >= c.Threshold
	case MetricUpgradesBought:
		return float64(s.UpgradesBought) >= c.Threshold
	}
	return false
}

// Definition describes one achievement.
type Definition struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
}

// DefaultDefinitions returns the reference achievement table.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "PRIMER CLICK", Description: "Haz tu primer click.",
			Condition: Condition{Metric: MetricTotalClicks, Threshold: 1}},
		{Name: "AHORRADOR", Description: "Alcanza $1,000.",
			Condition: Condition{Metric: MetricMoney, Threshold: 1000}},
		{Name: "MILLONARIO", Description: "Alcanza $1,000,000.",
			Condition: Condition{Metric: MetricMoney, Threshold: 1_000_000}},
		{Name: "PRIMERA MEJORA", Description: "Compra al menos una mejora.",
			Condition: Condition{Metric: MetricUpgradesBought, Threshold: 1}},
	}
}

// Notification is one transient unlock banner. It expires
// NotificationDuration after creation and is dropped from the queue the
// next time Pending is called.
type Notification struct {
	Achievement string    `json:"achievement"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Active reports whether the notification is still within its lifetime.
func (n Notification) Active(now time.Time) bool {
	return now.Sub(n.CreatedAt) < NotificationDuration
}

// Sliding reports whether the notification is in its entrance or exit
// animation phase at now.
func (n Notification) Sliding(now time.Time) bool {
	age := now.Sub(n.CreatedAt)
	return age < SlideDuration || age >= NotificationDuration-SlideDuration
}

type achievementState struct {
	Definition
	Unlocked bool
}

// Engine owns the achievement set and the live notification queue.
// The set is fixed at construction; unlocks are terminal.
type Engine struct {
	achievements  []achievementState
	notifications []Notification
}

// NewEngine builds an engine for the given definitions. A nil or empty
// slice selects the reference table.
func NewEngine(defs []Definition) *Engine {
	if len(defs) == 0 {
		defs = DefaultDefinitions()
	}
	e := &Engine{achievements: make([]achievementState, len(defs))}
	for i, d := range defs {
		e.achievements[i] = achievementState{Definition: d}
	}
	return e
}

// Evaluate checks every still-locked achievement against the snapshot.
// Each unlock is terminal and enqueues exactly one notification, ever;
// already-unlocked achievements are skipped. Returns the names of the
// achievements unlocked by this call.
func (e *Engine) Evaluate(s Snapshot, now time.Time) []string {
	var unlocked []string
	for i := range e.achievements {
		a := &e.achievements[i]
		if a.Unlocked || !a.Condition.Met(s) {
			continue
		}
		a.Unlocked = true
		e.notifications = append(e.notifications, Notification{
			Achievement: a.Name,
			Description: a.Description,
			CreatedAt:   now,
		})
		unlocked = append(unlocked, a.Name)
	}
	return unlocked
}

// Pending returns the live notifications and drops expired ones from the
// queue as a side effect. Between unlocks the returned set only shrinks.
func (e *Engine) Pending(now time.Time) []Notification {
	live := e.notifications[:0]
	for _, n := range e.notifications {
		if n.Active(now) {
			live = append(live, n)
		}
	}
	e.notifications = live

	out := make([]Notification, len(live))
	copy(out, live)
	return out
}

// Restore marks the named achievements unlocked without enqueueing
// notifications. Used when reloading persisted unlock state at boot so
// banners are not re-fired every session.
func (e *Engine) Restore(names []string) {
	for _, name := range names {
		for i := range e.achievements {
			if e.achievements[i].Name == name {
				e.achievements[i].Unlocked = true
			}
		}
	}
}

// Unlocked returns the names of all unlocked achievements in table order.
func (e *Engine) Unlocked() []string {
	var out []string
	for _, a := range e.achievements {
		if a.Unlocked {
			out = append(out, a.Name)
		}
	}
	return out
}

// Status pairs a definition with its unlock state for display.
type Status struct {
	Definition
	Unlocked bool `json:"unlocked"`
}

// Statuses returns the full table with unlock state, in table order.
// Read-only view for the achievements menu.
func (e *Engine) Statuses() []Status {
	out := make([]Status, len(e.achievements))
	for i, a := range e.achievements {
		out[i] = Status{Definition: a.Definition, Unlocked: a.Unlocked}
	}
	return out
}
