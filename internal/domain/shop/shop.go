// Package shop defines the upgrade catalog and its purchase transaction.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package shop

import (
	"errors"

	"github.com/MRamiBalles/ClickAndHide/server/internal/domain/player"
)

// ErrUnknownUpgrade is returned by Purchase for an id outside the
// catalog. It indicates a caller bug (e.g. a stale UI reference); the
// catalog and the account are left untouched.
var ErrUnknownUpgrade = errors.New("unknown upgrade")

// costGrowth is the geometric price escalation applied after every
// purchase: cost_next = floor(cost * 1.15).
const costGrowth = 1.15

// IncomeKind routes an upgrade's income contribution.
type IncomeKind string

const (
	KindClick IncomeKind = "click" // boosts income per accepted click
	KindAuto  IncomeKind = "auto"  // boosts passive income per tick
)

// Item is one purchasable upgrade. The JSON tags match the save record
// layout ("tipo" is the historical field name for the income kind).
type Item struct {
	Name       string     `json:"name"`
	Cost       int        `json:"cost"`
	BaseIncome float64    `json:"base_income"`
	Kind       IncomeKind `json:"tipo"`
	Amount     int        `json:"amount"`
}

// PurchaseResult reports the outcome of one purchase attempt.
// Success=false with a nil error means "can't afford yet", a normal
// outcome rather than a failure.
type PurchaseResult struct {
	Success bool       `json:"success"`
	NewCost int        `json:"new_cost"`
	Kind    IncomeKind `json:"kind"`
}

// DefaultItems returns the catalog definition table. Order is the
// display order and the positional order of the save record.
func DefaultItems() []Item {
	return []Item{
		{Name: "Ratón", Cost: 15, BaseIncome: 1, Kind: KindClick},
		{Name: "Apuntes (+1/s)", Cost: 50, BaseIncome: 1, Kind: KindAuto},
		{Name: "Libro (+5/s)", Cost: 100, BaseIncome: 5, Kind: KindAuto},
		{Name: "Pizarra (+10/s)", Cost: 200, BaseIncome: 10, Kind: KindAuto},
		{Name: "Móbil (+25/s)", Cost: 500, BaseIncome: 25, Kind: KindAuto},
		{Name: "Tablet (+50/s)", Cost: 1000, BaseIncome: 50, Kind: KindAuto},
		{Name: "Ordenador (+100/s)", Cost: 2500, BaseIncome: 100, Kind: KindAuto},
		{Name: "Fibra Óptica (+200/s)", Cost: 7500, BaseIncome: 200, Kind: KindAuto},
		{Name: "Servidor (+500/s)", Cost: 10000, BaseIncome: 500, Kind: KindAuto},
	}
}

// Catalog is the ordered collection of purchasable upgrades.
type Catalog struct {
	defs  []Item // base definition, used by ResetAll
	items []Item // live state
}

// NewCatalog builds the catalog from the default definition table.
func NewCatalog() *Catalog {
	return NewCatalogFrom(DefaultItems())
}

// NewCatalogFrom builds a catalog from a custom definition table.
// Amounts in defs are treated as zero.
func NewCatalogFrom(defs []Item) *Catalog {
	c := &Catalog{defs: make([]Item, len(defs))}
	copy(c.defs, defs)
	for i := range c.defs {
		c.defs[i].Amount = 0
	}
	c.items = make([]Item, len(c.defs))
	copy(c.items, c.defs)
	return c
}

// Items returns a snapshot of the live catalog in definition order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Purchase executes the buy transaction for the upgrade at id against
// the given account. The transaction is all-or-nothing: on any rejected
// path the account and the item are completely unchanged.
func (c *Catalog) Purchase(id int, p *player.Player) (PurchaseResult, error) {
	if id < 0 || id >= len(c.items) {
		return PurchaseResult{}, ErrUnknownUpgrade
	}
	item := &c.items[id]

	if !p.CanAfford(float64(item.Cost)) {
		return PurchaseResult{Success: false, NewCost: item.Cost, Kind: item.Kind}, nil
	}

	if err := p.Debit(float64(item.Cost)); err != nil {
		// CanAfford passed, so this cannot happen in a single-threaded run.
		return PurchaseResult{Success: false, NewCost: item.Cost, Kind: item.Kind}, err
	}

	item.Amount++
	item.Cost = int(float64(item.Cost) * costGrowth)

	switch item.Kind {
	case KindClick:
		p.ClickIncome += item.BaseIncome
	default:
		p.AutoIncome += item.BaseIncome
	}
	p.UpgradesBought++

	return PurchaseResult{Success: true, NewCost: item.Cost, Kind: item.Kind}, nil
}

// CheapestAffordable returns the id of the cheapest upgrade the account
// can currently afford. Ties are broken by definition order. This is the
// selection policy for automated play and test harnesses.
func (c *Catalog) CheapestAffordable(p *player.Player) (int, bool) {
	best := -1
	for i := range c.items {
		if !p.CanAfford(float64(c.items[i].Cost)) {
			continue
		}
		if best == -1 || c.items[i].Cost < c.items[best].Cost {
			best = i
		}
	}
	return best, best != -1
}

// ResetAll restores every upgrade to its base cost and zero amount.
// Used only alongside the account reset for "new game".
func (c *Catalog) ResetAll() {
	c.items = make([]Item, len(c.defs))
	copy(c.items, c.defs)
}

// Restore applies a saved (cost, amount) pair to the item at id. Values
// that fail validation are ignored so a damaged save degrades to the
// item's defaults instead of corrupting the catalog.
func (c *Catalog) Restore(id, cost, amount int) {
	if id < 0 || id >= len(c.items) {
		return
	}
	if cost >= c.defs[id].Cost {
		c.items[id].Cost = cost
	}
	if amount >= 0 {
		c.items[id].Amount = amount
	}
}
