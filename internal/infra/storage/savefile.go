// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
//
// Two stores coexist: the JSON save file is the authoritative record of
// account and catalog state, and SQLite holds the event audit log plus
// the achievement unlock ledger.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// PlayerRecord holds the account fields of the save record.
type PlayerRecord struct {
	Money       float64 `json:"money"`
	TotalClicks int     `json:"total_clicks"`
	ClickIncome float64 `json:"click_income"`
	AutoIncome  float64 `json:"auto_income"`
}

// ShopItemRecord holds one catalog entry of the save record. The entries
// are applied positionally against the live catalog on load.
type ShopItemRecord struct {
	Name       string  `json:"name"`
	Cost       int     `json:"cost"`
	BaseIncome float64 `json:"base_income"`
	Tipo       string  `json:"tipo"`
	Amount     int     `json:"amount"`
}

// SaveRecord is the durable snapshot of one run. Achievement unlock
// state is deliberately not part of it; that lives in SQLite.
type SaveRecord struct {
	Player PlayerRecord     `json:"player"`
	Shop   []ShopItemRecord `json:"shop"`
}

// SaveFileGateway reads and writes the JSON save file. Every write fully
// overwrites the previous record; there is no append and no versioning.
type SaveFileGateway struct {
	path string
}

// NewSaveFileGateway creates a gateway for the given file path.
func NewSaveFileGateway(path string) *SaveFileGateway {
	return &SaveFileGateway{path: path}
}

// Path returns the save file location.
func (g *SaveFileGateway) Path() string {
	return g.path
}

// Save serializes the record to disk, replacing any prior save. A write
// failure is reported to the caller; the in-memory state stays
// authoritative and play continues.
func (g *SaveFileGateway) Save(rec SaveRecord) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal save record: %w", err)
	}
	if err := os.WriteFile(g.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// Load reads the save record from disk. A missing file is not an error:
// it returns (nil, nil) and the caller proceeds with defaults. A
// malformed file degrades gracefully: whichever of the player and shop
// sections still parse are recovered, and only a fully unreadable file
// reports an error. Load never blocks game start.
func (g *SaveFileGateway) Load() (*SaveRecord, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var rec SaveRecord
	if err := json.Unmarshal(data, &rec); err == nil {
		return &rec, nil
	}

	// Partial recovery: decode the sections independently so one corrupt
	// section does not discard the other.
	var raw struct {
		Player json.RawMessage `json:"player"`
		Shop   json.RawMessage `json:"shop"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("save file is unreadable: %w", err)
	}

	recovered := &SaveRecord{}
	if len(raw.Player) > 0 {
		_ = json.Unmarshal(raw.Player, &recovered.Player)
	}
	if len(raw.Shop) > 0 {
		_ = json.Unmarshal(raw.Shop, &recovered.Shop)
	}
	return recovered, nil
}
