package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/tidwall/buntdb"

	"github.com/quantforge/algotick/core"
)

const (
	fillPrefix   = "fill:"
	equityPrefix = "equity:"

	fillIndex   = "fill_time_index"
	equityIndex = "equity_time_index"
)

// BuntStorage implements core.RunStorage using BuntDB.
type BuntStorage struct {
	lastFillID   int64
	lastEquityID int64
	db           *buntdb.DB
}

// FromMemory creates an in-memory run storage.
func FromMemory() (core.RunStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-backed run storage.
func FromFile(file string) (core.RunStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage opens a BuntDB database and prepares the time indexes.
func NewBuntStorage(sourceFile string) (core.RunStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{SyncPolicy: buntdb.Never}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	if err := db.CreateIndex(fillIndex, fillPrefix+"*", buntdb.IndexJSON("at")); err != nil {
		return nil, fmt.Errorf("failed to create fill index: %w", err)
	}
	if err := db.CreateIndex(equityIndex, equityPrefix+"*", buntdb.IndexJSON("at")); err != nil {
		return nil, fmt.Errorf("failed to create equity index: %w", err)
	}

	return &BuntStorage{db: db}, nil
}

// SaveFill stores an executed fill.
func (b *BuntStorage) SaveFill(_ context.Context, fill *core.Fill) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if fill.ID == 0 {
			fill.ID = atomic.AddInt64(&b.lastFillID, 1)
		}

		content, err := json.Marshal(fill)
		if err != nil {
			return fmt.Errorf("failed to marshal fill: %w", err)
		}

		key := fillPrefix + strconv.FormatInt(fill.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store fill: %w", err)
		}
		return nil
	})
}

// Fills retrieves fills in time order, filtered by the given predicates.
func (b *BuntStorage) Fills(_ context.Context, filters ...core.FillFilter) ([]*core.Fill, error) {
	fills := make([]*core.Fill, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(fillIndex, func(key, value string) bool {
			var fill core.Fill
			if err := json.Unmarshal([]byte(value), &fill); err != nil {
				return true // skip malformed entries
			}

			for _, filter := range filters {
				if !filter(fill) {
					return true
				}
			}
			fills = append(fills, &fill)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query fills: %w", err)
	}

	return fills, nil
}

// SaveEquity stores one equity curve point.
func (b *BuntStorage) SaveEquity(_ context.Context, point *core.EquityPoint) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if point.ID == 0 {
			point.ID = atomic.AddInt64(&b.lastEquityID, 1)
		}

		content, err := json.Marshal(point)
		if err != nil {
			return fmt.Errorf("failed to marshal equity point: %w", err)
		}

		key := equityPrefix + strconv.FormatInt(point.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store equity point: %w", err)
		}
		return nil
	})
}

// Equity retrieves the stored equity curve in time order.
func (b *BuntStorage) Equity(_ context.Context) ([]*core.EquityPoint, error) {
	points := make([]*core.EquityPoint, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(equityIndex, func(key, value string) bool {
			var point core.EquityPoint
			if err := json.Unmarshal([]byte(value), &point); err != nil {
				return true
			}
			points = append(points, &point)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", err)
	}

	return points, nil
}

// Close closes the database.
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
