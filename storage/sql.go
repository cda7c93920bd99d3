package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quantforge/algotick/core"
)

// SQLStorage implements core.RunStorage on a SQL database via GORM.
type SQLStorage struct {
	db *gorm.DB
}

// Config holds connection pool settings.
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// NewFromSQLite creates a SQLite-backed run storage.
func NewFromSQLite(dbPath string, config Config, opts ...gorm.Option) (core.RunStorage, error) {
	return newFromSQL(sqlite.Open(dbPath), config, opts...)
}

func newFromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (core.RunStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&core.Fill{}, &core.EquityPoint{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// SaveFill stores an executed fill.
func (s *SQLStorage) SaveFill(ctx context.Context, fill *core.Fill) error {
	if result := s.db.WithContext(ctx).Create(fill); result.Error != nil {
		return fmt.Errorf("failed to create fill: %w", result.Error)
	}
	return nil
}

// Fills retrieves fills in time order, filtered by the given predicates.
// Predicates are applied in memory so that the two backends share one
// filter vocabulary.
func (s *SQLStorage) Fills(ctx context.Context, filters ...core.FillFilter) ([]*core.Fill, error) {
	var fills []*core.Fill
	if result := s.db.WithContext(ctx).Order("at").Find(&fills); result.Error != nil {
		return nil, fmt.Errorf("failed to query fills: %w", result.Error)
	}

	return lo.Filter(fills, func(fill *core.Fill, _ int) bool {
		for _, filter := range filters {
			if !filter(*fill) {
				return false
			}
		}
		return true
	}), nil
}

// SaveEquity stores one equity curve point.
func (s *SQLStorage) SaveEquity(ctx context.Context, point *core.EquityPoint) error {
	if result := s.db.WithContext(ctx).Create(point); result.Error != nil {
		return fmt.Errorf("failed to create equity point: %w", result.Error)
	}
	return nil
}

// Equity retrieves the stored equity curve in time order.
func (s *SQLStorage) Equity(ctx context.Context) ([]*core.EquityPoint, error) {
	var points []*core.EquityPoint
	if result := s.db.WithContext(ctx).Order("at").Find(&points); result.Error != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", result.Error)
	}
	return points, nil
}
