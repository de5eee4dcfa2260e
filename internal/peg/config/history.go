package config

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GenerationRecord is one row of generation history: what was generated,
// from what grammar, and how big the result was. cmd/peggen serve's
// /history endpoint lists the rows already in the database; nothing in
// cmd/peggen calls Record, so neither the one-shot generate path nor
// serve's /generate adds rows.
type GenerationRecord struct {
	ID          string `gorm:"primaryKey"`
	GrammarPath string `gorm:"index"`
	GrammarHash string
	RuleCount   int
	OutputMode  string
	GeneratedAt time.Time `gorm:"index"`
	DurationMS  int64
	OutputBytes int
}

// History is the generation-history store, built on gorm.io/gorm over
// gorm.io/driver/sqlite, alongside the hand-rolled server/dao/sqlite style
// of talking to modernc.org/sqlite through database/sql directly. Unlike that
// store, History has exactly one table, so there's no repository-per-entity
// split to mirror; AutoMigrate replaces the explicit
// CREATE-TABLE-IF-NOT-EXISTS init step.
type History struct {
	db *gorm.DB
}

// OpenHistory opens (creating if necessary) the SQLite database at path and
// ensures the generation_records table exists.
func OpenHistory(path string) (*History, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&GenerationRecord{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &History{db: db}, nil
}

// Record inserts a new GenerationRecord, stamping it with a fresh UUID and
// the current time. Callers pass GeneratedAt pre-set only in tests; callers
// doing real generation leave it zero and Record fills it in.
func (h *History) Record(ctx context.Context, rec GenerationRecord) (GenerationRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now()
	}
	if err := h.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return GenerationRecord{}, fmt.Errorf("record generation history: %w", err)
	}
	return rec, nil
}

// Recent returns the most recent generation records, newest first, limited
// to limit rows.
func (h *History) Recent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	var recs []GenerationRecord
	err := h.db.WithContext(ctx).
		Order("generated_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list generation history: %w", err)
	}
	return recs, nil
}

// ForGrammar returns every recorded generation for the given grammar path,
// newest first.
func (h *History) ForGrammar(ctx context.Context, grammarPath string) ([]GenerationRecord, error) {
	var recs []GenerationRecord
	err := h.db.WithContext(ctx).
		Where("grammar_path = ?", grammarPath).
		Order("generated_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list generation history for %q: %w", grammarPath, err)
	}
	return recs, nil
}

// Close releases the underlying database connection.
func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
