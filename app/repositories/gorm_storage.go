package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage keeps slots in the kv_entries table.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (g *GormStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := g.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (g *GormStorage) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (g *GormStorage) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
