package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tropicaldog17/cryptofolio/internal/db"
	"github.com/tropicaldog17/cryptofolio/internal/models"
)

type snapshotRepository struct {
	db *db.DB
}

// NewSnapshotRepository creates a snapshot repository backed by the database.
func NewSnapshotRepository(database *db.DB) SnapshotRepository {
	return &snapshotRepository{db: database}
}

func (r *snapshotRepository) Get(ctx context.Context, key string) (string, error) {
	var snap models.Snapshot
	err := r.db.WithContext(ctx).First(&snap, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return snap.Data, nil
}

func (r *snapshotRepository) Put(ctx context.Context, key, data string) error {
	snap := models.Snapshot{Key: key, Data: data}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("failed to store snapshot %q: %w", key, err)
	}
	return nil
}
