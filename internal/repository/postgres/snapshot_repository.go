package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"marketplace/domain"
	"marketplace/internal/repository/snapshot"
)

// CREATE TABLE public.marketplace_snapshots (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     payload     JSONB NOT NULL,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type SnapshotRow struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

func (SnapshotRow) TableName() string {
	return "marketplace_snapshots"
}

// SnapshotRepository stores every saved snapshot as one row and keeps the
// newest `keep` rows.
type SnapshotRepository struct {
	DB   *gorm.DB
	keep int
}

func NewSnapshotRepository(db *gorm.DB, keep int) *SnapshotRepository {
	if keep < 1 {
		keep = 1
	}

	return &SnapshotRepository{
		DB:   db,
		keep: keep,
	}
}

func (r *SnapshotRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&SnapshotRow{}); err != nil {
		return fmt.Errorf("failed to migrate snapshots: %w", err)
	}

	return nil
}

func (r *SnapshotRepository) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("context error: %w", err)
	}

	var row SnapshotRow
	err := r.DB.WithContext(ctx).Order("id DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Snapshot{}, domain.ErrSnapshotMissing
		}
		return domain.Snapshot{}, fmt.Errorf("failed to find snapshot: %w", err)
	}

	return snapshot.Decode(row.Payload)
}

func (r *SnapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	payload, err := snapshot.Encode(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := SnapshotRow{Payload: datatypes.JSON(payload), CreatedAt: time.Now().UTC()}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}

		cutoff := int64(row.ID) - int64(r.keep)
		if cutoff > 0 {
			if err := tx.Where("id <= ?", cutoff).Delete(&SnapshotRow{}).Error; err != nil {
				return fmt.Errorf("failed to prune snapshots: %w", err)
			}
		}

		return nil
	})
}
