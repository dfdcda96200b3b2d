package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/interfaces"
)

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) interfaces.SnapshotRepository {
	return &snapshotRepository{
		db: db,
	}
}

// Get returns the stored collection for key, or nil if no snapshot exists
// yet so the caller can seed.
func (r *snapshotRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "snapshotRepository.Get")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("snapshot.key", key)

	var snapshot models.Snapshot
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return json.RawMessage(snapshot.Value), nil
}

// Put replaces the whole collection stored under key.
func (r *snapshotRepository) Put(ctx context.Context, key string, value json.RawMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "snapshotRepository.Put")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("snapshot.key", key)

	snapshot := models.Snapshot{
		Key:       key,
		Value:     models.JSONText(value),
		UpdatedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&snapshot).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
