package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository backed by a SQL database
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, record *models.ActivityRecord) (*models.ActivityRecord, error) {
	row := newActivityRow(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("activity %s: %w", record.ID, ErrDuplicateActivity)
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	created := row.toModel()
	return &created, nil
}

func (r *activityRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, since, until time.Time) ([]models.ActivityRecord, error) {
	var rows []activityRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, since.UTC(), until.UTC()).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	records := make([]models.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toModel())
	}
	return records, nil
}
