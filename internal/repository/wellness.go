package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

type wellnessRepository struct {
	db         *gorm.DB
	activities ActivityRepository
	join       joinConfig
}

// NewWellnessRepository creates a new wellness repository backed by a SQL database
func NewWellnessRepository(db *gorm.DB, opts ...JoinOption) WellnessRepository {
	return &wellnessRepository{db: db, activities: NewActivityRepository(db), join: newJoinConfig(opts)}
}

func (r *wellnessRepository) Upsert(ctx context.Context, record *models.WellnessRecord) (*models.WellnessRecord, error) {
	row := newWellnessRow(record)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sleep_hours", "sleep_quality", "exercise_minutes",
			"mood_rating", "stress_level", "nutrition_score", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wellness log: %w", err)
	}

	var stored wellnessRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", row.UserID, row.Date).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to reload wellness log: %w", err)
	}

	out := stored.toModel()
	return &out, nil
}

func (r *wellnessRepository) GetJoinedWithActivity(ctx context.Context, userID string, sinceDate time.Time) ([]models.WellnessActivityRow, error) {
	var rows []wellnessRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, calendarDay(sinceDate, r.join.loc)).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get wellness logs: %w", err)
	}

	if len(rows) == 0 {
		return []models.WellnessActivityRow{}, nil
	}

	wellness := make([]models.WellnessRecord, 0, len(rows))
	for _, row := range rows {
		wellness = append(wellness, row.toModel())
	}

	since, until := activityWindow(wellness, r.join.loc)
	activities, err := r.activities.GetByUserIDAndDateRange(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}

	return joinWellnessWithActivity(wellness, activities, r.join.loc), nil
}
