package repository

import (
	"time"

	"gorm.io/datatypes"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

type activityRow struct {
	ID                string `gorm:"primaryKey;type:varchar(36)"`
	UserID            string `gorm:"not null;index:idx_activities_user_start,priority:1"`
	Category          string `gorm:"not null"`
	ProductivityScore int    `gorm:"not null"`
	FocusQuality      *int
	DurationSeconds   int       `gorm:"not null"`
	StartTime         time.Time `gorm:"not null;index:idx_activities_user_start,priority:2"`
	EndTime           *time.Time
	CreatedAt         time.Time
}

func (activityRow) TableName() string { return "activities" }

func newActivityRow(r *models.ActivityRecord) activityRow {
	row := activityRow{
		ID:                r.ID,
		UserID:            r.UserID,
		Category:          r.Category,
		ProductivityScore: r.ProductivityScore,
		FocusQuality:      r.FocusQuality,
		DurationSeconds:   r.DurationSeconds,
		StartTime:         r.StartTime.UTC(),
		CreatedAt:         r.CreatedAt,
	}
	if r.EndTime != nil {
		end := r.EndTime.UTC()
		row.EndTime = &end
	}
	return row
}

func (r activityRow) toModel() models.ActivityRecord {
	return models.ActivityRecord{
		ID:                r.ID,
		UserID:            r.UserID,
		Category:          r.Category,
		ProductivityScore: r.ProductivityScore,
		FocusQuality:      r.FocusQuality,
		DurationSeconds:   r.DurationSeconds,
		StartTime:         r.StartTime.UTC(),
		EndTime:           r.EndTime,
		CreatedAt:         r.CreatedAt,
	}
}

type wellnessRow struct {
	ID              uint           `gorm:"primaryKey"`
	UserID          string         `gorm:"not null;uniqueIndex:idx_wellness_user_date,priority:1"`
	Date            datatypes.Date `gorm:"not null;uniqueIndex:idx_wellness_user_date,priority:2"`
	SleepHours      *float64
	SleepQuality    *int
	ExerciseMinutes *int
	MoodRating      *int
	StressLevel     *int
	NutritionScore  *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (wellnessRow) TableName() string { return "wellness_logs" }

func newWellnessRow(r *models.WellnessRecord) wellnessRow {
	return wellnessRow{
		UserID:          r.UserID,
		Date:            datatypes.Date(truncateDay(r.Date)),
		SleepHours:      r.SleepHours,
		SleepQuality:    r.SleepQuality,
		ExerciseMinutes: r.ExerciseMinutes,
		MoodRating:      r.MoodRating,
		StressLevel:     r.StressLevel,
		NutritionScore:  r.NutritionScore,
	}
}

func (r wellnessRow) toModel() models.WellnessRecord {
	return models.WellnessRecord{
		UserID:          r.UserID,
		Date:            truncateDay(time.Time(r.Date)),
		SleepHours:      r.SleepHours,
		SleepQuality:    r.SleepQuality,
		ExerciseMinutes: r.ExerciseMinutes,
		MoodRating:      r.MoodRating,
		StressLevel:     r.StressLevel,
		NutritionScore:  r.NutritionScore,
		UpdatedAt:       r.UpdatedAt,
	}
}
