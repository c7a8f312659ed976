package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/pkg/supabase"
)

type supabaseActivityRepository struct {
	client *supabase.Client
}

// NewSupabaseActivityRepository creates an activity repository backed by Supabase PostgREST
func NewSupabaseActivityRepository(client *supabase.Client) ActivityRepository {
	return &supabaseActivityRepository{client: client}
}

func (r *supabaseActivityRepository) Create(ctx context.Context, record *models.ActivityRecord) (*models.ActivityRecord, error) {
	data := map[string]interface{}{
		"user_id":            record.UserID,
		"category":           record.Category,
		"productivity_score": record.ProductivityScore,
		"duration_seconds":   record.DurationSeconds,
		"start_time":         record.StartTime.UTC(),
	}

	if record.ID != "" {
		data["id"] = record.ID
	}
	if record.FocusQuality != nil {
		data["focus_quality"] = *record.FocusQuality
	}
	if record.EndTime != nil {
		data["end_time"] = record.EndTime.UTC()
	}

	body, err := r.client.Insert(ctx, "activities", data)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.Conflict() {
			return nil, fmt.Errorf("activity %s: %w", record.ID, ErrDuplicateActivity)
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	var records []models.ActivityRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no activity returned")
	}

	return &records[0], nil
}

func (r *supabaseActivityRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, since, until time.Time) ([]models.ActivityRecord, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and": fmt.Sprintf("(start_time.gte.%s,start_time.lt.%s)",
			since.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339)),
		"order": "start_time.asc",
	}

	body, err := r.client.Query(ctx, "activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	var records []models.ActivityRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return records, nil
}

// supabaseWellness mirrors the wellness_logs row; PostgREST returns date columns as YYYY-MM-DD
type supabaseWellness struct {
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	SleepHours      *float64  `json:"sleep_hours"`
	SleepQuality    *int      `json:"sleep_quality"`
	ExerciseMinutes *int      `json:"exercise_minutes"`
	MoodRating      *int      `json:"mood_rating"`
	StressLevel     *int      `json:"stress_level"`
	NutritionScore  *int      `json:"nutrition_score"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (w supabaseWellness) toModel() (models.WellnessRecord, error) {
	date, err := time.Parse(dateLayout, w.Date)
	if err != nil {
		return models.WellnessRecord{}, fmt.Errorf("invalid wellness date %q: %w", w.Date, err)
	}
	return models.WellnessRecord{
		UserID:          w.UserID,
		Date:            date,
		SleepHours:      w.SleepHours,
		SleepQuality:    w.SleepQuality,
		ExerciseMinutes: w.ExerciseMinutes,
		MoodRating:      w.MoodRating,
		StressLevel:     w.StressLevel,
		NutritionScore:  w.NutritionScore,
		UpdatedAt:       w.UpdatedAt,
	}, nil
}

func decodeWellness(body []byte) ([]models.WellnessRecord, error) {
	var rows []supabaseWellness
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	records := make([]models.WellnessRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

type supabaseWellnessRepository struct {
	client     *supabase.Client
	activities ActivityRepository
	join       joinConfig
}

// NewSupabaseWellnessRepository creates a wellness repository backed by Supabase PostgREST
func NewSupabaseWellnessRepository(client *supabase.Client, opts ...JoinOption) WellnessRepository {
	return &supabaseWellnessRepository{
		client:     client,
		activities: NewSupabaseActivityRepository(client),
		join:       newJoinConfig(opts),
	}
}

func (r *supabaseWellnessRepository) Upsert(ctx context.Context, record *models.WellnessRecord) (*models.WellnessRecord, error) {
	data := map[string]interface{}{
		"user_id":          record.UserID,
		"date":             truncateDay(record.Date).Format(dateLayout),
		"sleep_hours":      record.SleepHours,
		"sleep_quality":    record.SleepQuality,
		"exercise_minutes": record.ExerciseMinutes,
		"mood_rating":      record.MoodRating,
		"stress_level":     record.StressLevel,
		"nutrition_score":  record.NutritionScore,
	}

	body, err := r.client.Upsert(ctx, "wellness_logs", data, "user_id,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wellness log: %w", err)
	}

	records, err := decodeWellness(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no wellness log returned")
	}

	return &records[0], nil
}

func (r *supabaseWellnessRepository) GetJoinedWithActivity(ctx context.Context, userID string, sinceDate time.Time) ([]models.WellnessActivityRow, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"date":    fmt.Sprintf("gte.%s", calendarDay(sinceDate, r.join.loc).Format(dateLayout)),
		"order":   "date.asc",
	}

	body, err := r.client.Query(ctx, "wellness_logs", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get wellness logs: %w", err)
	}

	wellness, err := decodeWellness(body)
	if err != nil {
		return nil, err
	}
	if len(wellness) == 0 {
		return []models.WellnessActivityRow{}, nil
	}

	since, until := activityWindow(wellness, r.join.loc)
	activities, err := r.activities.GetByUserIDAndDateRange(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}

	return joinWellnessWithActivity(wellness, activities, r.join.loc), nil
}
