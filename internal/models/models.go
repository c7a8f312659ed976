package models

import "time"

// ActivityRecord represents a single focus/activity session
type ActivityRecord struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Category          string     `json:"category"`
	ProductivityScore int        `json:"productivity_score"`      // 0-100
	FocusQuality      *int       `json:"focus_quality,omitempty"` // 0-100
	DurationSeconds   int        `json:"duration_seconds"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// FocusQualityOrZero returns the focus quality, treating an absent value as 0
func (a ActivityRecord) FocusQualityOrZero() int {
	if a.FocusQuality == nil {
		return 0
	}
	return *a.FocusQuality
}

// WellnessRecord represents a daily wellness log. At most one exists per user per day.
type WellnessRecord struct {
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	SleepHours      *float64  `json:"sleep_hours,omitempty"`
	SleepQuality    *int      `json:"sleep_quality,omitempty"`
	ExerciseMinutes *int      `json:"exercise_minutes,omitempty"`
	MoodRating      *int      `json:"mood_rating,omitempty"`
	StressLevel     *int      `json:"stress_level,omitempty"`
	NutritionScore  *int      `json:"nutrition_score,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WellnessActivityRow is a wellness day joined with the activity recorded on the following day
type WellnessActivityRow struct {
	Date            time.Time `json:"date"`
	SleepHours      *float64  `json:"sleep_hours,omitempty"`
	SleepQuality    *int      `json:"sleep_quality,omitempty"`
	ExerciseMinutes *int      `json:"exercise_minutes,omitempty"`
	MoodRating      *int      `json:"mood_rating,omitempty"`
	StressLevel     *int      `json:"stress_level,omitempty"`
	NutritionScore  *int      `json:"nutrition_score,omitempty"`
	AvgProductivity *float64  `json:"avg_productivity,omitempty"`
	AvgFocusQuality *float64  `json:"avg_focus_quality,omitempty"`
	SessionCount    int       `json:"session_count"`
}

// CreateActivityRequest represents the request to record an activity
type CreateActivityRequest struct {
	ID                string     `json:"id"`
	Category          string     `json:"category" validate:"notblank"`
	ProductivityScore *int       `json:"productivity_score" validate:"required,min=0,max=100"`
	FocusQuality      *int       `json:"focus_quality" validate:"omitnil,min=0,max=100"`
	DurationSeconds   int        `json:"duration_seconds" validate:"gt=0"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
}

// LogWellnessRequest represents the request to upsert a wellness day.
// Date uses the YYYY-MM-DD format.
type LogWellnessRequest struct {
	Date            string   `json:"date"`
	SleepHours      *float64 `json:"sleep_hours" validate:"omitnil,min=0,max=24"`
	SleepQuality    *int     `json:"sleep_quality" validate:"omitnil,min=1,max=10"`
	ExerciseMinutes *int     `json:"exercise_minutes" validate:"omitnil,min=0"`
	MoodRating      *int     `json:"mood_rating" validate:"omitnil,min=1,max=10"`
	StressLevel     *int     `json:"stress_level" validate:"omitnil,min=1,max=10"`
	NutritionScore  *int     `json:"nutrition_score" validate:"omitnil,min=1,max=10"`
}

// AuthUser is the identity resolved by the auth middleware
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
