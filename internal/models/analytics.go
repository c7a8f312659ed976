package models

import "time"

// ProductivityMetrics is the rolling productivity summary over the trailing 30 days
type ProductivityMetrics struct {
	ProductivityScore     int                      `json:"productivity_score"`
	TotalFocusTimeMinutes int                      `json:"total_focus_time_minutes"`
	AverageFocusQuality   int                      `json:"average_focus_quality"`
	CategoryBreakdown     map[string]CategoryStats `json:"category_breakdown"`
}

// CategoryStats summarizes the activity of a single category
type CategoryStats struct {
	DurationSeconds int     `json:"duration_seconds"`
	SessionCount    int     `json:"session_count"`
	AvgProductivity float64 `json:"avg_productivity"`
}

// TrendPoint represents one non-empty time bucket of a trend series
type TrendPoint struct {
	PeriodStart          time.Time `json:"period_start"`
	AvgProductivity      float64   `json:"avg_productivity"`
	AvgFocusQuality      float64   `json:"avg_focus_quality"`
	TotalDurationSeconds int       `json:"total_duration_seconds"`
	SessionCount         int       `json:"session_count"`
}

// CorrelationResult holds the sleep/productivity correlation and derived insights
type CorrelationResult struct {
	Coefficient         float64               `json:"coefficient"`
	ExerciseCoefficient float64               `json:"exercise_coefficient"`
	MoodCoefficient     float64               `json:"mood_coefficient"`
	SampleSize          int                   `json:"sample_size"`
	Insights            []string              `json:"insights"`
	Rows                []WellnessActivityRow `json:"rows"`
}

// PerformanceWindow is the aggregate of all sessions started in one hour of the day
type PerformanceWindow struct {
	HourOfDay       int     `json:"hour_of_day"`
	AvgProductivity float64 `json:"avg_productivity"`
	AvgFocusQuality float64 `json:"avg_focus_quality"`
	SessionCount    int     `json:"session_count"`
}

// PerformanceWindows holds the ranked peak windows and scheduling recommendations
type PerformanceWindows struct {
	Windows         []PerformanceWindow `json:"windows"`
	Recommendations []string            `json:"recommendations"`
}
