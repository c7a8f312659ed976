package repository

import (
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/analytics"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

const dateLayout = "2006-01-02"

// JoinOption configures how wellness days are matched with activity days
type JoinOption func(*joinConfig)

type joinConfig struct {
	loc *time.Location
}

// WithDayLocation sets the time zone whose calendar days decide which activities
// belong to "the next day". Defaults to UTC.
func WithDayLocation(loc *time.Location) JoinOption {
	return func(c *joinConfig) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func newJoinConfig(opts []JoinOption) joinConfig {
	c := joinConfig{loc: time.UTC}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// calendarDay returns the calendar day t falls on in loc, as midnight UTC.
// Wellness dates are stored in that form.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	return calendarDay(t, time.UTC)
}

// activityWindow returns the start_time range that can join to the given wellness days
func activityWindow(wellness []models.WellnessRecord, loc *time.Location) (since, until time.Time) {
	first := truncateDay(wellness[0].Date)
	last := truncateDay(wellness[len(wellness)-1].Date)
	since = time.Date(first.Year(), first.Month(), first.Day()+analytics.ActivityDayOffset, 0, 0, 0, 0, loc)
	until = time.Date(last.Year(), last.Month(), last.Day()+analytics.ActivityDayOffset+1, 0, 0, 0, 0, loc)
	return since, until
}

type dayActivity struct {
	productivitySum int
	focusSum        int
	count           int
}

// joinWellnessWithActivity pairs each wellness day d with the activities that started on
// day d+ActivityDayOffset in loc. Days without activity keep nil averages and a zero count.
func joinWellnessWithActivity(wellness []models.WellnessRecord, activities []models.ActivityRecord, loc *time.Location) []models.WellnessActivityRow {
	byDay := make(map[string]*dayActivity)
	for _, a := range activities {
		key := a.StartTime.In(loc).Format(dateLayout)
		agg, ok := byDay[key]
		if !ok {
			agg = &dayActivity{}
			byDay[key] = agg
		}
		agg.productivitySum += a.ProductivityScore
		agg.focusSum += a.FocusQualityOrZero()
		agg.count++
	}

	rows := make([]models.WellnessActivityRow, 0, len(wellness))
	for _, w := range wellness {
		day := truncateDay(w.Date)
		row := models.WellnessActivityRow{
			Date:            day,
			SleepHours:      w.SleepHours,
			SleepQuality:    w.SleepQuality,
			ExerciseMinutes: w.ExerciseMinutes,
			MoodRating:      w.MoodRating,
			StressLevel:     w.StressLevel,
			NutritionScore:  w.NutritionScore,
		}

		next := day.AddDate(0, 0, analytics.ActivityDayOffset).Format(dateLayout)
		if agg, ok := byDay[next]; ok && agg.count > 0 {
			avgProd := float64(agg.productivitySum) / float64(agg.count)
			avgFocus := float64(agg.focusSum) / float64(agg.count)
			row.AvgProductivity = &avgProd
			row.AvgFocusQuality = &avgFocus
			row.SessionCount = agg.count
		}

		rows = append(rows, row)
	}

	return rows
}
