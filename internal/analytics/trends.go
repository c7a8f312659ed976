package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

// Granularity is the size of a trend bucket
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

// Period describes how far back a trend looks and how it is bucketed
type Period struct {
	Name     string
	Lookback time.Duration
	Bucket   Granularity
}

// DefaultPeriod is used for unrecognized period names
const DefaultPeriod = "week"

// week and month both bucket by day; year buckets by week
var periods = map[string]Period{
	"day":   {Name: "day", Lookback: 24 * time.Hour, Bucket: GranularityHour},
	"week":  {Name: "week", Lookback: 7 * 24 * time.Hour, Bucket: GranularityDay},
	"month": {Name: "month", Lookback: 30 * 24 * time.Hour, Bucket: GranularityDay},
	"year":  {Name: "year", Lookback: 365 * 24 * time.Hour, Bucket: GranularityWeek},
}

// ResolvePeriod returns the configuration for a period name, falling back to week
func ResolvePeriod(name string) Period {
	if p, ok := periods[name]; ok {
		return p
	}
	return periods[DefaultPeriod]
}

// BucketStart returns the start of the bucket containing t, evaluated in loc.
// Weeks start on Monday.
func BucketStart(t time.Time, g Granularity, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	switch g {
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

type trendAccumulator struct {
	start        time.Time
	scoreSum     int
	focusSum     int
	durationSum  int
	sessionCount int
}

// BucketTrends groups records by bucket start and reduces each non-empty bucket.
// Buckets without records are not emitted. Points are ascending by bucket start.
func BucketTrends(records []models.ActivityRecord, period Period, loc *time.Location) []models.TrendPoint {
	buckets := make(map[int64]*trendAccumulator)
	for _, r := range records {
		start := BucketStart(r.StartTime, period.Bucket, loc)
		key := start.Unix()
		acc, ok := buckets[key]
		if !ok {
			acc = &trendAccumulator{start: start}
			buckets[key] = acc
		}
		acc.scoreSum += r.ProductivityScore
		acc.focusSum += r.FocusQualityOrZero()
		acc.durationSum += r.DurationSeconds
		acc.sessionCount++
	}

	points := make([]models.TrendPoint, 0, len(buckets))
	for _, acc := range buckets {
		points = append(points, models.TrendPoint{
			PeriodStart:          acc.start,
			AvgProductivity:      float64(acc.scoreSum) / float64(acc.sessionCount),
			AvgFocusQuality:      float64(acc.focusSum) / float64(acc.sessionCount),
			TotalDurationSeconds: acc.durationSum,
			SessionCount:         acc.sessionCount,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].PeriodStart.Before(points[j].PeriodStart)
	})

	return points
}
