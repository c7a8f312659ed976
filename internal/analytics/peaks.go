package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

const (
	// PeakThresholdFactor is how far above the mean hourly productivity a peak must be
	PeakThresholdFactor = 1.10

	// MaxPeakWindows caps the number of windows returned
	MaxPeakWindows = 3
)

// HourlyAggregates reduces records to one aggregate per hour of day (in loc) that
// has at least one session, ascending by hour.
func HourlyAggregates(records []models.ActivityRecord, loc *time.Location) []models.PerformanceWindow {
	if loc == nil {
		loc = time.UTC
	}

	var scoreSums, focusSums, counts [24]int
	for _, r := range records {
		hour := r.StartTime.In(loc).Hour()
		scoreSums[hour] += r.ProductivityScore
		focusSums[hour] += r.FocusQualityOrZero()
		counts[hour]++
	}

	hours := make([]models.PerformanceWindow, 0, 24)
	for hour := 0; hour < 24; hour++ {
		if counts[hour] == 0 {
			continue
		}
		hours = append(hours, models.PerformanceWindow{
			HourOfDay:       hour,
			AvgProductivity: float64(scoreSums[hour]) / float64(counts[hour]),
			AvgFocusQuality: float64(focusSums[hour]) / float64(counts[hour]),
			SessionCount:    counts[hour],
		})
	}

	return hours
}

// DetectPeakWindows ranks hours whose average productivity exceeds the mean across
// active hours by PeakThresholdFactor and returns at most MaxPeakWindows of them,
// best first, together with scheduling recommendations.
func DetectPeakWindows(hours []models.PerformanceWindow) models.PerformanceWindows {
	result := models.PerformanceWindows{
		Windows:         []models.PerformanceWindow{},
		Recommendations: []string{},
	}

	var sum float64
	active := 0
	for _, h := range hours {
		if h.SessionCount < 1 {
			continue
		}
		sum += h.AvgProductivity
		active++
	}
	if active == 0 {
		return result
	}

	threshold := sum / float64(active) * PeakThresholdFactor
	for _, h := range hours {
		if h.SessionCount >= 1 && h.AvgProductivity > threshold {
			result.Windows = append(result.Windows, h)
		}
	}

	sort.SliceStable(result.Windows, func(i, j int) bool {
		if result.Windows[i].AvgProductivity != result.Windows[j].AvgProductivity {
			return result.Windows[i].AvgProductivity > result.Windows[j].AvgProductivity
		}
		return result.Windows[i].HourOfDay < result.Windows[j].HourOfDay
	})

	if len(result.Windows) > MaxPeakWindows {
		result.Windows = result.Windows[:MaxPeakWindows]
	}

	if len(result.Windows) > 0 {
		top := result.Windows[0]
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Schedule your most demanding work around %s, when your productivity averages %.0f.", formatHour(top.HourOfDay), top.AvgProductivity))
	}
	if len(result.Windows) > 1 {
		second := result.Windows[1]
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%s is also a strong window for focused sessions.", formatHour(second.HourOfDay)))
	}

	return result
}

// formatHour formats an hour (0-23) as a readable string
func formatHour(hour int) string {
	if hour == 0 {
		return "12 AM"
	} else if hour < 12 {
		return fmt.Sprintf("%d AM", hour)
	} else if hour == 12 {
		return "12 PM"
	} else {
		return fmt.Sprintf("%d PM", hour-12)
	}
}
