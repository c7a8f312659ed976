// Package analytics contains the aggregation algorithms behind the cached
// analytics endpoints: productivity scoring, trend bucketing, wellness
// correlation and peak window detection. Everything here is a pure function
// of its inputs; querying and caching live in the service layer.
package analytics

import (
	"math"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

// FocusScoreThreshold is the minimum productivity score for a session to count as focus time
const FocusScoreThreshold = 70

// CategoryAverageMode selects how the per-category productivity average is accumulated
type CategoryAverageMode string

const (
	// CategoryAverageRunning halves toward each new score: avg = (avg + score) / 2.
	// It is order dependent and biased toward recent records, and is kept for
	// compatibility with historically reported values.
	CategoryAverageRunning CategoryAverageMode = "running"
	// CategoryAverageMean is the arithmetic mean of all scores in the category
	CategoryAverageMean CategoryAverageMode = "mean"
)

// ParseCategoryAverageMode converts a config string to a mode, defaulting to running
func ParseCategoryAverageMode(s string) CategoryAverageMode {
	if CategoryAverageMode(s) == CategoryAverageMean {
		return CategoryAverageMean
	}
	return CategoryAverageRunning
}

// ComputeProductivityMetrics builds the rolling summary for one user's records.
// The caller chooses the window; records are processed in the order given.
func ComputeProductivityMetrics(records []models.ActivityRecord, mode CategoryAverageMode) models.ProductivityMetrics {
	metrics := models.ProductivityMetrics{
		CategoryBreakdown: make(map[string]models.CategoryStats),
	}
	if len(records) == 0 {
		return metrics
	}

	totalDuration := 0
	for _, r := range records {
		totalDuration += r.DurationSeconds
	}

	var weighted float64
	focusSeconds := 0
	focusQualitySum := 0
	scoreSums := make(map[string]int)

	for _, r := range records {
		if totalDuration > 0 {
			weighted += float64(r.DurationSeconds) / float64(totalDuration) * float64(r.ProductivityScore)
		}
		if r.ProductivityScore >= FocusScoreThreshold {
			focusSeconds += r.DurationSeconds
		}
		focusQualitySum += r.FocusQualityOrZero()

		stats, seen := metrics.CategoryBreakdown[r.Category]
		stats.DurationSeconds += r.DurationSeconds
		stats.SessionCount++
		switch {
		case mode == CategoryAverageMean:
			scoreSums[r.Category] += r.ProductivityScore
			stats.AvgProductivity = float64(scoreSums[r.Category]) / float64(stats.SessionCount)
		case !seen:
			stats.AvgProductivity = float64(r.ProductivityScore)
		default:
			stats.AvgProductivity = (stats.AvgProductivity + float64(r.ProductivityScore)) / 2
		}
		metrics.CategoryBreakdown[r.Category] = stats
	}

	metrics.ProductivityScore = int(math.Round(weighted))
	metrics.TotalFocusTimeMinutes = int(math.Round(float64(focusSeconds) / 60))
	metrics.AverageFocusQuality = int(math.Round(float64(focusQualitySum) / float64(len(records))))

	return metrics
}
