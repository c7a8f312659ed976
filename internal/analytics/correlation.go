package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

const (
	// MinCorrelationSamples is the minimum number of paired days for a non-zero coefficient
	MinCorrelationSamples = 7

	// ActivityDayOffset joins wellness day d with activity measured on day d+1,
	// i.e. productivity is measured the day after the sleep it is compared to.
	ActivityDayOffset = 1

	// Correlation thresholds per signal
	SleepThresholdStrong   = 0.5
	SleepThresholdModerate = 0.3
	ExerciseThreshold      = 0.3
	MoodThreshold          = 0.4
)

// Pearson computes the Pearson correlation coefficient of two equal-length series.
// Series of unequal length, empty series, and series with zero variance yield 0.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	varX := fn*sumX2 - sumX*sumX
	varY := fn*sumY2 - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0
	}

	denominator := math.Sqrt(varX * varY)
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}

	r := numerator / denominator
	// guard against floating point drift just outside [-1, 1]
	return math.Max(-1, math.Min(1, r))
}

// SleepObservation pairs a night's sleep with the next day's average productivity
type SleepObservation struct {
	SleepHours      float64
	AvgProductivity float64
}

// AnalyzeWellness correlates wellness signals with next-day productivity and
// generates insights. Fewer than MinCorrelationSamples sleep pairs yield a zero
// coefficient and no insights.
func AnalyzeWellness(rows []models.WellnessActivityRow) models.CorrelationResult {
	if rows == nil {
		rows = []models.WellnessActivityRow{}
	}
	result := models.CorrelationResult{
		Insights: []string{},
		Rows:     rows,
	}

	var sleep []SleepObservation
	var sleepXs, sleepYs, exerciseXs, exerciseYs, moodXs, moodYs []float64
	for _, row := range rows {
		if row.AvgProductivity == nil {
			continue
		}
		productivity := *row.AvgProductivity
		if row.SleepHours != nil {
			sleep = append(sleep, SleepObservation{SleepHours: *row.SleepHours, AvgProductivity: productivity})
			sleepXs = append(sleepXs, *row.SleepHours)
			sleepYs = append(sleepYs, productivity)
		}
		if row.ExerciseMinutes != nil {
			exerciseXs = append(exerciseXs, float64(*row.ExerciseMinutes))
			exerciseYs = append(exerciseYs, productivity)
		}
		if row.MoodRating != nil {
			moodXs = append(moodXs, float64(*row.MoodRating))
			moodYs = append(moodYs, productivity)
		}
	}

	result.SampleSize = len(sleep)
	if len(sleep) < MinCorrelationSamples {
		return result
	}

	result.Coefficient = Pearson(sleepXs, sleepYs)
	result.Insights = append(result.Insights, SleepInsights(result.Coefficient, sleep)...)

	if len(exerciseXs) >= MinCorrelationSamples {
		result.ExerciseCoefficient = Pearson(exerciseXs, exerciseYs)
		if insight, ok := ExerciseInsight(result.ExerciseCoefficient); ok {
			result.Insights = append(result.Insights, insight)
		}
	}

	if len(moodXs) >= MinCorrelationSamples {
		result.MoodCoefficient = Pearson(moodXs, moodYs)
		if insight, ok := MoodInsight(result.MoodCoefficient); ok {
			result.Insights = append(result.Insights, insight)
		}
	}

	return result
}

// SleepInsights returns the tiered sleep insight text for a coefficient.
// A strong positive correlation also reports the optimal sleep duration.
func SleepInsights(r float64, observations []SleepObservation) []string {
	switch {
	case r > SleepThresholdStrong:
		insights := []string{
			fmt.Sprintf("Strong positive correlation between sleep and productivity (r=%.2f): you are noticeably more productive after longer nights.", r),
		}
		if hours, avg, ok := OptimalSleepDuration(observations); ok {
			insights = append(insights, fmt.Sprintf("Your optimal sleep duration appears to be around %d hours (average productivity %.0f).", hours, avg))
		}
		return insights
	case r > SleepThresholdModerate:
		return []string{
			fmt.Sprintf("Moderate positive correlation between sleep and productivity (r=%.2f): more sleep tends to help your focus.", r),
		}
	default:
		return []string{
			fmt.Sprintf("No strong relationship between sleep duration and productivity was found (r=%.2f).", r),
		}
	}
}

// OptimalSleepDuration groups observations by whole sleep hours and returns the
// bucket with the highest average productivity. Ties go to the shorter duration.
func OptimalSleepDuration(observations []SleepObservation) (hours int, avgProductivity float64, ok bool) {
	if len(observations) == 0 {
		return 0, 0, false
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, o := range observations {
		bucket := int(math.Floor(o.SleepHours))
		sums[bucket] += o.AvgProductivity
		counts[bucket]++
	}

	buckets := make([]int, 0, len(sums))
	for b := range sums {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	best := buckets[0]
	bestAvg := sums[best] / float64(counts[best])
	for _, b := range buckets[1:] {
		avg := sums[b] / float64(counts[b])
		if avg > bestAvg {
			best, bestAvg = b, avg
		}
	}

	return best, bestAvg, true
}

// ExerciseInsight returns an insight when exercise correlates with next-day productivity
func ExerciseInsight(r float64) (string, bool) {
	if r <= ExerciseThreshold {
		return "", false
	}
	return fmt.Sprintf("Days after you exercise tend to be more productive (r=%.2f).", r), true
}

// MoodInsight returns an insight when mood correlates with next-day productivity
func MoodInsight(r float64) (string, bool) {
	if r <= MoodThreshold {
		return "", false
	}
	return fmt.Sprintf("Better moods go along with higher productivity the following day (r=%.2f).", r), true
}
