package service

import (
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/analytics"
)

// Lookback windows for the record source
const (
	MetricsLookback     = 30 * 24 * time.Hour
	WindowsLookback     = 30 * 24 * time.Hour
	CorrelationLookback = 90 * 24 * time.Hour
)

// TTLConfig holds the cache lifetime of each derived entity
type TTLConfig struct {
	Metrics     time.Duration
	Trends      time.Duration
	Correlation time.Duration
	Windows     time.Duration
}

// AnalyticsConfig configures the analytics facade
type AnalyticsConfig struct {
	TTL             TTLConfig
	SourceTimeout   time.Duration
	CategoryAverage analytics.CategoryAverageMode
	CoalesceMisses  bool
	Location        *time.Location
	Now             func() time.Time
}

// DefaultAnalyticsConfig returns the default facade configuration
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		TTL: TTLConfig{
			Metrics:     time.Hour,
			Trends:      30 * time.Minute,
			Correlation: 2 * time.Hour,
			Windows:     time.Hour,
		},
		SourceTimeout:   5 * time.Second,
		CategoryAverage: analytics.CategoryAverageRunning,
		CoalesceMisses:  true,
		Location:        time.UTC,
		Now:             time.Now,
	}
}

func (c AnalyticsConfig) withDefaults() AnalyticsConfig {
	d := DefaultAnalyticsConfig()
	if c.TTL.Metrics <= 0 {
		c.TTL.Metrics = d.TTL.Metrics
	}
	if c.TTL.Trends <= 0 {
		c.TTL.Trends = d.TTL.Trends
	}
	if c.TTL.Correlation <= 0 {
		c.TTL.Correlation = d.TTL.Correlation
	}
	if c.TTL.Windows <= 0 {
		c.TTL.Windows = d.TTL.Windows
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = d.SourceTimeout
	}
	if c.CategoryAverage == "" {
		c.CategoryAverage = d.CategoryAverage
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	return c
}
