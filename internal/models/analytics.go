// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package models

// FeatureUsageAnalytics is the derived per-feature statistical summary.
// It is always recomputed from the event set; a feature with zero events in
// the queried range produces no entry at all rather than a zero-filled one,
// so callers can distinguish "unused" from "measured zero".
//
// Invariants:
//   - RetentionRate and AdoptionRate are bounded to [0,100].
//   - MostCommonActions percentages sum to 100 within rounding tolerance.
type FeatureUsageAnalytics struct {
	Feature         string  `json:"feature"`
	TotalUsage      int     `json:"total_usage"`
	UniqueUsers     int     `json:"unique_users"`
	AvgEventsPerUser float64 `json:"avg_events_per_user"`

	// RetentionRate is the percentage of this feature's users active on
	// more than one distinct calendar day.
	RetentionRate float64 `json:"retention_rate"`

	// AdoptionRate is the percentage of the registered population that has
	// used the feature at least once.
	AdoptionRate float64 `json:"adoption_rate"`

	// TimeToFirstUseDays is the mean elapsed days between an actor's
	// registration and their first use of the feature, over actors with a
	// known registration time.
	TimeToFirstUseDays float64 `json:"time_to_first_use_days"`

	MostCommonActions []ActionCount `json:"most_common_actions"`

	UsageByTier      map[string]int `json:"usage_by_tier"`
	UsageByHourOfDay map[string]int `json:"usage_by_hour_of_day"`
	UsageByDayOfWeek map[string]int `json:"usage_by_day_of_week"`
}

// ActionCount is one entry of a feature's ranked action list.
type ActionCount struct {
	Action     string  `json:"action"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PopularityEntry ranks a feature by current-window usage with its growth
// versus the trailing window. Growth is 0 when the trailing baseline is
// zero, never NaN or infinite.
type PopularityEntry struct {
	Feature       string  `json:"feature"`
	Usage         int     `json:"usage"`
	GrowthPercent float64 `json:"growth_percent"`
}
