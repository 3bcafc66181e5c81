// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/pulseboard/internal/eventstore"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// EventSource supplies the event history churn scoring is computed over.
type EventSource interface {
	Query(ctx context.Context, filter eventstore.QueryFilter) ([]models.UsageEvent, error)
}

// PredictChurn scores churn risk for one actor, or for every observed actor
// when userID is empty. Actors with no recorded events produce a single
// zero-probability prediction so callers can distinguish "scored low" from
// "not scored".
func (p *Predictor) PredictChurn(ctx context.Context, userID string) ([]models.ChurnPrediction, error) {
	events, err := p.source.Query(ctx, eventstore.QueryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for churn scoring: %w", err)
	}

	byActor := make(map[string][]time.Time)
	for _, event := range events {
		if event.UserID == "" {
			continue
		}
		if userID != "" && event.UserID != userID {
			continue
		}
		byActor[event.UserID] = append(byActor[event.UserID], event.Timestamp)
	}

	if userID != "" && len(byActor) == 0 {
		return []models.ChurnPrediction{{UserID: userID, Probability: 0}}, nil
	}

	actors := make([]string, 0, len(byActor))
	for actor := range byActor {
		actors = append(actors, actor)
	}
	sort.Strings(actors)

	predictions := make([]models.ChurnPrediction, 0, len(actors))
	for _, actor := range actors {
		predictions = append(predictions, p.scoreActor(actor, byActor[actor]))
	}

	metrics.ForecastsComputed.WithLabelValues("churn").Inc()
	return predictions, nil
}

// scoreActor combines recency decay and frequency decline into one bounded
// risk score.
func (p *Predictor) scoreActor(userID string, timestamps []time.Time) models.ChurnPrediction {
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	now := p.now().UTC()
	daysSinceLast := now.Sub(timestamps[len(timestamps)-1]).Hours() / 24
	if daysSinceLast < 0 {
		daysSinceLast = 0
	}

	recency := daysSinceLast / p.recencyScale(timestamps)
	recency = clamp01(recency)

	decline := p.frequencyDecline(timestamps, now)

	probability := clamp01(p.cfg.RecencyWeight*recency + p.cfg.FrequencyWeight*decline)

	var factors, actions []string
	if daysSinceLast > float64(p.cfg.InactivityThresholdDays) {
		factors = append(factors, fmt.Sprintf("no activity in >%d days", p.cfg.InactivityThresholdDays))
		actions = append(actions, "Send a re-engagement campaign")
	}
	if decline > declineFactorThreshold {
		factors = append(factors, "usage declining week over week")
		actions = append(actions, "Schedule a customer check-in and feature walkthrough")
	}

	return models.ChurnPrediction{
		UserID:             userID,
		Probability:        math.Round(probability*10000) / 10000,
		RiskFactors:        factors,
		RecommendedActions: actions,
	}
}

// declineFactorThreshold is the decline score above which the frequency
// risk factor is named.
const declineFactorThreshold = 0.25

// recencyScale is the inactivity span treated as certain churn: the
// actor's median inter-event gap scaled up, floored so a single quiet
// weekend never maxes the score.
func (p *Predictor) recencyScale(timestamps []time.Time) float64 {
	scale := medianGapDays(timestamps) * p.cfg.MedianGapFactor
	if floor := float64(p.cfg.RecencyFloorDays); scale < floor {
		scale = floor
	}
	return scale
}

// medianGapDays returns the median gap between consecutive events in days,
// 0 when fewer than two events exist.
func medianGapDays(timestamps []time.Time) float64 {
	if len(timestamps) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		gaps = append(gaps, timestamps[i].Sub(timestamps[i-1]).Hours()/24)
	}
	sort.Float64s(gaps)
	mid := len(gaps) / 2
	if len(gaps)%2 == 1 {
		return gaps[mid]
	}
	return (gaps[mid-1] + gaps[mid]) / 2
}

// frequencyDecline scores how steeply the actor's daily usage counts over
// the last K days are falling, in [0,1]. A rising or flat trend scores 0.
func (p *Predictor) frequencyDecline(timestamps []time.Time, now time.Time) float64 {
	k := p.cfg.FrequencyWindowDays
	counts := make([]float64, k)

	cutoff := now.AddDate(0, 0, -(k - 1))
	dayStart := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)

	total := 0.0
	for _, ts := range timestamps {
		offset := int(ts.Sub(dayStart).Hours() / 24)
		if offset >= 0 && offset < k {
			counts[offset]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	fit := fitLine(counts)
	mean := total / float64(k)
	if mean == 0 {
		return 0
	}
	// Normalize the slope against the mean so heavy and light users score
	// on the same scale.
	return clamp01(-fit.Slope / mean)
}
