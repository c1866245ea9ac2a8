// Package noshow forecasts the probability that a user misses an event after
// booking. This is behavioral forecasting for pricing and attendance planning,
// not moderation: predictions never feed the risk decision path.
package noshow

import (
	"math"
	"time"

	id "trustgate/pkg/domain"
)

// ModelVersion tags every prediction so outcomes can be reconciled against
// the weight set that produced them.
const ModelVersion = "1.0.0-logistic"

// Intercept is the base log-odds, roughly an 18 percent base no-show rate.
const Intercept = -1.5

// Feature is one model input. Imputed marks a default used because the caller
// could not supply the real signal; imputed features lower confidence.
type Feature struct {
	Value   float64 `json:"value"`
	Imputed bool    `json:"imputed,omitempty"`
}

func observed(v float64) Feature { return Feature{Value: v} }
func imputed(v float64) Feature  { return Feature{Value: v, Imputed: true} }

// FeatureSnapshot is the fixed feature schema for ModelVersion. Changing the
// set of fields requires a new model version.
type FeatureSnapshot struct {
	NoShowRate           Feature `json:"no_show_rate"`
	LateCancelRate       Feature `json:"late_cancel_rate"`
	IsNewUser            Feature `json:"is_new_user"`
	EventIsFree          Feature `json:"event_is_free"`
	PayInPerson          Feature `json:"pay_in_person"`
	WeekdayEvening       Feature `json:"weekday_evening"`
	DistanceNormalized   Feature `json:"distance_normalized"`
	DistanceAboveTypical Feature `json:"distance_above_typical"`
	HostLowReliability   Feature `json:"host_low_reliability"`
	ShortNotice          Feature `json:"short_notice"`
	LongAdvance          Feature `json:"long_advance"`
	PaidQuickly          Feature `json:"paid_quickly"`
	PaymentPending       Feature `json:"payment_pending"`
}

// weighted pairs each feature with its logistic regression coefficient.
// Positive weights increase no-show probability.
func (f FeatureSnapshot) weighted() []struct {
	Feature Feature
	Weight  float64
} {
	return []struct {
		Feature Feature
		Weight  float64
	}{
		{f.NoShowRate, 2.5},
		{f.LateCancelRate, 1.2},
		{f.IsNewUser, 0.4},
		{f.EventIsFree, 0.7},
		{f.PayInPerson, 0.3},
		{f.WeekdayEvening, 0.4},
		{f.DistanceNormalized, 0.3},
		{f.DistanceAboveTypical, 0.5},
		{f.HostLowReliability, 0.5},
		{f.ShortNotice, 0.3},
		{f.LongAdvance, -0.2},
		{f.PaidQuickly, -0.6},
		{f.PaymentPending, 0.4},
	}
}

// Probability evaluates the logistic model over the snapshot.
func (f FeatureSnapshot) Probability() float64 {
	logOdds := Intercept
	for _, wf := range f.weighted() {
		logOdds += wf.Weight * wf.Feature.Value
	}
	return 1.0 / (1.0 + math.Exp(-logOdds))
}

// Confidence is the share of features carrying real, non-imputed values,
// clamped to [0.1, 0.95].
func (f FeatureSnapshot) Confidence() float64 {
	all := f.weighted()
	real := 0
	for _, wf := range all {
		if !wf.Feature.Imputed {
			real++
		}
	}
	c := float64(real) / float64(len(all))
	return math.Min(math.Max(c, 0.1), 0.95)
}

// PriceMode is how the event charges attendees.
type PriceMode string

const (
	PriceFree        PriceMode = "free"
	PricePaid        PriceMode = "paid"
	PricePayInPerson PriceMode = "pay_in_person"
)

// Outcome is what actually happened, recorded after the event.
type Outcome string

const (
	OutcomeAttended  Outcome = "attended"
	OutcomeNoShow    Outcome = "no_show"
	OutcomeCancelled Outcome = "cancelled"
)

func (o Outcome) Known() bool {
	switch o {
	case OutcomeAttended, OutcomeNoShow, OutcomeCancelled:
		return true
	}
	return false
}

// Prediction is the logged result of one forecast. Outcome is written at most
// once unless the correction explicitly overrides.
type Prediction struct {
	ID           id.PredictionID
	UserID       id.UserID
	EventID      id.EventID
	Probability  float64
	Confidence   float64
	Features     FeatureSnapshot
	ModelVersion string
	CreatedAt    time.Time

	Outcome           *Outcome
	OutcomeRecordedAt *time.Time
}
