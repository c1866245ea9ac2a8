package noshow

import (
	"math"
	"time"
)

// Imputation defaults, matching the model's training-time assumptions.
const (
	defaultNoShowRate = 0.2
	defaultDistanceKm = 5.0
	defaultTypicalKm  = 10.0
	defaultHostRating = 4.0
)

const (
	newUserRSVPThreshold = 3
	shortNoticeHours     = 24
	longAdvanceHours     = 168
	quickPaymentMinutes  = 10
	lowReliabilityCutoff = 0.7
	distanceCapKm        = 50.0
	eveningStartHour     = 17
	eveningEndHour       = 21
)

// Input is the booking-time context for one prediction. Pointer fields are
// nil when the caller cannot supply the signal; the builder imputes the model
// default and marks the feature, which lowers confidence.
type Input struct {
	NoShowRate        *float64
	LateCancelRate    *float64
	TotalRSVPs        *int
	PriceMode         PriceMode
	DistanceKm        *float64
	TypicalDistanceKm *float64
	HostRating        *float64 // 0 to 5 scale
	RSVPAt            *time.Time
	EventStart        time.Time
	PaymentCompleted  *bool
	PaymentMinutes    *int
}

// BuildFeatures maps booking context onto the fixed model schema.
func BuildFeatures(in Input) FeatureSnapshot {
	var f FeatureSnapshot

	f.NoShowRate = floatOr(in.NoShowRate, defaultNoShowRate)
	f.LateCancelRate = floatOr(in.LateCancelRate, 0)

	if in.TotalRSVPs != nil {
		f.IsNewUser = observed(boolToFloat(*in.TotalRSVPs < newUserRSVPThreshold))
	} else {
		f.IsNewUser = imputed(1.0)
	}

	f.EventIsFree = observed(boolToFloat(in.PriceMode == PriceFree))
	f.PayInPerson = observed(boolToFloat(in.PriceMode == PricePayInPerson))

	weekday := in.EventStart.Weekday()
	hour := in.EventStart.Hour()
	evening := weekday >= time.Monday && weekday <= time.Friday &&
		hour >= eveningStartHour && hour <= eveningEndHour
	f.WeekdayEvening = observed(boolToFloat(evening))

	distance := defaultDistanceKm
	if in.DistanceKm != nil {
		distance = *in.DistanceKm
		f.DistanceNormalized = observed(math.Min(distance/distanceCapKm, 1.0))
	} else {
		f.DistanceNormalized = imputed(math.Min(distance/distanceCapKm, 1.0))
	}

	typical := defaultTypicalKm
	typicalImputed := in.TypicalDistanceKm == nil
	if !typicalImputed {
		typical = *in.TypicalDistanceKm
	}
	above := 0.0
	if typical > 0 {
		above = math.Max(0, (distance-typical)/typical)
	}
	if typicalImputed || in.DistanceKm == nil {
		f.DistanceAboveTypical = imputed(above)
	} else {
		f.DistanceAboveTypical = observed(above)
	}

	if in.HostRating != nil {
		f.HostLowReliability = observed(boolToFloat(*in.HostRating/5.0 < lowReliabilityCutoff))
	} else {
		f.HostLowReliability = imputed(boolToFloat(defaultHostRating/5.0 < lowReliabilityCutoff))
	}

	if in.RSVPAt != nil {
		hoursUntil := in.EventStart.Sub(*in.RSVPAt).Hours()
		f.ShortNotice = observed(boolToFloat(hoursUntil < shortNoticeHours))
		f.LongAdvance = observed(boolToFloat(hoursUntil > longAdvanceHours))
	} else {
		f.ShortNotice = imputed(0)
		f.LongAdvance = imputed(0)
	}

	if in.PriceMode == PricePaid {
		completed := in.PaymentCompleted != nil && *in.PaymentCompleted
		quick := completed && in.PaymentMinutes != nil && *in.PaymentMinutes < quickPaymentMinutes
		if in.PaymentCompleted != nil {
			f.PaymentPending = observed(boolToFloat(!completed))
			f.PaidQuickly = observed(boolToFloat(quick))
		} else {
			f.PaymentPending = imputed(0)
			f.PaidQuickly = imputed(0)
		}
	} else {
		f.PaymentPending = observed(0)
		f.PaidQuickly = observed(0)
	}

	return f
}

func floatOr(v *float64, def float64) Feature {
	if v != nil {
		return observed(*v)
	}
	return imputed(def)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
