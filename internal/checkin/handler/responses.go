package handler

import (
	"trustgate/internal/checkin"
)

// ValidateResponse is the HTTP response for POST /checkin/validate.
type ValidateResponse struct {
	VerificationID string          `json:"verification_id"`
	Decision       string          `json:"decision"`
	RiskScore      float64         `json:"risk_score"`
	Signals        []string        `json:"signals"`
	TrustScore     float64         `json:"trust_score"`
	Reward         *RewardResponse `json:"reward,omitempty"`
}

// RewardResponse is the reward portion of the response, present only when the
// check-in counted.
type RewardResponse struct {
	RollingCount    int    `json:"rolling_count"`
	Tier            string `json:"tier"`
	DiscountPercent int    `json:"discount_percent"`
	GoldStacks      int    `json:"gold_stacks"`
	Badge           string `json:"badge,omitempty"`
}

// FromResult converts a pipeline result to an HTTP response.
func FromResult(result *checkin.Result) *ValidateResponse {
	resp := &ValidateResponse{
		VerificationID: result.VerificationID.String(),
		Decision:       string(result.Decision),
		RiskScore:      result.Score,
		Signals:        make([]string, 0, len(result.Signals)),
		TrustScore:     result.TrustScore,
	}
	for _, sig := range result.Signals {
		resp.Signals = append(resp.Signals, string(sig))
	}
	if result.Reward != nil {
		resp.Reward = &RewardResponse{
			RollingCount:    result.Reward.RollingCount,
			Tier:            string(result.Reward.Tier),
			DiscountPercent: result.Reward.DiscountPercent,
			GoldStacks:      result.Reward.GoldStacks,
			Badge:           string(result.Reward.Badge),
		}
	}
	return resp
}

// ResolutionResponse is the HTTP response for a resolution.
type ResolutionResponse struct {
	VerificationID string  `json:"verification_id"`
	Outcome        string  `json:"outcome"`
	TrustScore     float64 `json:"trust_score"`
	TrustDelta     float64 `json:"trust_delta"`
}

// FromResolution converts a resolution result to an HTTP response.
func FromResolution(result *checkin.ResolutionResult) *ResolutionResponse {
	return &ResolutionResponse{
		VerificationID: result.VerificationID.String(),
		Outcome:        string(result.Outcome),
		TrustScore:     result.TrustScore,
		TrustDelta:     result.TrustDelta,
	}
}
