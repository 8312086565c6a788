package risk

import "slices"

// Recommendation is the static advice shown next to a score.
type Recommendation struct {
	Headline string   `json:"headline" yaml:"headline"`
	Summary  string   `json:"summary" yaml:"summary"`
	Advice   []string `json:"advice" yaml:"advice"`
}

var recommendations = map[Tier]Recommendation{
	TierHigh: {
		Headline: "High risk of diabetes",
		Summary:  "Your measurements indicate a high risk of diabetes. Please consult a healthcare professional for a full assessment.",
		Advice: []string{
			"Book an appointment with your doctor and ask for an HbA1c or fasting glucose test.",
			"Reduce refined sugar and processed carbohydrates; favour vegetables, whole grains and lean protein.",
			"Aim for at least 150 minutes of moderate physical activity per week.",
			"Monitor your blood glucose and blood pressure regularly.",
			"Work towards a healthy weight; losing 5-7% of body weight lowers risk significantly.",
		},
	},
	TierLow: {
		Headline: "Low risk of diabetes",
		Summary:  "Your measurements indicate a low risk of diabetes. Keep up a healthy lifestyle.",
		Advice: []string{
			"Maintain a balanced diet rich in fibre and low in added sugar.",
			"Stay physically active for at least 30 minutes most days.",
			"Have your glucose checked during routine health visits.",
			"Keep a healthy weight and avoid smoking.",
		},
	},
}

// Recommendations returns a copy of the advice block for a tier. Unknown
// tiers get the low risk copy.
func Recommendations(tier Tier) Recommendation {
	r, ok := recommendations[tier]
	if !ok {
		r = recommendations[TierLow]
	}
	r.Advice = slices.Clone(r.Advice)
	return r
}
