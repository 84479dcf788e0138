// Package policy implements the evidentiary-tier policy: the pure rules that
// decide whether a candidate link starts live or in review, and whether it is
// ever permitted to move published gauges.
package policy

// Tier classifies source credibility. Assigned by the connector that created
// the event and immutable thereafter.
type Tier string

const (
	TierA Tier = "A" // peer-reviewed
	TierB Tier = "B" // official lab
	TierC Tier = "C" // reputable press
	TierD Tier = "D" // social / unverified
)

// Disposition is the initial moderation state assigned to a candidate link.
type Disposition string

const (
	DispositionAutoApproved Disposition = "auto_approved"
	DispositionNeedsReview  Disposition = "needs_review"
)

// AutoApproveThreshold is the minimum confidence for skipping human review.
const AutoApproveThreshold = 0.60

// Decision is the outcome of classifying a candidate link.
type Decision struct {
	Disposition Disposition
	MovesGauges bool
	Provisional bool
}

// Valid reports whether t is a recognized evidence tier.
func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// Boost returns the confidence boost applied to alias matches for this tier.
func (t Tier) Boost() float64 {
	switch t {
	case TierA:
		return 0.10
	case TierB:
		return 0.05
	}
	return 0
}

// Classify applies the tier policy to a candidate link.
//
// Gauge movement and disposition are independent rules: tier C/D evidence
// never moves gauges no matter how confident the mapping or how it is later
// moderated, while an A-tier match below the threshold still moves gauges
// once a human approves it. Tier B items are provisional until independently
// corroborated but move gauges from the start.
func Classify(tier Tier, confidence float64) Decision {
	d := Decision{
		MovesGauges: tier == TierA || tier == TierB,
		Provisional: tier == TierB,
		Disposition: DispositionNeedsReview,
	}

	if confidence >= AutoApproveThreshold {
		d.Disposition = DispositionAutoApproved
	}

	return d
}
