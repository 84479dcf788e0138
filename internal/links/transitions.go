package links

// Status is the moderation state of a link.
type Status string

const (
	// StatusAutoApproved is a live state assigned by the tier policy when
	// confidence clears the review threshold. Equivalent to approved for
	// downstream consumption, but kept distinct for provenance: no human
	// ever reviewed it.
	StatusAutoApproved Status = "auto_approved"
	StatusNeedsReview  Status = "needs_review"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusRetracted    Status = "retracted"
)

// transitions enumerates every admin-reachable state change.
// Creation assigns auto_approved or needs_review directly; rejected and
// retracted are terminal.
var transitions = map[Status][]Status{
	StatusNeedsReview:  {StatusApproved, StatusRejected},
	StatusAutoApproved: {StatusRetracted},
	StatusApproved:     {StatusRetracted},
}

// Valid reports whether s is a recognized moderation status.
func (s Status) Valid() bool {
	switch s {
	case StatusAutoApproved, StatusNeedsReview, StatusApproved, StatusRejected, StatusRetracted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
// A corrected mapping is created as a new link, never by resurrecting one.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusRetracted
}

// Live reports whether downstream consumers treat the link as active.
// The gate for published metrics is Live AND MovesGauges, not tier alone.
func (s Status) Live() bool {
	return s == StatusAutoApproved || s == StatusApproved
}

// Initial reports whether s is a valid creation-time disposition.
func (s Status) Initial() bool {
	return s == StatusAutoApproved || s == StatusNeedsReview
}

// CanTransition reports whether the state machine permits from → to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequiresReason reports whether a transition into s must carry a reason.
func RequiresReason(s Status) bool {
	return s == StatusRejected || s == StatusRetracted
}
