package approval

// DefaultCommissionThreshold is the standard vendor commission percent.
// Commissions at the standard rate need no sign-off; any deviation does.
const DefaultCommissionThreshold = 3.0

// CommissionPolicy decides when a vendor commission change must go
// through the approval workflow. The threshold is configuration, not a
// constant, so deployments with a different standard rate can set their
// own.
type CommissionPolicy struct {
	Threshold float64
}

// NewCommissionPolicy builds the policy, falling back to the default
// threshold when the configured value is zero.
func NewCommissionPolicy(threshold float64) CommissionPolicy {
	if threshold == 0 {
		threshold = DefaultCommissionThreshold
	}
	return CommissionPolicy{Threshold: threshold}
}

// RequiresApproval reports whether the given commission percent deviates
// from the standard rate.
func (p CommissionPolicy) RequiresApproval(commissionPercent float64) bool {
	return commissionPercent != p.Threshold
}
