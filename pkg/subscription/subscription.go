package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tracks a subscriber's plan, quota and expiry.
// Each subscriber has exactly one subscription, keyed by SubscriberID.
//
// Usage is monotonic for the lifetime of a subscription period; nothing resets
// UsedThisMonth. Renew starts a new period with a fresh counter.
type Subscription struct {
	SubscriberID  uuid.UUID `json:"subscriber_id"`
	Tier          Tier      `json:"tier"`
	MonthlyLimit  int64     `json:"monthly_limit"`
	UsedThisMonth int64     `json:"used_this_month"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EnsureCanSend reports whether one more notification may be sent at now.
// Expiry is checked before quota.
func (s Subscription) EnsureCanSend(now time.Time) error {
	if s.IsExpired(now) {
		return ErrSubscriptionExpired
	}
	if s.MonthlyLimit != Unlimited && s.UsedThisMonth >= s.MonthlyLimit {
		return ErrQuotaExceeded
	}
	return nil
}

// IsExpired returns true once now reaches ExpiresAt.
func (s Subscription) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IncreaseUsage returns a copy with one more notification counted.
func (s Subscription) IncreaseUsage(now time.Time) Subscription {
	s.UsedThisMonth++
	s.UpdatedAt = now.UTC()
	return s
}

// Remaining returns how many sends are left, or Unlimited.
func (s Subscription) Remaining() int64 {
	if s.MonthlyLimit == Unlimited {
		return Unlimited
	}
	return max(s.MonthlyLimit-s.UsedThisMonth, 0)
}

// ChangePlan returns a copy on plan's tier and limit. Usage and expiry are kept.
func (s Subscription) ChangePlan(plan Plan, now time.Time) Subscription {
	s.Tier = plan.Tier
	s.MonthlyLimit = plan.MonthlyLimit
	s.UpdatedAt = now.UTC()
	return s
}

// Renew returns a copy starting a new period on plan at now with usage cleared.
func (s Subscription) Renew(plan Plan, now time.Time) Subscription {
	now = now.UTC()
	s.Tier = plan.Tier
	s.MonthlyLimit = plan.MonthlyLimit
	s.UsedThisMonth = 0
	s.ExpiresAt = plan.ExpiresAt(now)
	s.UpdatedAt = now
	return s
}
