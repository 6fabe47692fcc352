package subscription

import "errors"

var (
	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")
	ErrUnknownTier              = errors.New("unknown subscription tier")

	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionExpired  = errors.New("subscription has expired")
	ErrQuotaExceeded        = errors.New("monthly notification quota exceeded")
	ErrInvalidSubscription  = errors.New("invalid subscription")
)
