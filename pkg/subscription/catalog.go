package subscription

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// freeChannels is the most a Free plan may ever deliver through.
var freeChannels = []notifications.Channel{notifications.ChannelEmail, notifications.ChannelConsole}

// Catalog holds the validated plan set. It is read-only after construction and
// safe for concurrent use.
type Catalog struct {
	plans map[Tier]Plan
}

// NewCatalog loads plans from src and validates them as a whole.
func NewCatalog(ctx context.Context, src PlansListSource) (*Catalog, error) {
	if src == nil {
		panic("subscription: PlansListSource is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	byTier, err := validatePlans(plans)
	if err != nil {
		return nil, err
	}
	return &Catalog{plans: byTier}, nil
}

func validatePlans(plans []Plan) (map[Tier]Plan, error) {
	byTier := make(map[Tier]Plan, len(plans))
	for _, p := range plans {
		if _, err := ParseTier(string(p.Tier)); err != nil {
			return nil, errors.Join(ErrInvalidPlanConfiguration, err)
		}
		if _, dup := byTier[p.Tier]; dup {
			return nil, fmt.Errorf("%w: duplicate tier %s", ErrInvalidPlanConfiguration, p.Tier)
		}
		if p.MonthlyLimit < 0 && p.MonthlyLimit != Unlimited {
			return nil, fmt.Errorf("%w: %s: negative monthly limit %d", ErrInvalidPlanConfiguration, p.Tier, p.MonthlyLimit)
		}
		if p.PeriodMonths < 0 {
			return nil, fmt.Errorf("%w: %s: negative period", ErrInvalidPlanConfiguration, p.Tier)
		}
		for _, ch := range p.Channels {
			if !notifications.IsSupportedChannel(ch) {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPlanConfiguration, p.Tier, notifications.ErrUnknownChannel)
			}
		}
		for _, e := range p.Events {
			if !notifications.IsSupportedEventType(e) {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPlanConfiguration, p.Tier, notifications.ErrUnknownEventType)
			}
		}
		byTier[p.Tier] = p
	}

	for _, t := range AllTiers() {
		if _, ok := byTier[t]; !ok {
			return nil, fmt.Errorf("%w: missing tier %s", ErrInvalidPlanConfiguration, t)
		}
	}

	free, pro, enterprise := byTier[TierFree], byTier[TierPro], byTier[TierEnterprise]

	if extra := difference(free.Channels, freeChannels); len(extra) > 0 {
		return nil, fmt.Errorf("%w: free plan may only use email and console, got %v", ErrInvalidPlanConfiguration, extra)
	}
	for _, p := range []Plan{pro, enterprise} {
		if missing := difference(notifications.AllChannels(), p.Channels); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s plan must allow every channel, missing %v", ErrInvalidPlanConfiguration, p.Tier, missing)
		}
	}

	if missing := difference(free.Events, pro.Events); len(missing) > 0 {
		return nil, fmt.Errorf("%w: pro plan must include every free event, missing %v", ErrInvalidPlanConfiguration, missing)
	}
	if missing := difference(notifications.AllEventTypes(), enterprise.Events); len(missing) > 0 {
		return nil, fmt.Errorf("%w: enterprise plan must include every event, missing %v", ErrInvalidPlanConfiguration, missing)
	}

	return byTier, nil
}

// Plan returns the plan for a tier.
func (c *Catalog) Plan(tier Tier) (Plan, error) {
	p, ok := c.plans[tier]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, tier)
	}
	p.Channels = slices.Clone(p.Channels)
	p.Events = slices.Clone(p.Events)
	return p, nil
}

// Plans returns all plans ordered from Free to Enterprise.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, t := range AllTiers() {
		p, _ := c.Plan(t)
		out = append(out, p)
	}
	return out
}

// AllowedEvents returns the events a tier may trigger. Unknown tiers get none.
func (c *Catalog) AllowedEvents(tier Tier) []notifications.EventType {
	return slices.Clone(c.plans[tier].Events)
}

// IsEventAllowed reports whether tier may trigger e.
func (c *Catalog) IsEventAllowed(tier Tier, e notifications.EventType) bool {
	p, ok := c.plans[tier]
	return ok && p.AllowsEvent(e)
}

// CanUseChannel reports whether tier may deliver through ch.
func (c *Catalog) CanUseChannel(tier Tier, ch notifications.Channel) bool {
	p, ok := c.plans[tier]
	return ok && p.AllowsChannel(ch)
}

// NewSubscription starts a one-period subscription on tier.
func (c *Catalog) NewSubscription(subscriberID uuid.UUID, tier Tier, now time.Time) (*Subscription, error) {
	if subscriberID == uuid.Nil {
		return nil, fmt.Errorf("%w: subscriber id is required", ErrInvalidSubscription)
	}
	plan, err := c.Plan(tier)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Subscription{
		SubscriberID: subscriberID,
		Tier:         plan.Tier,
		MonthlyLimit: plan.MonthlyLimit,
		ExpiresAt:    plan.ExpiresAt(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ChangePlan moves sub to tier, keeping usage and expiry. The comparison
// describes what the change grants or removes.
func (c *Catalog) ChangePlan(sub Subscription, tier Tier, now time.Time) (Subscription, *PlanComparison, error) {
	current, err := c.Plan(sub.Tier)
	if err != nil {
		return sub, nil, err
	}
	target, err := c.Plan(tier)
	if err != nil {
		return sub, nil, err
	}
	return sub.ChangePlan(target, now), ComparePlans(&current, &target), nil
}
