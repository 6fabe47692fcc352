package subscription

import (
	"slices"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Plan describes what a tier may send and how much.
type Plan struct {
	Tier         Tier
	Name         string
	Description  string
	MonthlyLimit int64 // Unlimited (-1) disables the quota
	PeriodMonths int   // subscription length; zero means one month
	Channels     []notifications.Channel
	Events       []notifications.EventType
}

// AllowsChannel reports whether the plan may deliver through ch.
func (p Plan) AllowsChannel(ch notifications.Channel) bool {
	return slices.Contains(p.Channels, ch)
}

// AllowsEvent reports whether the plan may trigger e.
func (p Plan) AllowsEvent(e notifications.EventType) bool {
	return slices.Contains(p.Events, e)
}

// ExpiresAt returns the end of one plan period starting at start.
func (p Plan) ExpiresAt(start time.Time) time.Time {
	months := p.PeriodMonths
	if months <= 0 {
		months = 1
	}
	return start.AddDate(0, months, 0).UTC()
}

// PlanComparison contains the differences between two plans.
// Used to log and communicate what a plan change grants or removes.
type PlanComparison struct {
	NewChannels  []notifications.Channel
	LostChannels []notifications.Channel
	NewEvents    []notifications.EventType
	LostEvents   []notifications.EventType
	Limit        LimitChange
}

// LimitChange represents a change of the monthly limit.
type LimitChange struct {
	From int64
	To   int64
}

// Decreased reports whether the change reduces the quota. Unlimited to limited
// counts as a decrease.
func (c LimitChange) Decreased() bool {
	if c.From == c.To || c.To == Unlimited {
		return false
	}
	return c.From == Unlimited || c.To < c.From
}

// IsDowngrade returns true if anything is taken away.
func (c *PlanComparison) IsDowngrade() bool {
	return len(c.LostChannels) > 0 || len(c.LostEvents) > 0 || c.Limit.Decreased()
}

// ComparePlans returns the differences between current and target plans.
func ComparePlans(current, target *Plan) *PlanComparison {
	if current == nil || target == nil {
		return nil
	}

	return &PlanComparison{
		NewChannels:  difference(target.Channels, current.Channels),
		LostChannels: difference(current.Channels, target.Channels),
		NewEvents:    difference(target.Events, current.Events),
		LostEvents:   difference(current.Events, target.Events),
		Limit:        LimitChange{From: current.MonthlyLimit, To: target.MonthlyLimit},
	}
}

// difference returns the items of a missing from b, in a's order.
func difference[T comparable](a, b []T) []T {
	out := make([]T, 0)
	for _, v := range a {
		if !slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}
