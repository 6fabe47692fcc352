// Package subscription implements plan tiers, the plan catalog and the quota
// rules that gate notification delivery.
//
// A Catalog is loaded once at startup from a PlansListSource (StaticSource for
// the built-in plans, YAMLSource for a plan file) and validated as a whole:
// every tier must be present, Free may only use email and console, Pro and
// Enterprise may use every channel, and the event sets nest Free ⊂ Pro ⊂
// Enterprise with Enterprise covering the full event registry.
//
// # Quota rules
//
// Subscription values are immutable from the caller's point of view: every
// mutator returns a modified copy that the caller persists through a
// SubscriptionStore.
//
//	sub, err := store.Get(ctx, subscriberID)
//	if err != nil {
//		return err
//	}
//	if err := sub.EnsureCanSend(now); err != nil {
//		// ErrSubscriptionExpired or ErrQuotaExceeded
//		return err
//	}
//	// ... deliver ...
//	next := sub.IncreaseUsage(now)
//	return store.Save(ctx, &next)
//
// EnsureCanSend checks expiry before usage, so an expired subscription reports
// ErrSubscriptionExpired regardless of its counter. A MonthlyLimit of Unlimited
// skips the quota check.
//
// # Plan catalog file
//
//	plans:
//	  - tier: free
//	    name: Free
//	    monthly_limit: 100
//	    channels: [email, console]
//	    events: [SubscriberRegistered, PasswordReset, OrderCreated]
//	  - tier: pro
//	    name: Pro
//	    monthly_limit: 10000
//	  - tier: enterprise
//	    name: Enterprise
//	    monthly_limit: -1
//
// Omitted channels or events lists grant the full registry.
package subscription
