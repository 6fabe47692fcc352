package subscription_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

func defaultCatalog(t *testing.T) *subscription.Catalog {
	t.Helper()
	c, err := subscription.NewCatalog(context.Background(), subscription.NewStaticSource())
	require.NoError(t, err)
	return c
}

func TestCatalog_Defaults(t *testing.T) {
	t.Parallel()

	c := defaultCatalog(t)

	t.Run("limits", func(t *testing.T) {
		t.Parallel()

		want := map[subscription.Tier]int64{
			subscription.TierFree:       100,
			subscription.TierPro:        10_000,
			subscription.TierEnterprise: 100_000,
		}
		for tier, limit := range want {
			p, err := c.Plan(tier)
			require.NoError(t, err)
			assert.Equal(t, limit, p.MonthlyLimit, tier)
		}
	})

	t.Run("events nest", func(t *testing.T) {
		t.Parallel()

		free := c.AllowedEvents(subscription.TierFree)
		pro := c.AllowedEvents(subscription.TierPro)
		enterprise := c.AllowedEvents(subscription.TierEnterprise)

		assert.NotEmpty(t, free)
		assert.Subset(t, pro, free)
		assert.Greater(t, len(pro), len(free))
		assert.Subset(t, enterprise, pro)
		assert.ElementsMatch(t, notifications.AllEventTypes(), enterprise)
	})

	t.Run("channels", func(t *testing.T) {
		t.Parallel()

		for _, ch := range notifications.AllChannels() {
			allowedOnFree := ch == notifications.ChannelEmail || ch == notifications.ChannelConsole
			assert.Equal(t, allowedOnFree, c.CanUseChannel(subscription.TierFree, ch), ch.String())
			assert.True(t, c.CanUseChannel(subscription.TierPro, ch), ch.String())
			assert.True(t, c.CanUseChannel(subscription.TierEnterprise, ch), ch.String())
		}
	})

	t.Run("unknown tier gets nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, c.AllowedEvents("gold"))
		assert.False(t, c.CanUseChannel("gold", notifications.ChannelEmail))
		_, err := c.Plan("gold")
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		t.Parallel()

		events := c.AllowedEvents(subscription.TierFree)
		events[0] = notifications.EventInvoiceCreated
		assert.False(t, c.IsEventAllowed(subscription.TierFree, notifications.EventInvoiceCreated))
	})
}

func TestCatalog_NewSubscription(t *testing.T) {
	t.Parallel()

	c := defaultCatalog(t)
	now := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	id := uuid.New()

	sub, err := c.NewSubscription(id, subscription.TierFree, now)
	require.NoError(t, err)
	assert.Equal(t, id, sub.SubscriberID)
	assert.Equal(t, int64(100), sub.MonthlyLimit)
	assert.Equal(t, int64(0), sub.UsedThisMonth)
	assert.True(t, sub.ExpiresAt.After(now))
	assert.NoError(t, sub.EnsureCanSend(now))

	_, err = c.NewSubscription(uuid.Nil, subscription.TierFree, now)
	assert.ErrorIs(t, err, subscription.ErrInvalidSubscription)

	_, err = c.NewSubscription(id, "gold", now)
	assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
}

func TestCatalog_ChangePlan(t *testing.T) {
	t.Parallel()

	c := defaultCatalog(t)
	now := time.Now()
	sub, err := c.NewSubscription(uuid.New(), subscription.TierPro, now)
	require.NoError(t, err)

	downgraded, cmp, err := c.ChangePlan(*sub, subscription.TierFree, now)
	require.NoError(t, err)
	assert.Equal(t, subscription.TierFree, downgraded.Tier)
	assert.True(t, cmp.IsDowngrade())
	assert.Contains(t, cmp.LostChannels, notifications.ChannelSlack)
	assert.Contains(t, cmp.LostEvents, notifications.EventOrderShipped)

	upgraded, cmp, err := c.ChangePlan(downgraded, subscription.TierEnterprise, now)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), upgraded.MonthlyLimit)
	assert.False(t, cmp.IsDowngrade())
	assert.Contains(t, cmp.NewEvents, notifications.EventSubscriptionExpiring)
}

func TestCatalog_YAMLSource(t *testing.T) {
	t.Parallel()

	c, err := subscription.NewCatalog(context.Background(), subscription.NewYAMLSource("testdata/plans.yaml"))
	require.NoError(t, err)

	free, err := c.Plan(subscription.TierFree)
	require.NoError(t, err)
	assert.Equal(t, int64(50), free.MonthlyLimit)
	assert.ElementsMatch(t, []notifications.EventType{notifications.EventSubscriberRegistered, notifications.EventPasswordReset}, free.Events)

	pro, err := c.Plan(subscription.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 12, pro.PeriodMonths)
	assert.ElementsMatch(t, notifications.AllChannels(), pro.Channels)

	enterprise, err := c.Plan(subscription.TierEnterprise)
	require.NoError(t, err)
	assert.Equal(t, subscription.Unlimited, enterprise.MonthlyLimit)
	assert.ElementsMatch(t, notifications.AllEventTypes(), enterprise.Events)
}

func TestCatalog_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing tier",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email]}
  - {tier: pro, monthly_limit: 1}`,
		},
		{
			name: "duplicate tier",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email]}
  - {tier: free, monthly_limit: 1, channels: [email]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "free with slack",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email, slack]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "negative limit",
			doc: `plans:
  - {tier: free, monthly_limit: -5, channels: [email]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "missing limit",
			doc: `plans:
  - {tier: free, channels: [email]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "unknown channel",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [fax]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "unknown event",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email], events: [NotARealEvent]}
  - {tier: pro, monthly_limit: 1}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "pro not a superset of free",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email], events: [OrderCreated]}
  - {tier: pro, monthly_limit: 1, events: [PasswordReset]}
  - {tier: enterprise, monthly_limit: 1}`,
		},
		{
			name: "enterprise without full registry",
			doc: `plans:
  - {tier: free, monthly_limit: 1, channels: [email], events: []}
  - {tier: pro, monthly_limit: 1, events: []}
  - {tier: enterprise, monthly_limit: 1, events: [OrderCreated]}`,
		},
		{
			name: "unknown field",
			doc: `plans:
  - {tier: free, monthly_limit: 1, price: 10}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := subscription.NewCatalog(context.Background(), subscription.NewYAMLSourceFromReader(strings.NewReader(tt.doc)))
			assert.ErrorIs(t, err, subscription.ErrInvalidPlanConfiguration)
		})
	}

	t.Run("unreadable file", func(t *testing.T) {
		t.Parallel()

		_, err := subscription.NewCatalog(context.Background(), subscription.NewYAMLSource("testdata/missing.yaml"))
		assert.ErrorIs(t, err, subscription.ErrFailedToLoadPlans)
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()

		_, err := subscription.NewCatalog(context.Background(), failingSource{})
		assert.ErrorIs(t, err, subscription.ErrFailedToLoadPlans)
	})

	t.Run("nil source panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { _, _ = subscription.NewCatalog(context.Background(), nil) })
	})
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]subscription.Plan, error) {
	return nil, errors.New("db down")
}

func TestComparePlans(t *testing.T) {
	t.Parallel()

	assert.Nil(t, subscription.ComparePlans(nil, &subscription.Plan{}))

	limited := subscription.LimitChange{From: subscription.Unlimited, To: 100}
	assert.True(t, limited.Decreased())
	assert.False(t, subscription.LimitChange{From: 100, To: subscription.Unlimited}.Decreased())
	assert.False(t, subscription.LimitChange{From: 100, To: 200}.Decreased())
	assert.True(t, subscription.LimitChange{From: 200, To: 100}.Decreased())
}
