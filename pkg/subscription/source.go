package subscription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// PlansListSource defines how plans are loaded into a Catalog.
type PlansListSource interface {
	Load(ctx context.Context) ([]Plan, error)
}

// StaticSource serves a fixed list of plans.
type StaticSource struct {
	plans []Plan
}

// NewStaticSource creates a source from in-memory plans. With no arguments it
// serves DefaultPlans.
func NewStaticSource(plans ...Plan) *StaticSource {
	if len(plans) == 0 {
		plans = DefaultPlans()
	}
	return &StaticSource{plans: plans}
}

func (s *StaticSource) Load(_ context.Context) ([]Plan, error) {
	out := make([]Plan, len(s.plans))
	for i, p := range s.plans {
		p.Channels = slices.Clone(p.Channels)
		p.Events = slices.Clone(p.Events)
		out[i] = p
	}
	return out, nil
}

// DefaultPlans returns the built-in Free, Pro and Enterprise plans.
func DefaultPlans() []Plan {
	free := []notifications.EventType{
		notifications.EventSubscriberRegistered,
		notifications.EventPasswordReset,
		notifications.EventOrderCreated,
	}
	pro := append(slices.Clone(free),
		notifications.EventOrderShipped,
		notifications.EventOrderDelivered,
		notifications.EventOrderCancelled,
		notifications.EventPaymentSucceeded,
		notifications.EventPaymentFailed,
	)

	return []Plan{
		{
			Tier:         TierFree,
			Name:         "Free",
			Description:  "Email and console notifications for core account events",
			MonthlyLimit: 100,
			PeriodMonths: 1,
			Channels:     []notifications.Channel{notifications.ChannelEmail, notifications.ChannelConsole},
			Events:       free,
		},
		{
			Tier:         TierPro,
			Name:         "Pro",
			MonthlyLimit: 10_000,
			PeriodMonths: 1,
			Channels:     notifications.AllChannels(),
			Events:       pro,
		},
		{
			Tier:         TierEnterprise,
			Name:         "Enterprise",
			MonthlyLimit: 100_000,
			PeriodMonths: 1,
			Channels:     notifications.AllChannels(),
			Events:       notifications.AllEventTypes(),
		},
	}
}

// YAMLSource reads plans from a YAML document:
//
//	plans:
//	  - tier: free
//	    name: Free
//	    monthly_limit: 100
//	    channels: [email, console]
//	    events: [SubscriberRegistered, OrderCreated]
//
// An omitted channels or events list grants the full registry.
type YAMLSource struct {
	read func() ([]byte, error)
}

// NewYAMLSource reads the plan file at path on every Load.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{read: func() ([]byte, error) { return os.ReadFile(path) }}
}

// NewYAMLSourceFromReader reads the document once, eagerly.
func NewYAMLSourceFromReader(r io.Reader) *YAMLSource {
	data, err := io.ReadAll(r)
	return &YAMLSource{read: func() ([]byte, error) { return data, err }}
}

type yamlPlans struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	Tier         string   `yaml:"tier"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	MonthlyLimit *int64   `yaml:"monthly_limit"`
	PeriodMonths int      `yaml:"period_months"`
	Channels     []string `yaml:"channels"`
	Events       []string `yaml:"events"`
}

func (s *YAMLSource) Load(_ context.Context) ([]Plan, error) {
	data, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var doc yamlPlans
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	plans := make([]Plan, 0, len(doc.Plans))
	for i, yp := range doc.Plans {
		p, err := yp.toPlan()
		if err != nil {
			return nil, fmt.Errorf("plan #%d: %w", i, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (yp yamlPlan) toPlan() (Plan, error) {
	tier, err := ParseTier(yp.Tier)
	if err != nil {
		return Plan{}, errors.Join(ErrInvalidPlanConfiguration, err)
	}
	if yp.MonthlyLimit == nil {
		return Plan{}, fmt.Errorf("%w: %s: monthly_limit is required", ErrInvalidPlanConfiguration, tier)
	}

	p := Plan{
		Tier:         tier,
		Name:         yp.Name,
		Description:  yp.Description,
		MonthlyLimit: *yp.MonthlyLimit,
		PeriodMonths: yp.PeriodMonths,
		Channels:     notifications.AllChannels(),
		Events:       notifications.AllEventTypes(),
	}

	if yp.Channels != nil {
		p.Channels = make([]notifications.Channel, 0, len(yp.Channels))
		for _, name := range yp.Channels {
			ch, err := notifications.ParseChannel(name)
			if err != nil {
				return Plan{}, errors.Join(ErrInvalidPlanConfiguration, err)
			}
			p.Channels = append(p.Channels, ch)
		}
	}
	if yp.Events != nil {
		p.Events = make([]notifications.EventType, 0, len(yp.Events))
		for _, name := range yp.Events {
			e, err := notifications.ParseEventType(name)
			if err != nil {
				return Plan{}, errors.Join(ErrInvalidPlanConfiguration, err)
			}
			p.Events = append(p.Events, e)
		}
	}
	return p, nil
}
