package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/senders"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

// State reports what the dispatcher loop is doing.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Deps are the collaborators the dispatcher needs. All fields are required.
type Deps struct {
	Queue         *queue.Queue[notifications.Command]
	Subscriptions subscription.SubscriptionStore
	Catalog       *subscription.Catalog
	Resolver      *notifications.Resolver
	Renderer      *notifications.Renderer
	Senders       *senders.Registry
	Settings      senders.SettingsStore
	Logs          notifications.LogStore
}

// Dispatcher is the single consumer of the notification queue. It processes
// one command at a time in dequeue order and never retries.
type Dispatcher struct {
	deps    Deps
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) {
		if cfg.SendTimeout > 0 {
			d.cfg.SendTimeout = cfg.SendTimeout
		}
		if cfg.StoreTimeout > 0 {
			d.cfg.StoreTimeout = cfg.StoreTimeout
		}
		if cfg.MetricsNamespace != "" {
			d.cfg.MetricsNamespace = cfg.MetricsNamespace
		}
	}
}

// WithMetrics attaches Prometheus collectors. Without it nothing is recorded.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithClock overrides time.Now for expiry checks and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New panics if any dependency is nil.
func New(deps Deps, opts ...Option) *Dispatcher {
	switch {
	case deps.Queue == nil:
		panic("dispatcher: queue cannot be nil")
	case deps.Subscriptions == nil:
		panic("dispatcher: subscription store cannot be nil")
	case deps.Catalog == nil:
		panic("dispatcher: plan catalog cannot be nil")
	case deps.Resolver == nil:
		panic("dispatcher: template resolver cannot be nil")
	case deps.Renderer == nil:
		panic("dispatcher: renderer cannot be nil")
	case deps.Senders == nil:
		panic("dispatcher: sender registry cannot be nil")
	case deps.Settings == nil:
		panic("dispatcher: settings store cannot be nil")
	case deps.Logs == nil:
		panic("dispatcher: log store cannot be nil")
	}

	d := &Dispatcher{
		deps:   deps,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logger.Contextual(d.logger.With(logger.Component("dispatcher")))
	return d
}

// State returns the current loop state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Start launches the processing loop. It stops when ctx is cancelled, Stop is
// called, or the queue is closed and drained.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.state.Store(int32(StateIdle))

	d.wg.Add(1)
	go d.loop(runCtx)

	d.logger.Info("dispatcher started", logger.QueueDepth(d.deps.Queue.Len()))
	return nil
}

// Stop cancels the loop and waits for it to exit. A notification being sent
// when Stop is called runs to completion.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.cancel == nil {
		d.mu.Unlock()
		return ErrNotStarted
	}
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()

	d.logger.Info("dispatcher stopped", logger.QueueDepth(d.deps.Queue.Len()))
	return nil
}

// Run returns a function for errgroup: start, block until ctx is done, stop.
func (d *Dispatcher) Run(ctx context.Context) func() error {
	return func() error {
		if err := d.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return d.Stop()
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	defer d.state.Store(int32(StateStopped))

	for {
		cmd, err := d.deps.Queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrQueueClosed) {
				d.logger.Info("notification queue closed")
			}
			return
		}

		d.state.Store(int32(StateProcessing))
		d.processSafely(cmd)
		d.state.Store(int32(StateIdle))
	}
}

// processSafely keeps the loop alive if recording a failure panics too.
func (d *Dispatcher) processSafely(cmd notifications.Command) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.observePanic()
			d.logger.Error("dispatcher recovered from panic", slog.Any("panic", r))
		}
	}()
	d.Process(cmd)
}

// Process runs the full pipeline for one command and returns the log entry
// it recorded. A panic in a collaborator becomes a failed log.
func (d *Dispatcher) Process(cmd notifications.Command) (entry notifications.Log) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()
	ctx = logger.ContextWithAttrs(ctx,
		logger.SubscriberID(cmd.SubscriberID),
		logger.Channel(cmd.Channel.String()),
		logger.EventType(cmd.EventType.String()))

	var rendered notifications.Rendered
	defer func() {
		if r := recover(); r != nil {
			d.metrics.observePanic()
			d.logger.ErrorContext(ctx, "panic while dispatching notification", slog.Any("panic", r))
			entry = d.record(ctx, notifications.NewFailedLog(cmd, rendered, fmt.Errorf("internal error: %v", r), d.now()))
		}
	}()

	sub, err := d.authorize(ctx, cmd)
	if err != nil {
		return d.fail(ctx, cmd, rendered, err)
	}

	tpl, err := d.deps.Resolver.Resolve(ctx, cmd.EventType, cmd.Channel, cmd.SubscriberID)
	if err != nil {
		return d.fail(ctx, cmd, rendered, err)
	}

	rendered.Subject = d.deps.Renderer.RenderSubject(tpl.Subject, cmd.Parameters)
	rendered.Body, err = d.deps.Renderer.Render(ctx, tpl.Body, cmd.Channel, cmd.Parameters)
	if err != nil {
		return d.fail(ctx, cmd, rendered, err)
	}

	settings, err := d.deps.Settings.GetSettings(ctx, cmd.SubscriberID, cmd.Channel)
	if err != nil && !errors.Is(err, senders.ErrSettingsNotFound) {
		return d.fail(ctx, cmd, rendered, fmt.Errorf("load provider settings: %w", err))
	}

	start := time.Now()
	err = d.deps.Senders.Send(ctx, cmd.Channel, senders.Message{
		SubscriberID: cmd.SubscriberID,
		Recipient:    cmd.Recipient,
		EventType:    cmd.EventType,
		Subject:      rendered.Subject,
		Body:         rendered.Body,
		Settings:     settings,
	})
	elapsed := time.Since(start)
	d.metrics.observeSend(cmd.Channel, elapsed)
	if err != nil {
		return d.fail(ctx, cmd, rendered, err)
	}

	now := d.now()
	updated := sub.IncreaseUsage(now)
	saveCtx, cancelSave := d.storeContext(ctx)
	err = d.deps.Subscriptions.Save(saveCtx, &updated)
	cancelSave()
	if err != nil {
		// The message is already out; record the delivery and surface the
		// lost usage increment in the log.
		d.logger.ErrorContext(ctx, "failed to save subscription usage", logger.Error(err))
	}

	d.logger.InfoContext(ctx, "notification sent", logger.Duration(elapsed))

	return d.record(ctx, notifications.NewSuccessLog(cmd, rendered, now))
}

// authorize runs the checks that must pass before any template work: known
// names, an active subscription with quota left, and plan coverage.
func (d *Dispatcher) authorize(ctx context.Context, cmd notifications.Command) (*subscription.Subscription, error) {
	if !notifications.IsSupportedEventType(cmd.EventType) {
		return nil, fmt.Errorf("%w: %q", notifications.ErrUnknownEventType, cmd.EventType)
	}
	if !notifications.IsSupportedChannel(cmd.Channel) {
		return nil, fmt.Errorf("%w: %q", notifications.ErrUnknownChannel, cmd.Channel)
	}

	sub, err := d.deps.Subscriptions.Get(ctx, cmd.SubscriberID)
	if err != nil {
		return nil, err
	}
	if err := sub.EnsureCanSend(d.now()); err != nil {
		return nil, err
	}

	if !d.deps.Catalog.CanUseChannel(sub.Tier, cmd.Channel) {
		return nil, fmt.Errorf("%w: %s on %s plan", ErrChannelNotAllowed, cmd.Channel, sub.Tier)
	}
	if !d.deps.Catalog.IsEventAllowed(sub.Tier, cmd.EventType) {
		return nil, fmt.Errorf("%w: %s on %s plan", ErrEventNotAllowed, cmd.EventType, sub.Tier)
	}
	return sub, nil
}

func (d *Dispatcher) fail(ctx context.Context, cmd notifications.Command, rendered notifications.Rendered, cause error) notifications.Log {
	d.logger.WarnContext(ctx, "notification not sent", logger.Error(cause))

	return d.record(ctx, notifications.NewFailedLog(cmd, rendered, cause, d.now()))
}

// storeContext detaches post-send writes from the send deadline while keeping
// the context's log attributes.
func (d *Dispatcher) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d.cfg.StoreTimeout)
}

func (d *Dispatcher) record(ctx context.Context, entry notifications.Log) notifications.Log {
	d.metrics.observe(entry)
	ctx, cancel := d.storeContext(ctx)
	defer cancel()
	if err := d.deps.Logs.Add(ctx, entry); err != nil {
		d.logger.ErrorContext(ctx, "failed to persist notification log",
			slog.String("status", string(entry.Status)),
			logger.Error(err))
	}
	return entry
}
