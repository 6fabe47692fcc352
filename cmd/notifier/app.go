package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/mongo"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/secrets"
	"github.com/dmitrymomot/notifykit/pkg/senders"
	"github.com/dmitrymomot/notifykit/pkg/subscriber"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
	"github.com/dmitrymomot/notifykit/svc/api"
	"github.com/dmitrymomot/notifykit/svc/dispatcher"
	"github.com/dmitrymomot/notifykit/svc/store"
)

var errMissingSecretsKey = errors.New("SECRETS_KEY is required when REDIS_URL is set")

// stores groups the persistence backends picked at startup.
type stores struct {
	subscribers   subscriber.Store
	subscriptions subscription.SubscriptionStore
	templates     notifications.TemplateStore
	logs          notifications.LogStore
	settings      senders.SettingsStore
	checks        map[string]httpserver.CheckFunc
	closers       []func()
}

type app struct {
	log        *slog.Logger
	queue      *queue.Queue[notifications.Command]
	dispatcher *dispatcher.Dispatcher
	server     *httpserver.Server
	handler    http.Handler
	closers    []func()
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (_ *app, err error) {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			closeAll(st.closers)
		}
	}()

	catalog, err := subscription.NewCatalog(ctx, planSource(cfg.PlansFile))
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewSender(cfg.Email)
	if err != nil {
		return nil, err
	}
	registry, err := senders.NewDefaultRegistry(mailer, os.Stdout, log,
		senders.WithRequestTimeout(cfg.SenderHTTPTimeout),
	)
	if err != nil {
		return nil, err
	}

	if cfg.SeedTemplates {
		if err := seedTemplates(ctx, notifications.NewTemplateService(st.templates,
			notifications.WithTemplateServiceLogger(log)), log); err != nil {
			return nil, err
		}
	}
	if cfg.SeedDemo {
		svc := subscriber.NewService(st.subscribers, st.subscriptions, catalog, subscriber.WithServiceLogger(log))
		if err := seedDemo(ctx, svc, log); err != nil {
			return nil, err
		}
	}

	q := queue.New(queue.WithValidate(func(cmd notifications.Command) error { return cmd.Validate() }))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := dispatcher.MustNewMetrics(reg, cfg.Dispatcher.MetricsNamespace, q.Len)

	disp := dispatcher.New(dispatcher.Deps{
		Queue:         q,
		Subscriptions: st.subscriptions,
		Catalog:       catalog,
		Resolver:      notifications.NewResolver(st.templates),
		Renderer:      newRenderer(cfg),
		Senders:       registry,
		Settings:      st.settings,
		Logs:          st.logs,
	},
		dispatcher.WithLogger(log),
		dispatcher.WithConfig(cfg.Dispatcher),
		dispatcher.WithMetrics(metrics),
	)

	producer := dispatcher.NewProducer(q, st.subscribers, st.subscriptions, catalog,
		dispatcher.WithProducerLogger(log),
	)

	apiOpts := []api.Option{
		api.WithLogger(log),
		api.WithConfig(cfg.API),
		api.WithLogStore(st.logs),
		api.WithMetrics(reg),
		api.WithHealthCheck("queue", func(context.Context) error {
			if q.Closed() {
				return queue.ErrQueueClosed
			}
			return nil
		}),
	}
	for name, check := range st.checks {
		apiOpts = append(apiOpts, api.WithHealthCheck(name, check))
	}

	return &app{
		log:        log,
		queue:      q,
		dispatcher: disp,
		server:     httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)),
		handler:    api.New(producer, apiOpts...).Handler(),
		closers:    st.closers,
	}, nil
}

// run serves the API and runs the dispatcher until ctx is cancelled or either
// fails. Commands still queued at shutdown are dropped and counted in the log.
func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.dispatcher.Run(gctx))
	g.Go(func() error { return a.server.Run(gctx, a.handler) })

	err := g.Wait()
	a.queue.Close()
	if n := a.queue.Len(); n > 0 {
		a.log.Warn("dropping queued notifications on shutdown", logger.QueueDepth(n))
	}
	return err
}

func (a *app) close() {
	closeAll(a.closers)
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func planSource(path string) subscription.PlansListSource {
	if path == "" {
		return subscription.NewStaticSource()
	}
	return subscription.NewYAMLSource(path)
}

// openStores connects every configured backend and falls back to the
// in-memory implementation for the rest.
func openStores(ctx context.Context, cfg appConfig, log *slog.Logger) (_ *stores, err error) {
	st := &stores{
		subscribers:   subscriber.NewMemoryStore(),
		subscriptions: subscription.NewMemoryStore(),
		templates:     notifications.NewMemoryTemplateStore(),
		logs:          notifications.NewMemoryLogStore(),
		settings:      senders.NewMemorySettingsStore(),
		checks:        make(map[string]httpserver.CheckFunc),
	}
	defer func() {
		if err != nil {
			closeAll(st.closers)
		}
	}()

	if cfg.Postgres.ConnectionString != "" {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		if err := pg.Migrate(ctx, pool, cfg.Postgres, store.Migrations, store.MigrationsDir, log); err != nil {
			return nil, err
		}
		st.subscribers = store.NewSubscriberStore(pool)
		st.subscriptions = store.NewSubscriptionStore(pool)
		st.templates = store.NewTemplateStore(pool)
		st.checks["postgres"] = pg.Healthcheck(pool)
		log.Info("using postgres stores")
	}

	if cfg.Mongo.ConnectionURL != "" {
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("failed to disconnect mongodb", logger.Error(err))
			}
		})
		logs := store.NewLogStore(client.Database(cfg.Mongo.Database))
		if err := logs.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		st.logs = logs
		st.checks["mongodb"] = mongo.Healthcheck(client)
		log.Info("using mongodb log store")
	}

	if cfg.Redis.ConnectionURL != "" {
		if cfg.SecretsKey == "" {
			return nil, errMissingSecretsKey
		}
		key, err := secrets.ParseKey(cfg.SecretsKey)
		if err != nil {
			return nil, err
		}
		cipher, err := secrets.NewCipher(key)
		if err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis", logger.Error(err))
			}
		})
		st.settings = store.NewSettingsStore(client, cipher)
		st.checks["redis"] = redis.Healthcheck(client)
		log.Info("using redis settings store")
	}

	return st, nil
}

func newRenderer(cfg appConfig) *notifications.Renderer {
	if cfg.EscapeEmailParameters {
		return notifications.NewRenderer(notifications.WithEscapedEmailParameters())
	}
	return notifications.NewRenderer()
}
