// Package store provides the persistent backends for the notification
// pipeline.
//
// Each type satisfies a store interface declared in the domain packages:
//
//   - SubscriberStore     subscriber.Store              Postgres (pgx)
//   - SubscriptionStore   subscription.SubscriptionStore Postgres (pgx)
//   - TemplateStore       notifications.TemplateStore    Postgres (pgx)
//   - LogStore            notifications.LogStore         MongoDB
//   - SettingsStore       senders.SettingsStore          Redis, sealed with pkg/secrets
//
// The Postgres schema ships as embedded goose migrations:
//
//	if err := pg.Migrate(ctx, pool, cfg, store.Migrations, store.MigrationsDir, log); err != nil {
//		return err
//	}
//
// Driver errors are translated into the domain sentinels (for example
// subscriber.ErrSubscriberNotFound or notifications.ErrTemplateAlreadyExists)
// so callers never depend on a specific database.
package store
