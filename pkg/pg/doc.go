// Package pg bootstraps PostgreSQL access with pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config and retries until the server
// answers a ping. Migrate runs goose migrations from an fs.FS (usually an
// embed.FS owned by the store package) over the same pool. Healthcheck
// returns a probe for the HTTP health endpoint.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, store.Migrations, "migrations", log); err != nil {
//		return err
//	}
//
// IsNotFoundError and IsDuplicateKeyError classify driver errors so stores
// can map them to domain sentinels.
package pg
