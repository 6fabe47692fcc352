// Package mongo opens MongoDB connections from environment configuration.
//
// New connects with the pool settings in Config and retries until a ping
// succeeds. NewWithDatabase returns the configured database directly:
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	logs := store.NewMongoLogStore(db)
//
// Healthcheck returns a ping probe for the HTTP health endpoint.
package mongo
