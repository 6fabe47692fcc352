// Package httpserver runs an http.Handler with context-driven graceful
// shutdown and provides a JSON health check handler.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	mux.Handle("/healthz", httpserver.HealthCheckHandler(log, 2*time.Second, map[string]httpserver.CheckFunc{
//		"postgres": pg.Healthcheck(pool),
//	}))
//	if err := srv.Run(ctx, mux); err != nil {
//		return err
//	}
//
// Run returns when ctx is cancelled and in-flight requests have finished or
// the shutdown timeout elapsed. Start failures wrap ErrStart.
package httpserver
