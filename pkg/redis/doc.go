// Package redis connects to Redis with go-redis/v9.
//
// Connect retries a ping until the server is ready or ConnectTimeout elapses;
// Healthcheck wraps a ping for the HTTP health endpoint. The provider
// settings store in svc/store is the main consumer.
package redis
