// Package config loads typed configuration from environment variables with
// github.com/caarlos0/env/v11, layered over dotenv files read by
// github.com/joho/godotenv.
//
// Each component owns a Config struct with env tags; the service embeds them:
//
//	type appConfig struct {
//		Env        string `env:"APP_ENV" envDefault:"development"`
//		HTTP       httpserver.Config
//		Dispatcher dispatcher.Config
//	}
//
//	cfg := config.MustLoad[appConfig]()
//
// Dotenv files never mutate the process environment. The process environment
// always wins over file values, so deployments can override a checked-in
// .env without editing it.
package config
