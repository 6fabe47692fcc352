package main

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/mongo"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/svc/api"
	"github.com/dmitrymomot/notifykit/svc/dispatcher"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_SERVICE_NAME" envDefault:"notifykit"`

	// PlansFile is a YAML plan catalog; empty uses the built-in plans.
	PlansFile string `env:"PLANS_FILE"`

	// SecretsKey seals provider settings at rest (32 bytes, hex or base64).
	// Required when Redis is configured.
	SecretsKey string `env:"SECRETS_KEY"`

	SenderHTTPTimeout time.Duration `env:"SENDER_HTTP_TIMEOUT" envDefault:"10s"`
	SeedTemplates     bool          `env:"SEED_TEMPLATES" envDefault:"true"`
	SeedDemo          bool          `env:"SEED_DEMO"`

	// EscapeEmailParameters renders trigger parameters as text in email
	// bodies instead of passing embedded HTML through.
	EscapeEmailParameters bool `env:"EMAIL_ESCAPE_PARAMETERS" envDefault:"true"`

	HTTP       httpserver.Config
	API        api.Config
	Dispatcher dispatcher.Config
	Postgres   pg.Config
	Redis      redis.Config
	Mongo      mongo.Config
	Email      email.Config
}
