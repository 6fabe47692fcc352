package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

type options struct {
	files       []string
	prefix      string
	environment map[string]string
}

// Option customizes Load.
type Option func(*options)

// WithEnvFiles reads the given dotenv files in order instead of the optional
// default ".env". Unlike the default, a missing file is an error.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = files }
}

// WithPrefix requires every variable to carry prefix, e.g. "NOTIFYKIT_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment replaces the process environment as the top layer. Intended
// for tests.
func WithEnvironment(environment map[string]string) Option {
	return func(o *options) { o.environment = environment }
}

// Load parses T from the environment. Values are layered: dotenv files first,
// later files overriding earlier ones, then the process environment on top.
//
//	type appConfig struct {
//		Env  string     `env:"APP_ENV" envDefault:"development"`
//		HTTP httpserver.Config
//		PG   pg.Config
//	}
//
//	cfg, err := config.Load[appConfig]()
func Load[T any](opts ...Option) (T, error) {
	var zero T

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := readEnvFiles(o.files)
	if err != nil {
		return zero, err
	}
	top := o.environment
	if top == nil {
		top = env.ToMap(os.Environ())
	}
	maps.Copy(merged, top)

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment: merged,
		Prefix:      o.prefix,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load for process startup; it panics on failure.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

// LoadInto is Load for callers holding a pointer.
func LoadInto[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	cfg, err := Load[T](opts...)
	if err != nil {
		return err
	}
	*v = cfg
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	merged := make(map[string]string)

	if len(files) == 0 {
		values, err := godotenv.Read(defaultEnvFile)
		switch {
		case err == nil:
			maps.Copy(merged, values)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, errors.Join(ErrReadingEnvFile, err)
		}
		return merged, nil
	}

	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, errors.Join(ErrReadingEnvFile, fmt.Errorf("%s: %w", file, err))
		}
		maps.Copy(merged, values)
	}
	return merged, nil
}
