package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var (
	ErrParsingConfig = errors.New("config: failed to parse environment variables")
	ErrNilPointer    = errors.New("config: nil pointer provided to loader")
)

// parsed configs keyed by type name; each type is parsed once per process.
var (
	mu         sync.RWMutex
	values     = make(map[string]any)
	dotenvOnce sync.Once
)

// Load fills v from the environment, reading .env on first use when present.
// Once a type has been parsed successfully, later calls get the cached copy.
//
//	type Config struct {
//		Backend string `env:"CACHE_BACKEND" envDefault:"memory"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// a missing .env file is fine
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	name := typeName[T]()

	mu.RLock()
	cached, ok := values[name]
	mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	if cached, ok := values[name]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Wrap(ErrParsingConfig, err.Error())
	}
	values[name] = *v
	return nil
}

func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reset forgets every cached config. Tests use it after changing the
// environment.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	values = make(map[string]any)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
