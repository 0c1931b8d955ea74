// Package config loads demo program settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when a nil pointer is provided to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)

// Settings configures the demo programs.
type Settings struct {
	// Debugging turns on enter and exit tracing.
	Debugging bool `env:"FSM_DEBUGGING" envDefault:"false"`

	// StepDelay is how long suspending states wait before moving on.
	StepDelay time.Duration `env:"FSM_STEP_DELAY" envDefault:"500ms"`

	// RunFor stops the demo after this long. Zero runs until interrupted.
	RunFor time.Duration `env:"FSM_RUN_FOR" envDefault:"5s"`

	LogLevel  string `env:"FSM_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FSM_LOG_FORMAT" envDefault:"text"`

	// JournalPath enables the SQLite event journal when set.
	JournalPath string `env:"FSM_JOURNAL_PATH"`

	// GraphFormat prints the transition graph (dot, mermaid or yaml) and exits.
	GraphFormat string `env:"FSM_GRAPH_FORMAT"`
}

type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	loaded = &cache{values: make(map[reflect.Type]any)}

	dotenvLoaded sync.Once
)

// Load parses environment variables into v. Each type is parsed once; later
// calls return the cached value.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// LoadSettings returns the demo settings.
func LoadSettings() (Settings, error) {
	var s Settings
	err := Load(&s)
	return s, err
}

func resetCache() {
	loaded.mu.Lock()
	defer loaded.mu.Unlock()
	loaded.values = make(map[reflect.Type]any)
}
