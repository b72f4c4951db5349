package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultEnvLoaded sync.Once

// Load builds a Config from Default, the process environment and the given
// .env files, then validates it. Without files, a .env in the working
// directory is loaded once per process if it exists. Variables already set in
// the environment win over .env values.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//		// config.IsConfigError(err) for validation failures
//	}
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return finish(cfg)
}

// LoadFile reads a YAML config file, applies environment overrides and
// validates the result. Fields missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Join(ErrReadingFile, err)
	}
	defer func() { _ = f.Close() }()

	return LoadYAML(f)
}

// LoadYAML is LoadFile for an already opened reader.
func LoadYAML(r io.Reader) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, errors.Join(ErrReadingFile, err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Join(ErrReadingFile, fmt.Errorf("decode yaml: %w", err))
		}
	}

	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return finish(cfg)
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad(envFiles ...string) Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}

func loadDotEnv(files ...string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Join(ErrReadingFile, err)
		}
		return nil
	}

	defaultEnvLoaded.Do(func() {
		// the default .env file is optional
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "config: ignoring unreadable .env: %v\n", err)
		}
	})
	return nil
}

// parseEnv overlays variables that are set; unset ones keep the value in cfg.
func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

func finish(cfg Config) (Config, error) {
	cfg.DepartmentIDs = cfg.DepartmentIDs.Values()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
