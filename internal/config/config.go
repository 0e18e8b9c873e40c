// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads reporank settings from flags, environment variables
// and an optional .reporank.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables (REPORANK_ prefix, dashes
// become underscores) and the config file.
const (
	KeyWorkDir        = "workdir"
	KeyMapTokenBudget = "map-token-budget"
	KeyMaxFiles       = "max-files"
	KeyMaxFileSize    = "max-file-size"
	KeyLanguages      = "languages"
	KeyBoost          = "personalization-boost"
	KeyDamping        = "damping"
	KeyMaxIterations  = "max-iterations"
	KeyTolerance      = "tolerance"
	KeyBackend        = "backend"
	KeyCacheDir       = "cache-dir"
	KeyCacheL1Size    = "cache-l1-size"
	KeyNoCache        = "no-cache"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyTimeout        = "timeout"
)

const (
	envPrefix  = "REPORANK"
	configName = ".reporank"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of a ranking run.
type Config struct {
	WorkDir        string        // Repository root
	MapTokenBudget int           // Token budget for the rendered map
	MaxFiles       int           // Ranked files to report, 0 for all
	MaxFileSize    int64         // Larger files are not parsed
	Languages      []string      // Restrict discovery to these languages
	Boost          float64       // Personalization boost
	Damping        float64       // PageRank damping factor
	MaxIterations  int           // PageRank iteration cap
	Tolerance      float64       // PageRank convergence tolerance
	Backend        string        // "power" or "gonum"
	CacheDir       string        // Cache directory, relative to WorkDir unless absolute
	CacheL1Size    int           // In-memory entries per cache
	NoCache        bool          // Keep caches in memory only
	LogLevel       string        // zap level name
	LogFormat      string        // "json" or "console"
	Timeout        time.Duration // Upper bound for one run
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		WorkDir:        ".",
		MapTokenBudget: 1024,
		MaxFileSize:    1 << 20,
		Boost:          100,
		Damping:        0.85,
		MaxIterations:  100,
		Tolerance:      1e-6,
		Backend:        "power",
		CacheDir:       ".reporank.cache",
		CacheL1Size:    1000,
		LogLevel:       "warn",
		LogFormat:      "json",
		Timeout:        60 * time.Second,
	}
}

// NewViper returns a viper instance with defaults, environment binding and
// the optional config file search path set up.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyWorkDir, d.WorkDir)
	v.SetDefault(KeyMapTokenBudget, d.MapTokenBudget)
	v.SetDefault(KeyMaxFiles, d.MaxFiles)
	v.SetDefault(KeyMaxFileSize, d.MaxFileSize)
	v.SetDefault(KeyLanguages, d.Languages)
	v.SetDefault(KeyBoost, d.Boost)
	v.SetDefault(KeyDamping, d.Damping)
	v.SetDefault(KeyMaxIterations, d.MaxIterations)
	v.SetDefault(KeyTolerance, d.Tolerance)
	v.SetDefault(KeyBackend, d.Backend)
	v.SetDefault(KeyCacheDir, d.CacheDir)
	v.SetDefault(KeyCacheL1Size, d.CacheL1Size)
	v.SetDefault(KeyNoCache, d.NoCache)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyTimeout, d.Timeout)

	// Env vars: REPORANK_DAMPING, REPORANK_CACHE_DIR, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// ReadConfigFile loads the config file if one exists.
func ReadConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// AddFlags registers the persistent flags and binds them to v.
func AddFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	d := Default()
	fs.String(KeyWorkDir, d.WorkDir, "Repository root directory")
	fs.Int(KeyMapTokenBudget, d.MapTokenBudget, "Token budget for the repository map")
	fs.Int(KeyMaxFiles, d.MaxFiles, "Maximum ranked files to report (0 = all)")
	fs.Int64(KeyMaxFileSize, d.MaxFileSize, "Skip files larger than this many bytes")
	fs.StringSlice(KeyLanguages, d.Languages, "Only rank files in these languages")
	fs.Float64(KeyBoost, d.Boost, "Personalization boost")
	fs.Float64(KeyDamping, d.Damping, "PageRank damping factor")
	fs.Int(KeyMaxIterations, d.MaxIterations, "PageRank iteration cap")
	fs.Float64(KeyTolerance, d.Tolerance, "PageRank convergence tolerance")
	fs.String(KeyBackend, d.Backend, "PageRank backend: power or gonum")
	fs.String(KeyCacheDir, d.CacheDir, "Cache directory")
	fs.Int(KeyCacheL1Size, d.CacheL1Size, "In-memory cache entries")
	fs.Bool(KeyNoCache, d.NoCache, "Do not persist caches")
	fs.String(KeyLogLevel, d.LogLevel, "Log level: debug, info, warn, error")
	fs.String(KeyLogFormat, d.LogFormat, "Log format: json or console")
	fs.Duration(KeyTimeout, d.Timeout, "Timeout for one run")

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		errs = append(errs, v.BindPFlag(f.Name, f))
	})
	return errors.Join(errs...)
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) Config {
	return Config{
		WorkDir:        v.GetString(KeyWorkDir),
		MapTokenBudget: v.GetInt(KeyMapTokenBudget),
		MaxFiles:       v.GetInt(KeyMaxFiles),
		MaxFileSize:    v.GetInt64(KeyMaxFileSize),
		Languages:      v.GetStringSlice(KeyLanguages),
		Boost:          v.GetFloat64(KeyBoost),
		Damping:        v.GetFloat64(KeyDamping),
		MaxIterations:  v.GetInt(KeyMaxIterations),
		Tolerance:      v.GetFloat64(KeyTolerance),
		Backend:        v.GetString(KeyBackend),
		CacheDir:       v.GetString(KeyCacheDir),
		CacheL1Size:    v.GetInt(KeyCacheL1Size),
		NoCache:        v.GetBool(KeyNoCache),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		Timeout:        v.GetDuration(KeyTimeout),
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.WorkDir == "" {
		errs = append(errs, errors.New("workdir is required"))
	}
	if c.MapTokenBudget < 0 {
		errs = append(errs, fmt.Errorf("map-token-budget %d is negative", c.MapTokenBudget))
	}
	if c.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("max-files %d is negative", c.MaxFiles))
	}
	if c.Boost <= 0 {
		errs = append(errs, fmt.Errorf("personalization-boost %v must be positive", c.Boost))
	}
	if c.Damping <= 0 || c.Damping >= 1 {
		errs = append(errs, fmt.Errorf("damping %v must be in (0, 1)", c.Damping))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max-iterations %d must be positive", c.MaxIterations))
	}
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance %v must be positive", c.Tolerance))
	}
	switch c.Backend {
	case "power", "gonum":
	default:
		errs = append(errs, fmt.Errorf("backend %q must be power or gonum", c.Backend))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log-format %q must be json or console", c.LogFormat))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %v is negative", c.Timeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
