// Package config loads batlog settings from batlog.yaml, BATLOG_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "BATLOG"
	ConfigName = "batlog"
)

type Settings struct {
	DBPath              string        `mapstructure:"db_path"`
	LogLevel            string        `mapstructure:"log_level"`
	Workers             int           `mapstructure:"workers"`
	LegacyPositionCheck bool          `mapstructure:"legacy_position_check"`
	MatcherTTL          time.Duration `mapstructure:"matcher_ttl"`
	MinPeakHz           float64       `mapstructure:"min_peak_hz"`

	GPS struct {
		MaxGap time.Duration `mapstructure:"max_gap"`
		// Track is a YAML fix list; empty means no position data.
		Track string `mapstructure:"track"`
	} `mapstructure:"gps"`

	Server struct {
		Port    int      `mapstructure:"port"`
		Origins []string `mapstructure:"origins"`
	} `mapstructure:"server"`
}

// Loader wraps a private viper instance so tests and commands do not share state.
type Loader struct {
	v     *viper.Viper
	paths []string
}

func NewLoader(paths ...string) *Loader {
	v := viper.New()
	setDefaults(v)
	return &Loader{v: v, paths: paths}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "batlog.sqlite3")
	v.SetDefault("log_level", "info")
	v.SetDefault("workers", 0)
	v.SetDefault("legacy_position_check", false)
	v.SetDefault("matcher_ttl", 5*time.Minute)
	v.SetDefault("min_peak_hz", 15000.0)
	v.SetDefault("gps.max_gap", 10*time.Minute)
	v.SetDefault("gps.track", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.origins", []string{"*"})
}

// DefaultPaths lists the directories searched for batlog.yaml.
func DefaultPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "batlog"))
	}
	return paths
}

// sections are the nested key groups; a flag named server-port binds server.port.
var sections = []string{"server", "gps"}

// FlagKey maps a flag name to its config key.
func FlagKey(name string) string {
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(name, sec+"-"); ok {
			return sec + "." + strings.ReplaceAll(rest, "-", "_")
		}
	}
	return strings.ReplaceAll(name, "-", "_")
}

// BindFlags makes explicitly set flags override file and environment values.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := FlagKey(f.Name)
		if err := l.v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("binding flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file if one exists and returns the merged settings.
// An explicit file that cannot be read is an error; a missing default file is not.
func (l *Loader) Load(file string) (*Settings, error) {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if file != "" {
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(ConfigName)
		l.v.SetConfigType("yaml")
		paths := l.paths
		if len(paths) == 0 {
			paths = DefaultPaths()
		}
		for _, p := range paths {
			l.v.AddConfigPath(p)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	settings := &Settings{}
	if err := l.v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// ConfigFile returns the file that was read, or "".
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (s *Settings) Validate() error {
	switch {
	case s.DBPath == "":
		return errors.New("db_path must not be empty")
	case s.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	case s.Server.Port < 0 || s.Server.Port > 65535:
		return fmt.Errorf("server.port out of range: %d", s.Server.Port)
	case s.MinPeakHz < 0:
		return fmt.Errorf("min_peak_hz must not be negative, got %g", s.MinPeakHz)
	}
	return nil
}

// GPSProvider returns the track named by gps.track, or gps.None.
func (s *Settings) GPSProvider() (gps.Provider, error) {
	if s.GPS.Track == "" {
		return gps.None{}, nil
	}
	track, err := gps.LoadTrackFile(s.GPS.Track, s.GPS.MaxGap)
	if err != nil {
		return nil, fmt.Errorf("gps.track %s: %w", s.GPS.Track, err)
	}
	return track, nil
}
