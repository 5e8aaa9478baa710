package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/dhikr-alarm/internal/logger"
)

// Config holds the settings shared by the dhikr-alarm commands.
type Config struct {
	// TickInterval is the period of the "sound resumes in" countdown.
	TickInterval time.Duration `yaml:"tick_interval" env:"DHIKR_ALARM_TICK_INTERVAL"`
	// SoundFile is the .wav or .mp3 file played while ringing.
	SoundFile string `yaml:"sound_file" env:"DHIKR_ALARM_SOUND_FILE"`
	// Volume is the linear playback volume while ringing, in (0, 1].
	Volume float64 `yaml:"volume" env:"DHIKR_ALARM_VOLUME"`
	// VibrationPattern alternates wait and pulse durations, starting with a wait.
	VibrationPattern []time.Duration `yaml:"vibration_pattern" env:"DHIKR_ALARM_VIBRATION_PATTERN" envSeparator:","`
	// Phrases is the set a ringing session picks its display phrase from.
	Phrases []string `yaml:"phrases" env:"DHIKR_ALARM_PHRASES" envSeparator:"|"`
	// StateFile is the path to the YAML file storing the alarm schedule.
	StateFile string `yaml:"state_file" env:"DHIKR_ALARM_STATE_FILE"`
	// MarkerFile records the PID of the process showing the ringing screen.
	MarkerFile string `yaml:"marker_file" env:"DHIKR_ALARM_MARKER_FILE"`
	// LogFile receives log output while the ringing screen owns the terminal.
	LogFile string `yaml:"log_file" env:"DHIKR_ALARM_LOG_FILE"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level" env:"DHIKR_ALARM_LOG_LEVEL"`
	// PollInterval is how often the watcher re-reads the schedule.
	PollInterval time.Duration `yaml:"poll_interval" env:"DHIKR_ALARM_POLL_INTERVAL"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "dhikr-alarm-settings.yaml"

	// DefaultStateFilename is the default filename for the alarm schedule.
	DefaultStateFilename = "dhikr-alarm-state.yaml"

	// DefaultMarkerFilename is the default filename for the ringing-session marker.
	DefaultMarkerFilename = "dhikr-alarm-session.pid"

	// DefaultLogFilename is the default filename for ringing-screen logs.
	DefaultLogFilename = "dhikr-alarm.log"

	// DefaultSoundFilename is the default alarm sound.
	DefaultSoundFilename = "alarm.mp3"

	// DefaultTickInterval is the countdown period.
	DefaultTickInterval = time.Second

	// DefaultVolume is the full playback volume.
	DefaultVolume = 1.0

	// DefaultPollInterval is how often the watcher checks the schedule.
	DefaultPollInterval = 5 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

// DefaultVibrationPattern returns the wait/pulse pattern used when none is configured.
func DefaultVibrationPattern() []time.Duration {
	return []time.Duration{
		0,
		500 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
		1000 * time.Millisecond,
	}
}

// DefaultPhrases returns the phrases shown on the ringing screen when none are configured.
func DefaultPhrases() []string {
	return []string{
		"SubhanAllah",
		"Alhamdulillah",
		"Allahu Akbar",
		"La ilaha illallah",
		"Astaghfirullah",
		"SubhanAllahi wa bihamdihi",
	}
}

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeValue is returned when a count or duration setting is negative.
	errNegativeValue = errors.New("value must not be negative")
	// errVolumeOutOfRange is returned when volume is above 1.
	errVolumeOutOfRange = errors.New("volume must be within (0, 1]")
	// errUnknownLogLevel is returned when log_level cannot be parsed.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns a configuration with every setting at its default value.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // The zero configuration always validates.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates the result. A missing file is not an error:
// defaults and environment variables are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills unset fields with defaults.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	switch {
	case settings.TickInterval < 0:
		return fmt.Errorf("tick_interval %s: %w", settings.TickInterval, errNegativeValue)
	case settings.PollInterval < 0:
		return fmt.Errorf("poll_interval %s: %w", settings.PollInterval, errNegativeValue)
	case settings.Volume < 0 || settings.Volume > 1:
		return fmt.Errorf("volume %.2f: %w", settings.Volume, errVolumeOutOfRange)
	}

	for i, step := range settings.VibrationPattern {
		if step < 0 {
			return fmt.Errorf("vibration_pattern[%d] %s: %w", i, step, errNegativeValue)
		}
	}

	if settings.TickInterval == 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if settings.PollInterval == 0 {
		settings.PollInterval = DefaultPollInterval
	}

	// Zero volume would make the alarm inaudible, treat it as unset.
	if settings.Volume == 0 {
		settings.Volume = DefaultVolume
	}

	if len(settings.VibrationPattern) == 0 {
		settings.VibrationPattern = DefaultVibrationPattern()
	}

	if len(settings.Phrases) == 0 {
		settings.Phrases = DefaultPhrases()
	}

	if settings.SoundFile == "" {
		settings.SoundFile = DefaultSoundFilename
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.MarkerFile == "" {
		settings.MarkerFile = DefaultMarkerFilename
	}

	if settings.LogFile == "" {
		settings.LogFile = DefaultLogFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("log_level %q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	return nil
}
