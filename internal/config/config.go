package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the display and the controller simulator.
type Config struct {
	// ControllerAddress is the gRPC address of the remote variable service.
	ControllerAddress string `yaml:"controller_addr"`
	// HTTPAddress is where the display serves its operator API and metrics.
	// Empty disables the HTTP listener.
	HTTPAddress string `yaml:"http_addr,omitempty"`
	// Timeout bounds every single remote read or write.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is the cadence of counter reads and list reconciliation.
	PollInterval time.Duration `yaml:"poll_interval"`
	// BlinkInterval is the cadence of the unacknowledged-row blink.
	BlinkInterval time.Duration `yaml:"blink_interval"`
	// TriggerInterval is the push interval of the new-alarm trigger subscription.
	TriggerInterval time.Duration `yaml:"trigger_interval"`
	// MaxActiveRows is the number of active alarm rows on the panel.
	MaxActiveRows int `yaml:"max_active_rows"`
	// MaxHistoryRows is the number of history rows on the panel.
	MaxHistoryRows int `yaml:"max_history_rows"`
	// AckHold is how long acknowledge, acknowledge-all and clear-history flags stay true.
	AckHold time.Duration `yaml:"ack_hold"`
	// ResetHold is how long the system reset flag stays true.
	ResetHold time.Duration `yaml:"reset_hold"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// ScenarioFile is the controller image the simulator starts from and persists to.
	ScenarioFile string `yaml:"scenario_file,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "loadbank-hmi-settings.yaml"

	// DefaultScenarioFilename is the default controller image used by the simulator.
	DefaultScenarioFilename = "loadbank-controller.json"

	// DefaultTimeout is the default duration of a single remote call.
	DefaultTimeout = 2 * time.Second

	// DefaultPollInterval is the panel refresh cadence.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultBlinkInterval is the blink half-period of unacknowledged rows.
	DefaultBlinkInterval = 500 * time.Millisecond

	// DefaultTriggerInterval is the push interval of the new-alarm trigger.
	DefaultTriggerInterval = 250 * time.Millisecond

	// DefaultMaxActiveRows is the active alarm row capacity.
	DefaultMaxActiveRows = 10

	// DefaultMaxHistoryRows is the history row capacity.
	DefaultMaxHistoryRows = 12

	// DefaultAckHold is the pulse width of acknowledge-type commands.
	DefaultAckHold = 100 * time.Millisecond

	// DefaultResetHold is the pulse width of the system reset command.
	DefaultResetHold = 500 * time.Millisecond

	// DefaultFilePermissions is the file mode used for settings and scenario files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errControllerAddressRequired is returned when the controller address is missing.
	errControllerAddressRequired = errors.New("controller address must be provided")
	// errNegativeRows is returned for row capacities below zero.
	errNegativeRows = errors.New("row capacity must not be negative")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save validates cfg and writes it to path.
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

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for everything optional.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ControllerAddress == "" {
		return errControllerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ControllerAddress); err != nil {
		return fmt.Errorf("invalid controller address: %w", err)
	}

	if settings.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if settings.MaxActiveRows < 0 || settings.MaxHistoryRows < 0 {
		return errNegativeRows
	}

	applyDefaults(settings)

	return nil
}

// applyDefaults replaces zero values with the operator station defaults.
func applyDefaults(settings *Config) {
	setDuration(&settings.Timeout, DefaultTimeout)
	setDuration(&settings.PollInterval, DefaultPollInterval)
	setDuration(&settings.BlinkInterval, DefaultBlinkInterval)
	setDuration(&settings.TriggerInterval, DefaultTriggerInterval)
	setDuration(&settings.AckHold, DefaultAckHold)
	setDuration(&settings.ResetHold, DefaultResetHold)

	if settings.MaxActiveRows == 0 {
		settings.MaxActiveRows = DefaultMaxActiveRows
	}

	if settings.MaxHistoryRows == 0 {
		settings.MaxHistoryRows = DefaultMaxHistoryRows
	}

	if settings.ScenarioFile == "" {
		settings.ScenarioFile = DefaultScenarioFilename
	}
}

func setDuration(d *time.Duration, fallback time.Duration) {
	if *d <= 0 {
		*d = fallback
	}
}
