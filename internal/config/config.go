package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	File   string `mapstructure:"file"`   // optional rotating log file
}

// DeviceConfig is the identity and gating state of this device. Server is a
// precondition gate only: telemetry never goes to that address directly, it
// goes over the configured push transport.
type DeviceConfig struct {
	Enable              bool   `mapstructure:"enable"`
	Server              string `mapstructure:"server"`
	DeviceID            string `mapstructure:"device_id"`
	SendTelemetry       bool   `mapstructure:"send_telemetry"`
	SyncIntervalSeconds int    `mapstructure:"sync_interval_seconds"`
	Namespace           string `mapstructure:"namespace"`
}

type TransportConfig struct {
	Kind           string   `mapstructure:"kind"` // mqtt or kafka
	Broker         string   `mapstructure:"broker"`
	ClientID       string   `mapstructure:"client_id"`
	QoS            int      `mapstructure:"qos"`
	Retain         bool     `mapstructure:"retain"`
	Brokers        []string `mapstructure:"brokers"` // kafka only
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

type RPCConfig struct {
	Listen string `mapstructure:"listen"`
}

type HealthConfig struct {
	Port string `mapstructure:"port"`
}

type ProbeConfig struct {
	Interface       string `mapstructure:"interface"`
	TargetHost      string `mapstructure:"target_host"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

type Config struct {
	Device    DeviceConfig    `mapstructure:"device"`
	Transport TransportConfig `mapstructure:"transport"`
	RPC       RPCConfig       `mapstructure:"rpc"`
	Health    HealthConfig    `mapstructure:"health"`
	Probe     ProbeConfig     `mapstructure:"probe"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// env overrides: VECTOR_DEVICE_ID etc. (optional)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("device.namespace", "vector-api")
	v.SetDefault("device.sync_interval_seconds", 0)
	v.SetDefault("transport.kind", "mqtt")
	v.SetDefault("transport.qos", 1)
	v.SetDefault("transport.retain", false)
	v.SetDefault("transport.timeout_seconds", 5)
	v.SetDefault("rpc.listen", ":8080")
	v.SetDefault("health.port", "8085")
	v.SetDefault("probe.target_host", "8.8.8.8")
	v.SetDefault("probe.interval_seconds", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// quick sanity checks
	if cfg.Device.SyncIntervalSeconds < 0 {
		cfg.Device.SyncIntervalSeconds = 0
	}
	if cfg.Transport.QoS < 0 || cfg.Transport.QoS > 2 {
		cfg.Transport.QoS = 1
	}
	if cfg.Transport.TimeoutSeconds <= 0 {
		cfg.Transport.TimeoutSeconds = 5
	}
	if cfg.Probe.IntervalSeconds < 1 {
		cfg.Probe.IntervalSeconds = 30
	}
	switch cfg.Transport.Kind {
	case "mqtt", "kafka":
	default:
		return nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}

	return &cfg, nil
}
