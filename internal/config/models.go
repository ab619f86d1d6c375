package config

import "time"

// CurrentVersion is the config file schema version written by Save.
const CurrentVersion = 1

// Config represents the entire user configuration file.
type Config struct {
	Version int           `yaml:"version"`
	Device  DeviceConfig  `yaml:"device"`
	Logging LoggingConfig `yaml:"logging"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// DeviceConfig identifies the fire the CLI talks to by default.
type DeviceConfig struct {
	Host           string        `yaml:"host,omitempty"`            // IP address or hostname of the fire
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"` // Bound on each HTTP request (e.g. "8s")
}

// LoggingConfig controls zap output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error; empty disables logging
}

// MQTTConfig configures the MQTT bridge.
type MQTTConfig struct {
	Broker      string `yaml:"broker,omitempty"` // e.g. tcp://localhost:1883
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"` // Prefer EVONIC_MQTT_PASSWORD over storing it here
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Device: DeviceConfig{
			RequestTimeout: 8 * time.Second,
		},
		MQTT: MQTTConfig{
			ClientID:    "evonic-bridge",
			TopicPrefix: "evonic",
			QoS:         1,
		},
	}
}
