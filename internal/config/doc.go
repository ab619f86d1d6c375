// Package config provides user configuration management for the evonic CLI.
//
// This package manages a YAML configuration file holding the default fire host,
// the HTTP request timeout, the log level and the MQTT bridge settings. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/evonic/config.yaml or $HOME/.config/evonic/config.yaml
//   - macOS: $HOME/.config/evonic/config.yaml
//   - Windows: %LOCALAPPDATA%\evonic\config.yaml
//
// # Precedence
//
// Defaults, then the file, then EVONIC_HOST / EVONIC_MQTT_* environment variables.
// Command-line flags are applied on top by the CLI.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.Device.Host = "192.168.1.190"
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Save is protected by a mutex and writes through a temporary file and rename.
package config
