package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvHost, EnvMQTTBroker, EnvMQTTUsername, EnvMQTTPassword} {
		t.Setenv(key, "")
	}
}

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "evonic") {
		t.Errorf("GetConfigDir() = %v, should contain 'evonic'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix-like systems")
	}

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, "evonic", "config.yaml"); got != want {
		t.Errorf("GetConfigPath() = %v, want %v", got, want)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Device.RequestTimeout != 8*time.Second {
		t.Errorf("Device.RequestTimeout = %v, want 8s", cfg.Device.RequestTimeout)
	}
	if cfg.MQTT.TopicPrefix != "evonic" {
		t.Errorf("MQTT.TopicPrefix = %q, want evonic", cfg.MQTT.TopicPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MQTT.ClientID != "evonic-bridge" {
		t.Errorf("MQTT.ClientID = %q, want default", cfg.MQTT.ClientID)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `version: 1
device:
  host: 192.168.1.190
  request_timeout: 3s
logging:
  level: debug
mqtt:
  broker: tcp://broker:1883
  topic_prefix: home/fire
  qos: 0
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Host != "192.168.1.190" {
		t.Errorf("Device.Host = %q, want 192.168.1.190", cfg.Device.Host)
	}
	if cfg.Device.RequestTimeout != 3*time.Second {
		t.Errorf("Device.RequestTimeout = %v, want 3s", cfg.Device.RequestTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.MQTT.TopicPrefix != "home/fire" || cfg.MQTT.QoS != 0 {
		t.Errorf("MQTT = %+v, want prefix home/fire qos 0", cfg.MQTT)
	}
	// Not in the file, so the default survives
	if cfg.MQTT.ClientID != "evonic-bridge" {
		t.Errorf("MQTT.ClientID = %q, want default", cfg.MQTT.ClientID)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHost, "fire.local")
	t.Setenv(EnvMQTTPassword, "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.Host != "fire.local" {
		t.Errorf("Device.Host = %q, want fire.local", cfg.Device.Host)
	}
	if cfg.MQTT.Password != "secret" {
		t.Errorf("MQTT.Password = %q, want secret", cfg.MQTT.Password)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "device: [", wantErr: "failed to parse"},
		{name: "wrong version", content: "version: 2\n", wantErr: "unsupported config version"},
		{name: "bad qos", content: "version: 1\nmqtt:\n  qos: 3\n", wantErr: "mqtt.qos"},
		{name: "bad level", content: "version: 1\nlogging:\n  level: loud\n", wantErr: "logging.level"},
		{name: "wildcard prefix", content: "version: 1\nmqtt:\n  topic_prefix: fire/#\n", wantErr: "wildcards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Device.Host = "10.0.0.5"
	cfg.Device.RequestTimeout = 5 * time.Second
	cfg.MQTT.Broker = "tcp://localhost:1883"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Evonic Configuration File") {
		t.Error("saved file is missing the header comment")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Device.Host != "10.0.0.5" {
		t.Errorf("Device.Host = %q, want 10.0.0.5", loaded.Device.Host)
	}
	if loaded.Device.RequestTimeout != 5*time.Second {
		t.Errorf("Device.RequestTimeout = %v, want 5s", loaded.Device.RequestTimeout)
	}
	if loaded.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT.Broker = %q, want tcp://localhost:1883", loaded.MQTT.Broker)
	}
}
