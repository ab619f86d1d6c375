package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/evonic/internal/bridge"
	"github.com/muurk/evonic/internal/config"
	"github.com/muurk/evonic/internal/ui"
)

// Bridge and config flags
var (
	brokerFlag      string
	topicPrefixFlag string
	forceInit       bool
)

func init() {
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	bridgeCmd.Flags().StringVar(&brokerFlag, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (overrides config)")
	bridgeCmd.Flags().StringVar(&topicPrefixFlag, "topic-prefix", "", "MQTT topic prefix (overrides config)")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

// bridgeCmd mirrors the fire to MQTT
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge the fire to an MQTT broker",
	Long: `Publish the fire's state to MQTT and accept commands from it.

Topics (prefix "evonic" by default):
  <prefix>/state         retained JSON snapshot
  <prefix>/availability  retained online/offline
  <prefix>/set           {"command": "power", "value": "on"}
  <prefix>/error         rejected commands

Runs until interrupted. The fire connection is retried with backoff.`,
	Example: `  evonic bridge --host 192.168.1.190 --broker tcp://localhost:1883
  EVONIC_MQTT_PASSWORD=secret evonic bridge --topic-prefix home/lounge/fire`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	mqttCfg := s.cfg.MQTT
	if brokerFlag != "" {
		mqttCfg.Broker = brokerFlag
	}
	if topicPrefixFlag != "" {
		mqttCfg.TopicPrefix = topicPrefixFlag
	}
	if mqttCfg.Broker == "" {
		return errors.New("no MQTT broker configured: pass --broker, set EVONIC_MQTT_BROKER, or add mqtt.broker to the config file")
	}

	b := bridge.New(s.client, bridge.Config{
		Broker:      mqttCfg.Broker,
		ClientID:    mqttCfg.ClientID,
		Username:    mqttCfg.Username,
		Password:    mqttCfg.Password,
		TopicPrefix: mqttCfg.TopicPrefix,
		QoS:         byte(mqttCfg.QoS),
	}, s.logger)

	topics := b.Topics()
	ui.NewPrinter(os.Stdout).PrintHeader("MQTT bridge", "evonic bridge",
		ui.Detail{Key: "Fire", Value: s.client.Host()},
		ui.Detail{Key: "Broker", Value: mqttCfg.Broker},
		ui.Detail{Key: "State", Value: topics.State},
		ui.Detail{Key: "Commands", Value: topics.Set},
	)

	s.logger.Info("Starting bridge", zap.String("broker", mqttCfg.Broker))
	return b.Run(cmd.Context())
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with defaults",
	Long: `Write a configuration file with default values. Flags such as --host
and --timeout are stored in it.`,
	Example: `  evonic config init --host 192.168.1.190`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}

		cfg := config.Default()
		cfg.Device.Host = hostFlag
		if timeoutFlag > 0 {
			cfg.Device.RequestTimeout = timeoutFlag
		}
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}

		ui.NewPrinter(os.Stdout).PrintSuccess("Config written", ui.Detail{Key: "Path", Value: path})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.MQTT.Password != "" {
			cfg.MQTT.Password = "********"
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}
