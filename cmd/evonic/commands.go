package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/evonic/internal/bridge"
	"github.com/muurk/evonic/internal/ui"
	"github.com/muurk/evonic/pkg/evonic"
)

// Command flags
var (
	outputFormat  string
	requestMethod string
	requestBody   string
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(effectsCmd)
	rootCmd.AddCommand(requestCmd)

	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(effectCmd)
	rootCmd.AddCommand(lightCmd)
	rootCmd.AddCommand(brightnessCmd)
	rootCmd.AddCommand(speedCmd)
	rootCmd.AddCommand(temperatureCmd)
	rootCmd.AddCommand(sendCmd)

	showCmd.Flags().StringVar(&outputFormat, "format", ui.FormatDetailed, "Output format (detailed, compact, json)")
	requestCmd.Flags().StringVarP(&requestMethod, "method", "X", http.MethodGet, "HTTP method")
	requestCmd.Flags().StringVarP(&requestBody, "data", "d", "", "JSON request body")
}

// showCmd displays the fire's current state
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the fire's current state",
	Long: `Fetch /modules.json from the fire and display its state.

Only the HTTP bootstrap is performed; no WebSocket is opened.`,
	Example: `  evonic show --host 192.168.1.190
  evonic show --format compact
  evonic show --format json | jq .heater`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.bootstrap(cmd.Context())
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if outputFormat == ui.FormatDetailed {
		p.PrintHeader("Fire state", "evonic show", ui.Detail{Key: "Host", Value: s.client.Host()})
	}
	return p.PrintSnapshot(snap, outputFormat)
}

// listenCmd prints one line per state update
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print live state updates",
	Long: `Connect to the fire and print a one-line summary after every update
until interrupted or the fire closes the connection.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.client.Connect(ctx); err != nil {
		return err
	}

	fmt.Println(ui.FormatUpdateLine(time.Now(), s.client.Snapshot()))
	err = s.client.Listen(ctx, func(snap *evonic.Snapshot) {
		fmt.Println(ui.FormatUpdateLine(time.Now(), snap))
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchCmd runs the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard with keyboard control",
	Long: `Open a full-screen dashboard that follows the fire's state.

Keys: p power, l feature light, e next effect, +/- heater target, q quit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	program := ui.NewWatchProgram(ui.NewWatchModel(ctx, s.client.Host(), s.client))

	go func() {
		if err := s.client.Connect(ctx); err != nil {
			program.Send(ui.ListenErrorMsg{Err: err})
			return
		}
		program.Send(ui.ConnectedMsg{Snapshot: s.client.Snapshot().Clone()})

		err := s.client.Listen(ctx, func(snap *evonic.Snapshot) {
			program.Send(ui.SnapshotMsg{Snapshot: snap.Clone(), At: time.Now()})
		})
		if ctx.Err() == nil {
			program.Send(ui.ListenErrorMsg{Err: err})
		}
	}()

	final, err := program.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	if m, ok := final.(ui.WatchModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// effectsCmd lists the effect catalog for the fire's model
var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List the effects the fire supports",
	Args:  cobra.NoArgs,
	RunE:  runEffects,
}

func runEffects(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.bootstrap(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	code := snap.Info.ConfigCode()
	fmt.Fprintf(out, "Model %s (%s):\n", code, evonic.ModelFamily(code))
	for _, e := range snap.Effects {
		marker := " "
		if snap.Lighting.Effect != nil && *snap.Lighting.Effect == e {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %s\n", marker, e)
	}
	return nil
}

// requestCmd sends a raw HTTP request to the fire
var requestCmd = &cobra.Command{
	Use:   "request <path>",
	Short: "Send a raw HTTP request to the fire",
	Example: `  evonic request /modules.json
  evonic request /config -X POST -d '{"name": "Lounge"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		var body any
		if requestBody != "" {
			if err := json.Unmarshal([]byte(requestBody), &body); err != nil {
				return fmt.Errorf("invalid --data: %w", err)
			}
		}

		path := args[0]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		result, err := s.client.Request(cmd.Context(), path, strings.ToUpper(requestMethod), body)
		if err != nil {
			return err
		}
		if text, ok := result.(string); ok {
			fmt.Println(text)
			return nil
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var powerCmd = &cobra.Command{
	Use:       "power <on|off|toggle>",
	Short:     "Switch the fire on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, evonic.Command{Name: evonic.CommandPower, Value: args[0]},
			"Power "+args[0])
	},
}

var effectCmd = &cobra.Command{
	Use:   "effect <name>",
	Short: "Select a flame effect",
	Long: `Select a flame effect by name. Names are case-sensitive and must be in
the fire's catalog; see 'evonic effects'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, evonic.Command{Name: evonic.CommandEffect, Value: args[0]},
			"Effect set", ui.Detail{Key: "Effect", Value: args[0]})
	},
}

var lightCmd = &cobra.Command{
	Use:   "light",
	Short: "Toggle the feature light",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, evonic.Command{Name: evonic.CommandFeatureLight}, "Feature light toggled")
	},
}

var brightnessCmd = &cobra.Command{
	Use:     "brightness <zone> <0-255>",
	Short:   "Set a lighting zone's brightness",
	Long:    `Set the brightness of a lighting zone. Zones are rgb0 (flame) and rgb1 (coal bed).`,
	Example: `  evonic brightness rgb0 200`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return zoneLevel(cmd, evonic.CommandBrightness, args[0], args[1], "Brightness")
	},
}

var speedCmd = &cobra.Command{
	Use:     "speed <zone> <0-255>",
	Short:   "Set a lighting zone's animation speed",
	Example: `  evonic speed rgb1 40`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return zoneLevel(cmd, evonic.CommandSpeed, args[0], args[1], "Speed")
	},
}

var temperatureCmd = &cobra.Command{
	Use:   "temperature <degrees>",
	Short: "Set the heater's target temperature",
	Long: `Set the heater's target temperature in the fire's configured unit
(11-32 °C or 50-90 °F). Requires the temperature module.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		temp, err := strconv.Atoi(args[0])
		if err != nil {
			return evonic.NewInvalidArgumentError(fmt.Sprintf("temperature must be a whole number, got %q", args[0]))
		}
		return execute(cmd, evonic.Command{Name: evonic.CommandTemperature, Value: temp},
			"Target temperature set", ui.Detail{Key: "Target", Value: args[0]})
	},
}

// sendCmd accepts the same JSON command document as the MQTT bridge
var sendCmd = &cobra.Command{
	Use:     "send <json>",
	Short:   "Send a JSON command",
	Example: `  evonic send '{"command": "brightness", "zone": "rgb0", "value": 180}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bridge.DecodeCommand([]byte(args[0]))
		if err != nil {
			return evonic.NewInvalidArgumentError(err.Error())
		}
		return execute(cmd, c, "Command sent", ui.Detail{Key: "Command", Value: c.Name})
	},
}

func zoneLevel(cmd *cobra.Command, name, zone, value, label string) error {
	level, err := strconv.Atoi(value)
	if err != nil {
		return evonic.NewInvalidArgumentError(fmt.Sprintf("%s must be a whole number, got %q", strings.ToLower(label), value))
	}
	return execute(cmd, evonic.Command{Name: name, Zone: zone, Value: level},
		label+" set",
		ui.Detail{Key: "Zone", Value: zone},
		ui.Detail{Key: label, Value: value},
	)
}

// execute connects, sends one command and reports the outcome.
func execute(cmd *cobra.Command, c evonic.Command, title string, details ...ui.Detail) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.client.Connect(cmd.Context()); err != nil {
		return err
	}
	if err := s.client.Execute(cmd.Context(), c); err != nil {
		return err
	}

	details = append([]ui.Detail{{Key: "Host", Value: s.client.Host()}}, details...)
	ui.NewPrinter(os.Stdout).PrintSuccess(title, details...)
	return nil
}
