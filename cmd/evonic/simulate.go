package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/evonic/internal/logging"
	"github.com/muurk/evonic/internal/simulator"
	"github.com/muurk/evonic/internal/ui"
)

// Simulator flags
var (
	simHTTPAddr   string
	simWSAddr     string
	simTick       time.Duration
	simCaptureDir string
	simDocument   string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simHTTPAddr, "http-addr", "127.0.0.1:8080", "Address serving /modules.json")
	simulateCmd.Flags().StringVar(&simWSAddr, "ws-addr", "127.0.0.1:8081", "Address serving the WebSocket")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 10*time.Second, "Heater simulation step (0 disables)")
	simulateCmd.Flags().StringVar(&simCaptureDir, "capture-dir", "", "Directory to write received frames as JSONL (disabled if not specified)")
	simulateCmd.Flags().StringVar(&simDocument, "document", "", "JSON file with the initial state (default: v630 with every module)")
}

// simulateCmd runs a stand-in fire
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated fire on this machine",
	Long: `Run a stand-in Evonic fire for trying the CLI, the dashboard and the MQTT
bridge without hardware.

The simulator serves /modules.json and the WebSocket control channel,
applies commands to its state and pushes partial updates to clients.`,
	Example: `  # Terminal 1
  evonic simulate

  # Terminal 2
  evonic watch --host 127.0.0.1 --http-port 8080 --ws-port 8081

  # Capture every control frame
  evonic simulate --capture-dir ./captures`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var doc map[string]any
	if simDocument != "" {
		data, err := os.ReadFile(simDocument)
		if err != nil {
			return fmt.Errorf("failed to read state document: %w", err)
		}
		if doc, err = simulator.LoadDocument(data); err != nil {
			return err
		}
	}

	if simCaptureDir != "" {
		if err := os.MkdirAll(simCaptureDir, 0755); err != nil {
			return fmt.Errorf("failed to create capture directory: %w", err)
		}
	}

	srv := simulator.New(simulator.Config{
		HTTPAddr:     simHTTPAddr,
		WSAddr:       simWSAddr,
		TickInterval: simTick,
		CaptureDir:   simCaptureDir,
		Document:     doc,
	}, logger)

	ui.NewPrinter(os.Stdout).PrintHeader("Simulated fire", "evonic simulate",
		ui.Detail{Key: "HTTP", Value: simHTTPAddr},
		ui.Detail{Key: "WebSocket", Value: simWSAddr},
		ui.Detail{Key: "Tick", Value: simTick.String()},
	)

	return srv.Start(cmd.Context())
}
