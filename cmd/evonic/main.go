// Evonic is a command-line client for Evonic electric fires.
//
// It reads the fire's state over HTTP, follows live updates on the fire's
// WebSocket, sends control commands, and can bridge a fire to MQTT.
//
// Usage:
//
//	evonic [command] [flags]
//
// The fire is chosen with --host, EVONIC_HOST, or device.host in the config
// file. See 'evonic --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/evonic/internal/config"
	"github.com/muurk/evonic/internal/logging"
	"github.com/muurk/evonic/internal/ui"
	"github.com/muurk/evonic/internal/version"
	"github.com/muurk/evonic/pkg/evonic"
)

// Global flags
var (
	hostFlag    string
	configPath  string
	timeoutFlag time.Duration
	logLevel    string
	httpPort    int
	wsPort      int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.NewPrinter(os.Stderr).PrintError("Command failed", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "evonic",
	Short: "Evonic Fire Control Utility",
	Long: `A command-line client for Evonic electric fires.

Reads the fire's state, follows live updates, sends control commands
(power, effects, brightness, speed, heater target) and can bridge a
fire to an MQTT broker.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Fire IP address or hostname (overrides config and EVONIC_HOST)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: platform config dir)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "HTTP request timeout (default from config, 8s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().IntVar(&httpPort, "http-port", evonic.DefaultHTTPPort, "Fire HTTP port")
	rootCmd.PersistentFlags().IntVar(&wsPort, "ws-port", evonic.DefaultWebSocketPort, "Fire WebSocket port")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

// session bundles what every device command needs.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	client *evonic.Client
}

// newSession loads configuration, applies flag overrides and builds the client.
func newSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if hostFlag != "" {
		cfg.Device.Host = hostFlag
	}
	if timeoutFlag > 0 {
		cfg.Device.RequestTimeout = timeoutFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Device.Host == "" {
		return nil, errors.New("no fire configured: pass --host, set EVONIC_HOST, or run 'evonic config init --host <ip>'")
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	opts := []evonic.Option{evonic.WithLogger(logger)}
	if cfg.Device.RequestTimeout > 0 {
		opts = append(opts, evonic.WithRequestTimeout(cfg.Device.RequestTimeout))
	}
	if httpPort != evonic.DefaultHTTPPort {
		opts = append(opts, evonic.WithHTTPBaseURL("http://"+net.JoinHostPort(cfg.Device.Host, strconv.Itoa(httpPort))))
	}
	if wsPort != evonic.DefaultWebSocketPort {
		opts = append(opts, evonic.WithWebSocketURL("ws://"+net.JoinHostPort(cfg.Device.Host, strconv.Itoa(wsPort))+"/"))
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		client: evonic.NewClient(cfg.Device.Host, opts...),
	}, nil
}

// bootstrap fetches the state document over HTTP and returns a copy of the
// resulting snapshot. A fire that answers with anything but JSON leaves no
// snapshot behind, which is reported as a decode error.
func (s *session) bootstrap(ctx context.Context) (*evonic.Snapshot, error) {
	if _, err := s.client.Request(ctx, evonic.BootstrapPath, http.MethodGet, nil); err != nil {
		return nil, err
	}
	snap := s.client.SnapshotCopy()
	if snap == nil {
		return nil, evonic.NewDecodeError("the fire did not return a JSON state document", nil)
	}
	return snap, nil
}

// Close releases the client and flushes the logger.
func (s *session) Close() {
	_ = s.client.Close()
	_ = s.logger.Sync()
}
