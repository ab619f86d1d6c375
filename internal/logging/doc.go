// Package logging builds the zap loggers used by the evonic client and CLI.
//
// There is no package-level logger. The owning process creates one logger at
// startup and passes it explicitly to the components that log:
//
//	logger, err := logging.New(cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = logger.Sync() }()
//
//	client := evonic.NewClient(host, evonic.WithLogger(logger))
//
// # Log Levels
//
//   - Debug: frame hex dumps, merged updates
//   - Info: connect/disconnect, commands sent
//   - Warn: ignored frames, dropped sockets
//   - Error: failures surfaced to the caller
//
// When no level is given and EVONIC_LOG_LEVEL is unset, New returns a no-op
// logger so CLI output stays clean by default.
//
// # WebSocket Frames
//
// Frame returns the structured fields describing one WebSocket message:
//
//	logger.Debug("WebSocket message", logging.Frame(logger, "received", websocket.TextMessage, data)...)
package logging
