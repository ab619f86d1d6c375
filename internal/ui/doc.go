// Package ui provides terminal UI components for the evonic CLI.
//
// This package uses Lipgloss for one-shot styled output and Bubble Tea for the
// live `watch` dashboard.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success/failure boxes; failures carry troubleshooting tips
//   - Snapshot renderers: detailed panel, compact summary, JSON, and the
//     one-line format used by `listen`
//   - WatchModel: Bubble Tea model fed with SnapshotMsg values from the
//     client's receive loop, with key bindings that send commands
//
// # Logging Integration
//
// Logging is controlled by EVONIC_LOG_LEVEL or --log-level and goes to stderr,
// so styled output on stdout stays clean when logging is silent.
package ui
