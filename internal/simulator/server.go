package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/evonic/pkg/evonic"
)

// Config holds the simulator configuration
type Config struct {
	HTTPAddr     string         // Bootstrap endpoint, port 80 on a real fire
	WSAddr       string         // Event/control channel, port 81 on a real fire
	TickInterval time.Duration  // Heater simulation step (0 = disabled)
	CaptureDir   string         // Directory to write frame captures (disabled if empty)
	Document     map[string]any // Initial state (DefaultDocument when nil)
}

// Server is a stand-in Evonic fire. It serves /modules.json, accepts control
// frames on its WebSocket and pushes the resulting partial updates to every
// connected client.
type Server struct {
	config   Config
	state    *State
	logger   *zap.Logger
	upgrader websocket.Upgrader

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*peer
	servers     []*http.Server
	messageNum  int
}

// New creates a new Server instance
func New(config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc := config.Document
	if doc == nil {
		doc = DefaultDocument()
	}
	return &Server{
		config:      config,
		state:       NewState(doc),
		logger:      logger.With(zap.String("component", "simulator")),
		activeConns: make(map[string]*peer),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// State returns the simulated fire's state.
func (s *Server) State() *State {
	return s.state
}

// Handler serves both the bootstrap document and the WebSocket upgrade.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+evonic.BootstrapPath, s.handleBootstrap)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !websocket.IsWebSocketUpgrade(r) {
			http.NotFound(w, r)
			return
		}
		s.handleWebSocket(w, r)
	})
	return mux
}

// Start listens on the configured addresses and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.HTTPAddr, err)
	}
	wsLn, err := net.Listen("tcp", s.config.WSAddr)
	if err != nil {
		_ = httpLn.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.config.WSAddr, err)
	}
	return s.Serve(ctx, httpLn, wsLn)
}

// Serve runs the simulator on already-open listeners until ctx is cancelled.
// Both listeners get the same handler, as with Handler.
func (s *Server) Serve(ctx context.Context, listeners ...net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, len(listeners))

	s.mu.Lock()
	for _, ln := range listeners {
		srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
		s.servers = append(s.servers, srv)
		s.logger.Info("Simulator listening", zap.String("addr", ln.Addr().String()))
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}
	s.mu.Unlock()

	if s.config.TickInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.tickLoop(ctx)
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown requested, stopping simulator...")
	case serveErr = <-errChan:
		s.logger.Error("Simulator listener failed", zap.Error(serveErr))
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := s.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changes := s.state.Tick(); changes != nil {
				s.broadcast(changes)
			}
		}
	}
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Bootstrap requested", zap.String("remote_addr", r.RemoteAddr))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.state.Document()); err != nil {
		s.logger.Error("Failed to write bootstrap document", zap.Error(err))
	}
}

// Shutdown gracefully shuts down the simulator
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	servers := s.servers
	s.servers = nil
	for addr, p := range s.activeConns {
		s.logger.Info("Closing active connection", zap.String("remote_addr", addr))
		p.close()
	}
	s.mu.Unlock()

	var firstErr error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Wait for connection goroutines with the caller's deadline
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All connections closed gracefully")
	case <-ctx.Done():
		s.logger.Warn("Shutdown timeout, forcing close")
		if firstErr == nil {
			firstErr = ctx.Err()
		}
	}
	return firstErr
}

// GetActiveConnections returns the number of connected WebSocket clients
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
