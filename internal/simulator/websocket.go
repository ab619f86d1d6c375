package simulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/evonic/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum control frame size accepted from a client
	maxMessageSize = 8192
)

// peer is one connected client. Writes are serialized per connection.
type peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) write(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func (p *peer) close() {
	p.writeMu.Lock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "simulator shutting down"),
		time.Now().Add(time.Second))
	p.writeMu.Unlock()
	_ = p.conn.Close()
}

// handleWebSocket upgrades the request and runs the control frame loop
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	remoteAddr := r.RemoteAddr
	p := &peer{conn: conn}

	s.mu.Lock()
	s.activeConns[remoteAddr] = p
	s.mu.Unlock()
	s.wg.Add(1)

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		s.wg.Done()
		s.logger.Info("Client disconnected", zap.String("remote_addr", remoteAddr))
	}()

	s.logger.Info("Client connected", zap.String("remote_addr", remoteAddr))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				s.logger.Info("Connection closed by client", zap.String("remote_addr", remoteAddr))
			} else {
				s.logger.Debug("Connection closed or error reading frame",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		s.mu.Lock()
		s.messageNum++
		messageNum := s.messageNum
		s.mu.Unlock()

		s.logger.Debug("WebSocket frame received",
			append(logging.Frame(s.logger, "received", messageType, data),
				zap.String("remote_addr", remoteAddr),
				zap.Int("message_num", messageNum),
			)...,
		)
		s.saveCapture(remoteAddr, messageNum, messageType, data)

		if messageType != websocket.TextMessage {
			s.logger.Warn("Ignoring non-text frame",
				zap.String("remote_addr", remoteAddr),
				zap.String("message_type", logging.MessageTypeName(messageType)),
			)
			continue
		}

		changes, err := s.state.Apply(data)
		if err != nil {
			// The firmware ignores frames it cannot act on
			s.logger.Warn("Ignoring control frame",
				zap.String("remote_addr", remoteAddr),
				zap.ByteString("payload", data),
				zap.Error(err),
			)
			continue
		}
		if changes != nil {
			s.broadcast(changes)
		}
	}
}

// broadcast pushes a partial update to every connected client
func (s *Server) broadcast(changes map[string]any) {
	data, err := json.Marshal(changes)
	if err != nil {
		s.logger.Error("Failed to encode update", zap.Error(err))
		return
	}

	s.mu.Lock()
	peers := make(map[string]*peer, len(s.activeConns))
	for addr, p := range s.activeConns {
		peers[addr] = p
	}
	s.mu.Unlock()

	for addr, p := range peers {
		if err := p.write(data); err != nil {
			s.logger.Warn("Failed to send update",
				zap.String("remote_addr", addr),
				zap.Error(err),
			)
			_ = p.conn.Close()
			continue
		}
		s.logger.Debug("WebSocket frame sent",
			append(logging.Frame(s.logger, "sent", websocket.TextMessage, data),
				zap.String("remote_addr", addr),
			)...,
		)
	}
}

// CapturedFrame is one received control frame, as written to the capture file
type CapturedFrame struct {
	Timestamp  time.Time `json:"timestamp"`
	MessageNum int       `json:"message_num"`
	RemoteAddr string    `json:"remote_addr"`
	Direction  string    `json:"direction"`
	FrameType  string    `json:"frame_type"`
	PayloadLen int       `json:"payload_length"`
	Payload    string    `json:"payload"`
}

// saveCapture appends a frame to the capture directory.
// If CaptureDir is empty, this function does nothing.
func (s *Server) saveCapture(remoteAddr string, messageNum, messageType int, payload []byte) {
	if s.config.CaptureDir == "" {
		return
	}

	timestamp := time.Now()
	filename := filepath.Join(s.config.CaptureDir, fmt.Sprintf("capture-%s.jsonl",
		timestamp.Format("20060102")))

	record := CapturedFrame{
		Timestamp:  timestamp,
		MessageNum: messageNum,
		RemoteAddr: remoteAddr,
		Direction:  "client->fire",
		FrameType:  logging.MessageTypeName(messageType),
		PayloadLen: len(payload),
		Payload:    string(payload),
	}

	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("Failed to marshal capture record", zap.Error(err))
		return
	}

	// JSON Lines: one record per line
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.logger.Error("Failed to open capture file",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		s.logger.Error("Failed to write to capture file",
			zap.String("filename", filename),
			zap.Error(err),
		)
	}
}
