package evonic

import (
	"context"
	"errors"
	"net"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/evonic/internal/logging"
)

// UpdateFunc receives the snapshot after every merged update.
type UpdateFunc func(*Snapshot)

// Listen runs the receive loop until the channel fails.
//
// Each text frame is decoded, merged into the snapshot and handed to callback
// on the calling goroutine. Listen never returns nil: it returns a KindClosed
// error when the device closes the channel, a KindConnection error on a read
// failure, a KindDecode error for a malformed frame, or ctx.Err() after the
// context is cancelled (which also closes the socket).
func (c *Client) Listen(ctx context.Context, callback UpdateFunc) error {
	c.mu.Lock()
	conn := c.conn
	connected := conn != nil && c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return NewPreconditionError("not connected to the fire's WebSocket")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.dropConn(conn)
				return ctxErr
			}
			return c.receiveError(conn, err)
		}

		c.logger.Debug("WebSocket message", logging.Frame(c.logger, "received", messageType, data)...)

		if messageType != websocket.TextMessage {
			c.logger.Warn("Ignoring non-text frame", zap.String("message_type", logging.MessageTypeName(messageType)))
			continue
		}

		u, err := DecodeUpdate(data)
		if err != nil {
			c.logger.Error("Failed to decode state frame", zap.Error(err))
			return err
		}

		snapshot := c.merge(u)
		if callback != nil {
			callback(snapshot)
		}
	}
}

// receiveError classifies a failed read and forgets the socket.
func (c *Client) receiveError(conn *websocket.Conn, err error) error {
	c.dropConn(conn)

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) || errors.Is(err, net.ErrClosed) {
		c.logger.Info("WebSocket closed", zap.Error(err))
		return NewClosedError(c.host, err)
	}

	c.logger.Warn("WebSocket read failed", zap.Error(err))
	return NewConnectionError(c.host, "error occurred while reading from the WebSocket", err)
}
