package evonic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/evonic/internal/logging"
)

// Command names accepted by Execute.
const (
	CommandPower        = "power"
	CommandEffect       = "effect"
	CommandFeatureLight = "feature_light"
	CommandBrightness   = "brightness"
	CommandSpeed        = "speed"
	CommandTemperature  = "temperature"
)

// Command is a dynamically typed control request, as decoded from JSON or CLI input.
type Command struct {
	Name  string `json:"command"`
	Zone  string `json:"zone,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Power switches the fire on, off, or toggles it.
func (c *Client) Power(ctx context.Context, cmd PowerCommand) error {
	token, err := ValidatePower(cmd)
	if err != nil {
		return err
	}
	return c.sendVoice(ctx, token)
}

// SetEffect activates an effect from the device's catalog.
func (c *Client) SetEffect(ctx context.Context, effect string) error {
	if err := c.validate(func(s *Snapshot) error { return ValidateEffect(s, effect) }); err != nil {
		return err
	}
	return c.sendVoice(ctx, effect)
}

// ToggleFeatureLight toggles the feature light.
func (c *Client) ToggleFeatureLight(ctx context.Context) error {
	if err := c.validate(ValidateFeatureLight); err != nil {
		return err
	}
	return c.sendVoice(ctx, VoiceFeatureLight)
}

// SetBrightness sets the brightness (0-255) of an RGB zone.
func (c *Client) SetBrightness(ctx context.Context, zone string, brightness int) error {
	return c.zoneLevel(ctx, zone, brightness, BrightnessCmd)
}

// SetSpeed sets the animation speed (0-255) of an RGB zone.
func (c *Client) SetSpeed(ctx context.Context, zone string, speed int) error {
	return c.zoneLevel(ctx, zone, speed, SpeedCmd)
}

// SetTemperature sets the heater target in the device's configured unit.
func (c *Client) SetTemperature(ctx context.Context, temp int) error {
	return c.temperature(ctx, temp)
}

// Execute validates and sends a dynamically typed command.
// Values of the wrong type are reported as KindInvalidArgument.
func (c *Client) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case CommandPower:
		s, ok := cmd.Value.(string)
		if !ok {
			return NewInvalidArgumentError(fmt.Sprintf("power value must be a string, got %T", cmd.Value))
		}
		return c.Power(ctx, PowerCommand(s))
	case CommandEffect:
		s, ok := cmd.Value.(string)
		if !ok {
			return NewInvalidArgumentError(fmt.Sprintf("effect value must be a string, got %T", cmd.Value))
		}
		return c.SetEffect(ctx, s)
	case CommandFeatureLight:
		return c.ToggleFeatureLight(ctx)
	case CommandBrightness:
		return c.zoneLevel(ctx, cmd.Zone, cmd.Value, BrightnessCmd)
	case CommandSpeed:
		return c.zoneLevel(ctx, cmd.Zone, cmd.Value, SpeedCmd)
	case CommandTemperature:
		return c.temperature(ctx, cmd.Value)
	}
	return NewInvalidArgumentError(fmt.Sprintf("unknown command %q", cmd.Name))
}

func (c *Client) zoneLevel(ctx context.Context, zone string, value any, build func(byte, int) string) error {
	var digit byte
	var level int
	err := c.validate(func(s *Snapshot) error {
		var err error
		digit, level, err = ValidateZoneLevel(s, zone, value)
		return err
	})
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, build(digit, level))
}

func (c *Client) temperature(ctx context.Context, value any) error {
	var temp int
	err := c.validate(func(s *Snapshot) error {
		var err error
		temp, err = ValidateTemperature(s, value)
		return err
	})
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, TemperatureCmd(temp))
}

// validate runs check against the snapshot while merges are held off.
func (c *Client) validate(check func(*Snapshot) error) error {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return check(c.snapshot)
}

func (c *Client) sendVoice(ctx context.Context, token string) error {
	msg, err := BuildVoiceMessage(token)
	if err != nil {
		return NewInvalidArgumentError(fmt.Sprintf("voice token cannot be encoded: %v", err))
	}
	return c.send(ctx, msg)
}

func (c *Client) sendCmd(ctx context.Context, text string) error {
	msg, err := BuildCmdMessage(text)
	if err != nil {
		return NewInvalidArgumentError(fmt.Sprintf("command cannot be encoded: %v", err))
	}
	return c.send(ctx, msg)
}

// send writes one text frame. Writers are serialized; the write deadline is the
// earlier of writeWait and the context deadline.
func (c *Client) send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	connected := conn != nil && c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return NewPreconditionError("connect first")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return NewConnectionError(c.host, "failed to set write deadline", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, net.ErrClosed) {
			return NewClosedError(c.host, err)
		}
		return NewConnectionError(c.host, "failed to send command", err)
	}

	c.logger.Info("Sent command", logging.Frame(c.logger, "sent", websocket.TextMessage, payload)...)
	return nil
}
