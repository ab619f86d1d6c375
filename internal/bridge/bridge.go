package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/evonic/pkg/evonic"
)

// connectTimeout bounds the initial broker connection.
var connectTimeout = 10 * time.Second

const (
	publishTimeout = 5 * time.Second
	commandTimeout = 10 * time.Second
	disconnectWait = 250 // milliseconds

	minBackoff = 5 * time.Second
	maxBackoff = time.Minute
)

// ErrBrokerConnection is returned when the initial broker connection fails.
var ErrBrokerConnection = errors.New("mqtt broker connection failed")

// Device is the part of *evonic.Client the bridge drives.
type Device interface {
	Host() string
	Connect(ctx context.Context) error
	Listen(ctx context.Context, callback evonic.UpdateFunc) error
	Execute(ctx context.Context, cmd evonic.Command) error
	SnapshotCopy() *evonic.Snapshot
}

// publisher is satisfied by pahomqtt.Client.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// subscriber is satisfied by pahomqtt.Client.
type subscriber interface {
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
}

// Config holds broker settings for the bridge.
type Config struct {
	Broker      string // e.g. tcp://localhost:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Bridge mirrors a fire's state to MQTT and forwards commands published on
// the set topic to the fire.
type Bridge struct {
	device Device
	cfg    Config
	topics Topics
	logger *zap.Logger

	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client

	mu     sync.Mutex
	client pahomqtt.Client
	pub    publisher
}

// New creates a bridge. Call Run to start it.
func New(device Device, cfg Config, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		device:    device,
		cfg:       cfg,
		topics:    NewTopics(cfg.TopicPrefix),
		logger:    logger.With(zap.String("component", "bridge")),
		newClient: pahomqtt.NewClient,
	}
}

// Topics returns the topics the bridge publishes and subscribes to.
func (b *Bridge) Topics() Topics {
	return b.topics
}

// Run connects to the broker and keeps the fire connection alive until ctx
// is cancelled. Device failures are retried with backoff; only a failed
// initial broker connection is returned as an error.
func (b *Bridge) Run(ctx context.Context) error {
	client := b.newClient(b.clientOptions())

	// With connect retry enabled paho keeps dialling in the background
	// until Disconnect, so every failure path below must call it.
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(disconnectWait)
		return fmt.Errorf("%w: timeout connecting to %s", ErrBrokerConnection, b.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(disconnectWait)
		return fmt.Errorf("%w: %w", ErrBrokerConnection, err)
	}

	b.mu.Lock()
	b.client = client
	b.pub = client
	b.mu.Unlock()

	defer func() {
		b.setAvailability(Offline, true)
		client.Disconnect(disconnectWait)
		b.logger.Info("MQTT bridge stopped")
	}()

	b.logger.Info("MQTT bridge started",
		zap.String("broker", b.cfg.Broker),
		zap.String("device", b.device.Host()),
		zap.String("set_topic", b.topics.Set),
	)

	b.serveDevice(ctx)
	return nil
}

func (b *Bridge) clientOptions() *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(b.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(minBackoff).
		SetMaxReconnectInterval(maxBackoff).
		SetCleanSession(true).
		SetWill(b.topics.Availability, Offline, 1, true)

	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}

	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		b.onConnect(c)
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		b.logger.Warn("MQTT connection lost", zap.Error(err))
	})

	return opts
}

// onConnect runs on paho's goroutine after every broker (re)connect while
// Listen may be merging updates, so it publishes a copy of the snapshot.
func (b *Bridge) onConnect(c subscriber) {
	b.logger.Info("MQTT connected", zap.String("broker", b.cfg.Broker))
	if s := b.device.SnapshotCopy(); s != nil {
		b.publishState(s)
	}
	token := c.Subscribe(b.topics.Set, b.cfg.QoS, b.wrapHandler(b.onSet))
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			b.logger.Warn("MQTT subscribe timed out", zap.String("topic", b.topics.Set))
			return
		}
		if err := token.Error(); err != nil {
			b.logger.Error("MQTT subscribe failed", zap.String("topic", b.topics.Set), zap.Error(err))
		}
	}()
}

// serveDevice keeps the fire connected and its state published until ctx ends.
func (b *Bridge) serveDevice(ctx context.Context) {
	backoff := minBackoff
	for {
		err := b.device.Connect(ctx)
		if err == nil {
			backoff = minBackoff
			if s := b.device.SnapshotCopy(); s != nil {
				b.publishState(s)
			}
			err = b.device.Listen(ctx, b.publishState)
		}
		if ctx.Err() != nil {
			return
		}

		b.setAvailability(Offline, true)
		if evonic.IsPreconditionError(err) && !b.retryable() {
			b.logger.Error("Fire client can no longer connect", zap.Error(err))
			return
		}
		b.logger.Warn("Fire connection lost, retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// retryable reports whether the device can still be reconnected.
func (b *Bridge) retryable() bool {
	type stater interface{ State() evonic.State }
	if s, ok := b.device.(stater); ok {
		return s.State() != evonic.StateClosed
	}
	return true
}

// publishState publishes the snapshot as retained JSON and marks the fire online.
func (b *Bridge) publishState(s *evonic.Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		b.logger.Error("Failed to encode snapshot", zap.Error(err))
		return
	}
	b.publish(b.topics.State, true, data)
	b.setAvailability(Online, true)
}

func (b *Bridge) setAvailability(status string, retained bool) {
	b.publish(b.topics.Availability, retained, []byte(status))
}

func (b *Bridge) publish(topic string, retained bool, payload []byte) {
	b.mu.Lock()
	pub := b.pub
	b.mu.Unlock()
	if pub == nil {
		return
	}

	token := pub.Publish(topic, b.cfg.QoS, retained, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			b.logger.Warn("MQTT publish timed out", zap.String("topic", topic))
			return
		}
		if err := token.Error(); err != nil {
			b.logger.Error("MQTT publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}()
}

func (b *Bridge) onSet(_ pahomqtt.Client, msg pahomqtt.Message) {
	b.handleSet(msg.Payload())
}

// handleSet decodes and executes one command request. Failures are published
// to the error topic rather than returned.
func (b *Bridge) handleSet(payload []byte) {
	cmd, err := DecodeCommand(payload)
	if err != nil {
		b.logger.Warn("Rejected command payload", zap.ByteString("payload", payload), zap.Error(err))
		b.publish(b.topics.Error, false, encodeError("", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.device.Execute(ctx, cmd); err != nil {
		b.logger.Warn("Command failed",
			zap.String("command", cmd.Name),
			zap.String("zone", cmd.Zone),
			zap.Error(err),
		)
		b.publish(b.topics.Error, false, encodeError(cmd.Name, err))
		return
	}
	b.logger.Info("Command sent", zap.String("command", cmd.Name), zap.String("zone", cmd.Zone))
}

// wrapHandler keeps a panicking handler from taking down paho's router goroutine.
func (b *Bridge) wrapHandler(handler pahomqtt.MessageHandler) pahomqtt.MessageHandler {
	return func(c pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in MQTT handler",
					zap.String("topic", msg.Topic()),
					zap.Any("panic", r),
				)
			}
		}()
		handler(c, msg)
	}
}
