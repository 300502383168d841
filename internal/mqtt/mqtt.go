package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nolangormley/chore-chart/internal/config"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

var ErrNotConnected = errors.New("mqtt client not connected")

// Client subscribes to device location reports and publishes recommendations.
type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	handlerMu       sync.RWMutex
	locationHandler func(report types.LocationReport) error
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Clean sessions drop subscriptions, so subscribe on every (re)connect.
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := c.subscribe(); err != nil {
			logger.Error("mqtt subscribe failed", "topic", cfg.MQTTLocationTopic, "error", err)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// SetLocationHandler must be called before Connect so reports queued by the
// broker right after CONNACK are not dropped.
func (c *Client) SetLocationHandler(handler func(report types.LocationReport) error) {
	c.handlerMu.Lock()
	c.locationHandler = handler
	c.handlerMu.Unlock()
}

// Connect waits for the initial connection, respecting ctx and Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnect runs in its own goroutine and may not have fired yet.
			c.setConnected(true)
			return nil
		}

		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			c.client.Disconnect(0)
			return fmt.Errorf("client stopped")
		default:
		}
	}
}

func (c *Client) subscribe() error {
	topic := c.cfg.MQTTLocationTopic
	if topic == "" {
		return nil
	}
	const qos = byte(1)

	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	c.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (c *Client) handleMessage(topic string, payload []byte) {
	c.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var report types.LocationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		c.logger.Warn("failed to parse location report",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	if err := validateReport(report); err != nil {
		c.logger.Warn("invalid location report",
			"topic", topic,
			"device_id", report.DeviceID,
			"error", err,
		)
		return
	}

	c.handlerMu.RLock()
	handler := c.locationHandler
	c.handlerMu.RUnlock()
	if handler == nil {
		return
	}
	if err := handler(report); err != nil {
		c.logger.Error("location handler failed",
			"topic", topic,
			"device_id", report.DeviceID,
			"error", err,
		)
		return
	}
	c.logger.Debug("processed location report",
		"device_id", report.DeviceID,
		"timestamp", report.Timestamp,
	)
}

func validateReport(r types.LocationReport) error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if r.Lat == nil || r.Lon == nil {
		return fmt.Errorf("lat and lon are required")
	}
	return types.Coordinate{Lat: *r.Lat, Lon: *r.Lon}.Validate()
}

// PublishJSON publishes v to topic with QoS 1.
func (c *Client) PublishJSON(ctx context.Context, topic string, v any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	token := c.client.Publish(topic, 1, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	c.logger.Debug("published mqtt message", "topic", topic, "size", len(data))
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect is idempotent. After it, Connect returns "client stopped".
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil && c.IsConnected() && c.cfg.MQTTLocationTopic != "" {
		token := c.client.Unsubscribe(c.cfg.MQTTLocationTopic)
		token.WaitTimeout(2 * time.Second)
	}

	if c.client != nil {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt client disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
