package events

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"lms-backend/internal/config"
	"lms-backend/internal/logger"
)

const (
	publishQoS           = 1
	publishTimeout       = 5 * time.Second
	keepAlive            = 30 * time.Second
	connectTimeout       = 10 * time.Second
	maxReconnectInterval = time.Minute
	disconnectQuiesceMS  = 250
)

// MQTTPublisher writes events to <prefix>/<event name> on the configured broker.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

func NewMQTTPublisher(cfg config.MQTTConfig) *MQTTPublisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("MQTT client connected", zap.String("broker", cfg.Broker))
	})

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	opts.SetReconnectingHandler(func(c mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Info("Reconnecting to MQTT broker")
	})

	return &MQTTPublisher{
		client: mqtt.NewClient(opts),
		prefix: cfg.TopicPrefix,
	}
}

// Connect establishes a connection to the MQTT broker
func (p *MQTTPublisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, name string, data any) {
	payload, err := encode(name, data, time.Now())
	if err != nil {
		logger.Error("Failed to encode event", zap.String("event", name), zap.Error(err))
		return
	}

	topic := Topic(p.prefix, name)
	token := p.client.Publish(topic, publishQoS, false, payload)

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if !token.WaitTimeout(timeout) {
		logger.Warn("Event publish timed out", zap.String("topic", topic))
		return
	}
	if err := token.Error(); err != nil {
		logger.Warn("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

// Disconnect disconnects from MQTT broker
func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(disconnectQuiesceMS)
	logger.Info("Disconnected from MQTT broker")
}

func Topic(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
