package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleetops/fleetd/core/activitylog"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/infra/logger"
	"github.com/fleetops/fleetd/internal/eventbus"
)

// Config defines the connection parameters for the activity publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fleetd"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "fleet"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher forwards recorded activity entries to an MQTT broker, one
// topic per vehicle: <prefix>/<vehicle_id>/activity.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	cli := newMQTTClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Publisher{
		cli:    cli,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("mqtt-publisher"),
	}, nil
}

// PublishEntry sends one activity entry as JSON.
func (p *Publisher) PublishEntry(e model.ActivityLogEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	topic := fmt.Sprintf("%s/%s/activity", p.prefix, e.VehicleID)
	token := p.cli.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for %s", topic)
	}
	return token.Error()
}

// Run consumes activity events from the bus until context cancellation.
// Publish failures are logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			ev, match := e.(activitylog.RecordedEvent)
			if !match {
				continue
			}
			if err := p.PublishEntry(ev.Entry); err != nil {
				p.log.Errorf("publish activity: %v", err)
			}
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
