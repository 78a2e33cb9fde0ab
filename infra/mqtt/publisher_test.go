package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleetops/fleetd/core/activitylog"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/internal/eventbus"
)

type stubToken struct{ err error }

func (t *stubToken) Wait() bool                     { return true }
func (t *stubToken) WaitTimeout(time.Duration) bool { return true }
func (t *stubToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *stubToken) Error() error                   { return t.err }

type stubClient struct {
	mu           sync.Mutex
	topics       []string
	payloads     [][]byte
	disconnected int
}

func (c *stubClient) IsConnected() bool   { return c.disconnected == 0 }
func (c *stubClient) Connect() paho.Token { return &stubToken{} }
func (c *stubClient) Disconnect(uint)     { c.mu.Lock(); c.disconnected++; c.mu.Unlock() }
func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	c.mu.Unlock()
	return &stubToken{}
}

func (c *stubClient) published() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.topics...)
}

func newStubPublisher(t *testing.T) (*Publisher, *stubClient) {
	t.Helper()
	sc := &stubClient{}
	old := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return sc }
	t.Cleanup(func() { newMQTTClient = old })

	cfg := Config{Enabled: true, Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	p, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	return p, sc
}

func TestPublishEntryTopic(t *testing.T) {
	p, sc := newStubPublisher(t)
	entry := model.ActivityLogEntry{ID: "e1", VehicleID: "v42", Type: model.ActivityEngineStarted, Description: "Engine started"}
	if err := p.PublishEntry(entry); err != nil {
		t.Fatalf("publish: %v", err)
	}
	topics := sc.published()
	if len(topics) != 1 || topics[0] != "fleet/v42/activity" {
		t.Fatalf("wrong topic: %v", topics)
	}
}

func TestRunConsumesBusEvents(t *testing.T) {
	p, sc := newStubPublisher(t)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { p.Run(ctx, bus); close(done) }()

	// Give Run a moment to subscribe before publishing.
	time.Sleep(20 * time.Millisecond)
	bus.Publish(activitylog.RecordedEvent{Entry: model.ActivityLogEntry{ID: "e1", VehicleID: "v1"}})
	bus.Publish("ignored")

	deadline := time.After(2 * time.Second)
	for len(sc.published()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("no publish observed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
	if got := sc.published(); len(got) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(got))
	}
}

func TestConfigValidate(t *testing.T) {
	c := Config{Enabled: true}
	if err := c.Validate(); err == nil {
		t.Fatalf("missing broker accepted")
	}
	c.Broker = "tcp://localhost:1883"
	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
